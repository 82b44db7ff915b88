package services

import (
	"context"
	"errors"
	"strings"

	"chirp/metrics"
	"chirp/models"
	"chirp/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const TweetSearchLimit = 20

// Action is what a toggle actually did.
type Action string

const (
	ActionLiked       Action = "liked"
	ActionUnliked     Action = "unliked"
	ActionRetweeted   Action = "retweeted"
	ActionUnretweeted Action = "unretweeted"
)

type CreateTweetInput struct {
	Content          string
	Media            []string
	QuoteTweetID     string
	InReplyToTweetID string
}

type tweetInput struct {
	Content string   `validate:"max=280"`
	Media   []string `validate:"max=4"`
}

type commentInput struct {
	Content string `validate:"required,max=280"`
}

// Tweets covers tweet lifecycle and interactions.
type Tweets struct {
	d Deps
	j joiner
}

func (s *Tweets) find(ctx context.Context, id primitive.ObjectID, notFound string) (*models.Tweet, error) {
	t, err := s.d.Store.Tweets.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, notFound)
	}
	if err != nil {
		return nil, internal("find tweet", err)
	}
	return t, nil
}

// CreateTweet posts a tweet, quote tweet or reply. Content is stored as given.
func (s *Tweets) CreateTweet(ctx context.Context, actor string, in CreateTweetInput) (*models.TweetView, error) {
	actorID, err := parseActor(actor)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Content) == "" && len(in.Media) == 0 {
		return nil, newError(KindInvalidInput, "Tweet must have content or media")
	}
	if err := check(tweetInput{Content: in.Content, Media: in.Media}); err != nil {
		return nil, err
	}

	now := s.d.Now().UTC()
	t := &models.Tweet{
		ID:        primitive.NewObjectID(),
		UserID:    actorID,
		Content:   in.Content,
		Media:     nonNilStrings(in.Media),
		Likes:     []primitive.ObjectID{},
		Retweets:  []primitive.ObjectID{},
		Comments:  []models.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if in.QuoteTweetID != "" {
		id, err := parseID(in.QuoteTweetID, "quote tweet")
		if err != nil {
			return nil, err
		}
		if _, err := s.find(ctx, id, "Quote tweet not found"); err != nil {
			return nil, err
		}
		t.QuoteTweet = &id
	}

	if in.InReplyToTweetID != "" {
		id, err := parseID(in.InReplyToTweetID, "reply tweet")
		if err != nil {
			return nil, err
		}
		target, err := s.find(ctx, id, "Tweet to reply to not found")
		if err != nil {
			return nil, err
		}
		author := target.UserID
		t.InReplyToTweet = &id
		t.InReplyToUser = &author
	}

	if err := s.d.Store.Tweets.Create(ctx, t); err != nil {
		return nil, internal("create tweet", err)
	}
	metrics.TweetsCreated.Inc()

	view, err := s.j.view(ctx, t, joinOpts{})
	if err != nil {
		return nil, internal("join tweet", err)
	}
	s.publish(ctx, actorID, *view)
	return view, nil
}

// publish hands the new tweet to everyone whose home timeline includes it.
func (s *Tweets) publish(ctx context.Context, author primitive.ObjectID, view models.TweetView) {
	u, err := s.d.Store.Users.FindByID(ctx, author)
	if err != nil {
		s.d.Log.Warn(ctx, "skip live publish", "userId", author.Hex(), "error", err)
		return
	}
	recipients := append([]primitive.ObjectID{author}, u.Followers...)
	s.d.Notifier.TweetCreated(recipients, view)
}

// GetTweet returns one tweet with its comments and referenced tweets.
func (s *Tweets) GetTweet(ctx context.Context, id string) (*models.TweetView, error) {
	tweetID, err := parseID(id, "tweet")
	if err != nil {
		return nil, err
	}
	t, err := s.find(ctx, tweetID, "Tweet not found")
	if err != nil {
		return nil, err
	}
	view, err := s.j.view(ctx, t, joinOpts{replyTarget: true, comments: true})
	if err != nil {
		return nil, internal("join tweet", err)
	}
	return view, nil
}

// DeleteTweet removes the actor's own tweet. Replies and quotes that point at
// it are left as they are.
func (s *Tweets) DeleteTweet(ctx context.Context, actor, id string) error {
	actorID, err := parseActor(actor)
	if err != nil {
		return err
	}
	tweetID, err := parseID(id, "tweet")
	if err != nil {
		return err
	}
	t, err := s.find(ctx, tweetID, "Tweet not found")
	if err != nil {
		return err
	}
	if t.UserID != actorID {
		return newError(KindForbidden, "Not authorized to delete this tweet")
	}

	err = s.d.Store.Tweets.Delete(ctx, tweetID)
	if errors.Is(err, store.ErrNotFound) {
		return newError(KindNotFound, "Tweet not found")
	}
	if err != nil {
		return internal("delete tweet", err)
	}
	return nil
}

func (s *Tweets) ToggleLike(ctx context.Context, actor, id string) (Action, error) {
	added, err := s.toggle(ctx, actor, id, store.FieldLikes)
	if err != nil {
		return "", err
	}
	action := ActionUnliked
	if added {
		action = ActionLiked
	}
	metrics.IncInteraction(string(action))
	return action, nil
}

func (s *Tweets) ToggleRetweet(ctx context.Context, actor, id string) (Action, error) {
	added, err := s.toggle(ctx, actor, id, store.FieldRetweets)
	if err != nil {
		return "", err
	}
	action := ActionUnretweeted
	if added {
		action = ActionRetweeted
	}
	metrics.IncInteraction(string(action))
	return action, nil
}

func (s *Tweets) toggle(ctx context.Context, actor, id, field string) (bool, error) {
	actorID, err := parseActor(actor)
	if err != nil {
		return false, err
	}
	tweetID, err := parseID(id, "tweet")
	if err != nil {
		return false, err
	}

	added, err := s.d.Store.Tweets.ToggleMember(ctx, tweetID, field, actorID)
	if errors.Is(err, store.ErrNotFound) {
		return false, newError(KindNotFound, "Tweet not found")
	}
	if err != nil {
		return false, internal("toggle "+field, err)
	}
	return added, nil
}

// AddComment appends a comment; comments keep insertion order.
func (s *Tweets) AddComment(ctx context.Context, actor, id, content string) (*models.CommentView, error) {
	actorID, err := parseActor(actor)
	if err != nil {
		return nil, err
	}
	tweetID, err := parseID(id, "tweet")
	if err != nil {
		return nil, err
	}
	in := commentInput{Content: content}
	if strings.TrimSpace(content) == "" {
		in.Content = ""
	}
	if err := check(in); err != nil {
		return nil, err
	}

	c := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    actorID,
		Content:   content,
		CreatedAt: s.d.Now().UTC(),
	}
	err = s.d.Store.Tweets.PushComment(ctx, tweetID, c)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, "Tweet not found")
	}
	if err != nil {
		return nil, internal("push comment", err)
	}
	metrics.IncInteraction("commented")

	var author *models.UserSummary
	if u, err := s.d.Store.Users.FindByID(ctx, actorID); err == nil {
		sum := u.Summary()
		sum.Bio = ""
		author = &sum
	}
	view := commentView(c, author)
	return &view, nil
}

// SearchTweets matches query inside tweet content, ignoring case, newest first.
func (s *Tweets) SearchTweets(ctx context.Context, query string) ([]models.TweetView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, newError(KindInvalidInput, "Query parameter is required")
	}
	tweets, err := s.d.Store.Tweets.Find(ctx, store.TweetFilter{Query: query, Limit: TweetSearchLimit})
	if err != nil {
		return nil, internal("search tweets", err)
	}
	views, err := s.j.views(ctx, tweets, joinOpts{})
	if err != nil {
		return nil, internal("join tweets", err)
	}
	return views, nil
}
