package services

import (
	"context"

	"chirp/models"
	"chirp/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type joinOpts struct {
	// replyTarget joins the replied-to tweet and its author.
	replyTarget bool
	comments    bool
}

// joiner turns stored tweets into TweetViews with two batched lookups: the
// referenced tweets, then every user any of them mentions.
type joiner struct {
	st store.Store
}

func (j joiner) views(ctx context.Context, tweets []models.Tweet, opts joinOpts) ([]models.TweetView, error) {
	var refIDs []primitive.ObjectID
	for i := range tweets {
		if q := tweets[i].QuoteTweet; q != nil {
			refIDs = append(refIDs, *q)
		}
		if r := tweets[i].InReplyToTweet; r != nil && opts.replyTarget {
			refIDs = append(refIDs, *r)
		}
	}
	refs, err := j.st.Tweets.FindByIDs(ctx, refIDs)
	if err != nil {
		return nil, err
	}
	refByID := make(map[primitive.ObjectID]*models.Tweet, len(refs))
	for i := range refs {
		refByID[refs[i].ID] = &refs[i]
	}

	var userIDs []primitive.ObjectID
	addUsers := func(t *models.Tweet) {
		userIDs = append(userIDs, t.UserID)
		if t.InReplyToUser != nil {
			userIDs = append(userIDs, *t.InReplyToUser)
		}
		if opts.comments {
			for _, c := range t.Comments {
				userIDs = append(userIDs, c.UserID)
			}
		}
	}
	for i := range tweets {
		addUsers(&tweets[i])
	}
	for i := range refs {
		userIDs = append(userIDs, refs[i].UserID)
	}

	users, err := j.st.Users.FindByIDs(ctx, dedupe(userIDs))
	if err != nil {
		return nil, err
	}
	byUser := make(map[primitive.ObjectID]*models.UserSummary, len(users))
	for i := range users {
		s := users[i].Summary()
		s.Bio = ""
		byUser[s.ID] = &s
	}

	out := make([]models.TweetView, len(tweets))
	for i := range tweets {
		t := &tweets[i]
		v := baseView(t, byUser, opts.comments)
		if t.QuoteTweet != nil {
			if q, ok := refByID[*t.QuoteTweet]; ok {
				qv := baseView(q, byUser, false)
				v.QuoteTweet = &qv
			}
		}
		if t.InReplyToTweet != nil && opts.replyTarget {
			if r, ok := refByID[*t.InReplyToTweet]; ok {
				rv := baseView(r, byUser, false)
				v.InReplyToTweet = &rv
			}
		}
		out[i] = v
	}
	return out, nil
}

func (j joiner) view(ctx context.Context, t *models.Tweet, opts joinOpts) (*models.TweetView, error) {
	vs, err := j.views(ctx, []models.Tweet{*t}, opts)
	if err != nil {
		return nil, err
	}
	return &vs[0], nil
}

func baseView(t *models.Tweet, users map[primitive.ObjectID]*models.UserSummary, comments bool) models.TweetView {
	v := models.TweetView{
		ID:               t.ID,
		User:             users[t.UserID],
		Content:          t.Content,
		Media:            nonNilStrings(t.Media),
		Likes:            nonNilIDs(t.Likes),
		Retweets:         nonNilIDs(t.Retweets),
		Comments:         []models.CommentView{},
		Entities:         ExtractEntities(t.Content),
		QuoteTweetID:     t.QuoteTweet,
		InReplyToTweetID: t.InReplyToTweet,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
	if t.InReplyToUser != nil {
		v.InReplyToUser = users[*t.InReplyToUser]
	}
	if comments {
		for _, c := range t.Comments {
			v.Comments = append(v.Comments, commentView(c, users[c.UserID]))
		}
	}
	return v
}

func commentView(c models.Comment, author *models.UserSummary) models.CommentView {
	return models.CommentView{ID: c.ID, User: author, Content: c.Content, CreatedAt: c.CreatedAt}
}

func summaries(users []models.User, order []primitive.ObjectID) []models.UserSummary {
	byID := make(map[primitive.ObjectID]models.UserSummary, len(users))
	for i := range users {
		byID[users[i].ID] = users[i].Summary()
	}
	out := []models.UserSummary{}
	for _, id := range order {
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func nonNilIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return ids
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
