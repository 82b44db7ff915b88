package services

import (
	"context"
	"errors"

	"chirp/models"
	"chirp/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const HomeTimelineLimit = 20

// Timeline assembles reverse-chronological tweet lists.
type Timeline struct {
	d Deps
	j joiner
}

// HomeTimeline returns the newest tweets written by the actor or anyone the
// actor follows.
func (s *Timeline) HomeTimeline(ctx context.Context, actor string) ([]models.TweetView, error) {
	actorID, err := parseActor(actor)
	if err != nil {
		return nil, err
	}
	me, err := s.d.Store.Users.FindByID(ctx, actorID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, "User not found")
	}
	if err != nil {
		return nil, internal("find user", err)
	}

	authors := append([]primitive.ObjectID{me.ID}, me.Following...)
	return s.list(ctx, store.TweetFilter{Authors: authors, Limit: HomeTimelineLimit}, joinOpts{})
}

// UserTweets lists a user's tweets that are not replies.
func (s *Timeline) UserTweets(ctx context.Context, username string) ([]models.TweetView, error) {
	u, err := s.byUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, store.TweetFilter{
		Authors: []primitive.ObjectID{u.ID},
		Replies: store.Bool(false),
	}, joinOpts{})
}

// UserReplies lists a user's replies, each joined with the tweet it answers.
func (s *Timeline) UserReplies(ctx context.Context, username string) ([]models.TweetView, error) {
	u, err := s.byUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, store.TweetFilter{
		Authors: []primitive.ObjectID{u.ID},
		Replies: store.Bool(true),
	}, joinOpts{replyTarget: true})
}

// TweetReplies lists the direct replies to a tweet.
func (s *Timeline) TweetReplies(ctx context.Context, id string) ([]models.TweetView, error) {
	tweetID, err := parseID(id, "tweet")
	if err != nil {
		return nil, err
	}
	return s.list(ctx, store.TweetFilter{InReplyToTweet: &tweetID}, joinOpts{})
}

func (s *Timeline) byUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.d.Store.Users.FindByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, "User not found")
	}
	if err != nil {
		return nil, internal("find user", err)
	}
	return u, nil
}

func (s *Timeline) list(ctx context.Context, f store.TweetFilter, opts joinOpts) ([]models.TweetView, error) {
	tweets, err := s.d.Store.Tweets.Find(ctx, f)
	if err != nil {
		return nil, internal("find tweets", err)
	}
	views, err := s.j.views(ctx, tweets, opts)
	if err != nil {
		return nil, internal("join tweets", err)
	}
	return views, nil
}
