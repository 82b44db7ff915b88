// Package store persists users, tweets and polls. Every mutation is a single
// document update; nothing spans documents.
package store

import (
	"context"
	"errors"

	"chirp/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Set fields on a tweet that hold user ids.
const (
	FieldLikes    = "likes"
	FieldRetweets = "retweets"
)

type Users interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// FindByLogin matches login against username or email.
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	// FindByUsernameOrEmail returns any user holding either value.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)

	AddFollowing(ctx context.Context, id, target primitive.ObjectID) error
	RemoveFollowing(ctx context.Context, id, target primitive.ObjectID) error
	AddFollower(ctx context.Context, id, follower primitive.ObjectID) error
	RemoveFollower(ctx context.Context, id, follower primitive.ObjectID) error

	// Suggest returns up to limit users whose id is not in exclude.
	Suggest(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]models.User, error)
	// Search matches query case-insensitively inside username or bio.
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.User, error)
}

// TweetFilter selects tweets. Zero values mean "no constraint".
type TweetFilter struct {
	Authors []primitive.ObjectID
	// Replies: nil = both, true = only replies, false = no replies.
	Replies        *bool
	InReplyToTweet *primitive.ObjectID
	Query          string
	Limit          int
}

type Tweets interface {
	Create(ctx context.Context, t *models.Tweet) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Tweet, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// Find returns matching tweets ordered by createdAt then id, newest first.
	Find(ctx context.Context, f TweetFilter) ([]models.Tweet, error)
	CountByAuthor(ctx context.Context, author primitive.ObjectID) (int64, error)
	// ToggleMember adds userID to the set field if absent, removes it
	// otherwise, and reports whether it was added.
	ToggleMember(ctx context.Context, id primitive.ObjectID, field string, userID primitive.ObjectID) (bool, error)
	PushComment(ctx context.Context, id primitive.ObjectID, c models.Comment) error
}

type Polls interface {
	Create(ctx context.Context, p *models.Poll) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Poll, error)
	// IncVote increments the option's votes and returns the updated poll.
	IncVote(ctx context.Context, id primitive.ObjectID, option int) (*models.Poll, error)
}

// Store bundles the three collections.
type Store struct {
	Users  Users
	Tweets Tweets
	Polls  Polls
}

func Bool(b bool) *bool { return &b }
