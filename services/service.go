// Package services holds the social-feed operations: identity and follow
// graph, tweets and interactions, timelines and polls. Operations take the
// acting user's id as issued in the access token and return *Error on failure.
package services

import (
	"time"

	"chirp/logging"
	"chirp/models"
	"chirp/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type TokenIssuer interface {
	Issue(userID, username string) (string, error)
}

// Notifier receives newly created tweets together with the users whose home
// timeline they belong to.
type Notifier interface {
	TweetCreated(recipients []primitive.ObjectID, tweet models.TweetView)
}

type nopNotifier struct{}

func (nopNotifier) TweetCreated([]primitive.ObjectID, models.TweetView) {}

type Deps struct {
	Store    store.Store
	Hasher   PasswordHasher
	Tokens   TokenIssuer
	Notifier Notifier
	Log      logging.Logger
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.Log == nil {
		d.Log = logging.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// Services groups every operation set over one set of dependencies.
type Services struct {
	Users    *Users
	Tweets   *Tweets
	Timeline *Timeline
	Polls    *Polls
}

func New(d Deps) *Services {
	d = d.withDefaults()
	return &Services{
		Users:    &Users{d: d},
		Tweets:   &Tweets{d: d, j: joiner{st: d.Store}},
		Timeline: &Timeline{d: d, j: joiner{st: d.Store}},
		Polls:    &Polls{d: d},
	}
}

func parseID(s, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, newError(KindInvalidInput, "Invalid "+what+" ID")
	}
	return id, nil
}

// parseActor parses the authenticated user's id. A malformed id means the
// credential itself is bad.
func parseActor(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, newError(KindUnauthenticated, "Invalid user ID")
	}
	return id, nil
}
