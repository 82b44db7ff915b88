package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"chirp/auth"
	"chirp/models"
	"chirp/store"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type published struct {
	recipients []primitive.ObjectID
	tweet      models.TweetView
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []published
}

func (n *recordingNotifier) TweetCreated(recipients []primitive.ObjectID, tweet models.TweetView) {
	n.mu.Lock()
	n.sent = append(n.sent, published{recipients: recipients, tweet: tweet})
	n.mu.Unlock()
}

type fixture struct {
	svc      *Services
	st       store.Store
	clock    *clock
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		st:       store.NewMemory().Store(),
		clock:    &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		notifier: &recordingNotifier{},
	}
	f.svc = New(Deps{
		Store:    f.st,
		Hasher:   auth.Hasher{Cost: bcrypt.MinCost},
		Tokens:   auth.NewTokens("test-secret", time.Hour),
		Notifier: f.notifier,
		Now:      f.clock.Now,
	})
	return f
}

// register creates a user and returns its id as a hex string.
func (f *fixture) register(t *testing.T, username string) string {
	t.Helper()
	res, err := f.svc.Users.Register(context.Background(), username, username+"@example.com", "password1")
	require.NoError(t, err)
	return res.User.ID.Hex()
}

func (f *fixture) tweet(t *testing.T, actor, content string) *models.TweetView {
	t.Helper()
	v, err := f.svc.Tweets.CreateTweet(context.Background(), actor, CreateTweetInput{Content: content})
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	return v
}

func requireKind(t *testing.T, err error, kind Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "error: %v", err)
	if msg != "" {
		var e *Error
		require.ErrorAs(t, err, &e)
		require.Equal(t, msg, e.Message)
	}
}

// withUsers returns services sharing f's store, with the users collection
// wrapped by wrap.
func (f *fixture) withUsers(wrap func(store.Users) store.Users) *Services {
	st := f.st
	st.Users = wrap(st.Users)
	return New(Deps{
		Store:  st,
		Hasher: auth.Hasher{Cost: bcrypt.MinCost},
		Tokens: auth.NewTokens("test-secret", time.Hour),
		Now:    f.clock.Now,
	})
}

// flakyUsers fails the follower-side writes of the follow graph.
type flakyUsers struct {
	store.Users
	err error
}

func (u flakyUsers) AddFollower(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return u.err
}

func (u flakyUsers) RemoveFollower(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return u.err
}
