package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"chirp/database"
	"chirp/models"
	"chirp/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// backends returns every store the contract runs against. MongoDB is included
// when MONGODB_TEST_URI points at a disposable server.
func backends(t *testing.T) map[string]func(t *testing.T) store.Store {
	t.Helper()
	out := map[string]func(t *testing.T) store.Store{
		"memory": func(*testing.T) store.Store { return store.NewMemory().Store() },
	}
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		return out
	}
	out["mongo"] = func(t *testing.T) store.Store {
		require.NoError(t, database.ConnectMongo(uri, "chirp_test_"+primitive.NewObjectID().Hex()))
		ctx := context.Background()
		require.NoError(t, database.EnsureIndexes(ctx))
		t.Cleanup(func() {
			_ = database.DB.Drop(ctx)
			_ = database.DisconnectMongo()
		})
		return database.NewStore()
	}
	return out
}

func forEachBackend(t *testing.T, fn func(t *testing.T, st store.Store)) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) { fn(t, open(t)) })
	}
}

func TestUsers_Duplicate(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		ctx := context.Background()

		require.NoError(t, st.Users.Create(ctx, &models.User{Username: "alice", Email: "a@x.test"}))
		assert.ErrorIs(t, st.Users.Create(ctx, &models.User{Username: "alice", Email: "b@x.test"}), store.ErrDuplicate)
		assert.ErrorIs(t, st.Users.Create(ctx, &models.User{Username: "bob", Email: "a@x.test"}), store.ErrDuplicate)

		_, err := st.Users.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, store.ErrNotFound)

		u, err := st.Users.FindByLogin(ctx, "a@x.test")
		require.NoError(t, err)
		assert.Equal(t, "alice", u.Username)
	})
}

func TestUsers_FollowEdgesAndSearch(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		ctx := context.Background()
		a := &models.User{Username: "alice", Email: "a@x.test", Bio: "Gopher"}
		b := &models.User{Username: "bob", Email: "b@x.test"}
		require.NoError(t, st.Users.Create(ctx, a))
		require.NoError(t, st.Users.Create(ctx, b))

		require.NoError(t, st.Users.AddFollowing(ctx, a.ID, b.ID))
		require.NoError(t, st.Users.AddFollowing(ctx, a.ID, b.ID))
		require.NoError(t, st.Users.AddFollower(ctx, b.ID, a.ID))

		got, err := st.Users.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{b.ID}, got.Following)

		require.NoError(t, st.Users.RemoveFollowing(ctx, a.ID, b.ID))
		got, err = st.Users.FindByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Following)

		assert.ErrorIs(t, st.Users.AddFollower(ctx, primitive.NewObjectID(), a.ID), store.ErrNotFound)

		found, err := st.Users.Search(ctx, "gOpHeR", 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "alice", found[0].Username)

		found, err = st.Users.Search(ctx, ".*", 10)
		require.NoError(t, err)
		assert.Empty(t, found)

		sugg, err := st.Users.Suggest(ctx, []primitive.ObjectID{a.ID}, 5)
		require.NoError(t, err)
		require.Len(t, sugg, 1)
		assert.Equal(t, "bob", sugg[0].Username)
	})
}

func TestUsers_ReadsAreCopies(t *testing.T) {
	st := store.NewMemory().Store()
	ctx := context.Background()
	u := &models.User{Username: "alice", Email: "a@x.test"}
	require.NoError(t, st.Users.Create(ctx, u))

	got, err := st.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	got.Following = append(got.Following, primitive.NewObjectID())
	got.Bio = "changed"

	again, err := st.Users.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Following)
	assert.Empty(t, again.Bio)
}

func TestTweets_FindOrderAndFilters(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		ctx := context.Background()
		author := primitive.NewObjectID()
		other := primitive.NewObjectID()
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		older := &models.Tweet{UserID: author, Content: "older", CreatedAt: base}
		newer := &models.Tweet{UserID: author, Content: "newer", CreatedAt: base.Add(time.Minute)}
		require.NoError(t, st.Tweets.Create(ctx, older))
		require.NoError(t, st.Tweets.Create(ctx, newer))
		reply := &models.Tweet{UserID: author, Content: "reply", CreatedAt: base.Add(2 * time.Minute), InReplyToTweet: &older.ID}
		require.NoError(t, st.Tweets.Create(ctx, reply))
		require.NoError(t, st.Tweets.Create(ctx, &models.Tweet{UserID: other, Content: "elsewhere", CreatedAt: base}))

		got, err := st.Tweets.Find(ctx, store.TweetFilter{Authors: []primitive.ObjectID{author}, Replies: store.Bool(false)})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "newer", got[0].Content)
		assert.Equal(t, "older", got[1].Content)

		got, err = st.Tweets.Find(ctx, store.TweetFilter{Authors: []primitive.ObjectID{author}, Replies: store.Bool(true)})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "reply", got[0].Content)

		got, err = st.Tweets.Find(ctx, store.TweetFilter{InReplyToTweet: &older.ID})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "reply", got[0].Content)

		got, err = st.Tweets.Find(ctx, store.TweetFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "reply", got[0].Content)

		got, err = st.Tweets.Find(ctx, store.TweetFilter{Query: "ELSE"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, other, got[0].UserID)

		n, err := st.Tweets.CountByAuthor(ctx, author)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		require.NoError(t, st.Tweets.Delete(ctx, older.ID))
		assert.ErrorIs(t, st.Tweets.Delete(ctx, older.ID), store.ErrNotFound)
	})
}

func TestTweets_ToggleMemberAndComments(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		ctx := context.Background()
		tw := &models.Tweet{UserID: primitive.NewObjectID(), Content: "x", CreatedAt: time.Now().UTC()}
		require.NoError(t, st.Tweets.Create(ctx, tw))
		user := primitive.NewObjectID()

		added, err := st.Tweets.ToggleMember(ctx, tw.ID, store.FieldLikes, user)
		require.NoError(t, err)
		assert.True(t, added)

		added, err = st.Tweets.ToggleMember(ctx, tw.ID, store.FieldLikes, user)
		require.NoError(t, err)
		assert.False(t, added)

		added, err = st.Tweets.ToggleMember(ctx, tw.ID, store.FieldRetweets, user)
		require.NoError(t, err)
		assert.True(t, added)

		require.NoError(t, st.Tweets.PushComment(ctx, tw.ID, models.Comment{ID: primitive.NewObjectID(), UserID: user, Content: "one"}))
		require.NoError(t, st.Tweets.PushComment(ctx, tw.ID, models.Comment{ID: primitive.NewObjectID(), UserID: user, Content: "two"}))

		got, err := st.Tweets.FindByID(ctx, tw.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Likes)
		assert.Equal(t, []primitive.ObjectID{user}, got.Retweets)
		require.Len(t, got.Comments, 2)
		assert.Equal(t, "one", got.Comments[0].Content)
		assert.Equal(t, "two", got.Comments[1].Content)

		_, err = st.Tweets.ToggleMember(ctx, primitive.NewObjectID(), store.FieldLikes, user)
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.ErrorIs(t, st.Tweets.PushComment(ctx, primitive.NewObjectID(), models.Comment{}), store.ErrNotFound)
	})
}

func TestPolls_IncVote(t *testing.T) {
	forEachBackend(t, func(t *testing.T, st store.Store) {
		ctx := context.Background()
		p := &models.Poll{Question: "q", Options: []models.PollOption{{Text: "a"}, {Text: "b"}}}
		require.NoError(t, st.Polls.Create(ctx, p))

		got, err := st.Polls.IncVote(ctx, p.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Options[1].Votes)

		_, err = st.Polls.IncVote(ctx, p.ID, 2)
		assert.ErrorIs(t, err, store.ErrNotFound)

		_, err = st.Polls.FindByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
