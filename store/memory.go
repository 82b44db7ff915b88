package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"chirp/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store with the same semantics as the MongoDB
// implementation. It backs the tests and the MONGODB_URI=memory mode.
type Memory struct {
	mu     sync.RWMutex
	users  map[primitive.ObjectID]*models.User
	order  []primitive.ObjectID // user insertion order, the "natural" store order
	tweets map[primitive.ObjectID]*models.Tweet
	polls  map[primitive.ObjectID]*models.Poll
}

func NewMemory() *Memory {
	return &Memory{
		users:  make(map[primitive.ObjectID]*models.User),
		tweets: make(map[primitive.ObjectID]*models.Tweet),
		polls:  make(map[primitive.ObjectID]*models.Poll),
	}
}

// Store exposes m through the three collection interfaces.
func (m *Memory) Store() Store {
	return Store{
		Users:  memoryUsers{m},
		Tweets: memoryTweets{m},
		Polls:  memoryPolls{m},
	}
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(ids))
	copy(out, ids)
	return out
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Following = cloneIDs(u.Following)
	c.Followers = cloneIDs(u.Followers)
	return &c
}

func cloneTweet(t *models.Tweet) *models.Tweet {
	c := *t
	c.Media = append([]string{}, t.Media...)
	c.Likes = cloneIDs(t.Likes)
	c.Retweets = cloneIDs(t.Retweets)
	c.Comments = append([]models.Comment{}, t.Comments...)
	return &c
}

func clonePoll(p *models.Poll) *models.Poll {
	c := *p
	c.Options = append([]models.PollOption{}, p.Options...)
	return &c
}

func indexOf(ids []primitive.ObjectID, id primitive.ObjectID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func addToSet(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	if indexOf(ids, id) >= 0 {
		return ids
	}
	return append(ids, id)
}

func pull(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

type memoryUsers struct{ m *Memory }

func (r memoryUsers) Create(_ context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, existing := range r.m.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	r.m.users[u.ID] = cloneUser(u)
	r.m.order = append(r.m.order, u.ID)
	return nil
}

func (r memoryUsers) first(match func(*models.User) bool) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, id := range r.m.order {
		if u := r.m.users[id]; match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.first(func(u *models.User) bool { return u.ID == id })
}

func (r memoryUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.first(func(u *models.User) bool { return u.Username == username })
}

func (r memoryUsers) FindByLogin(_ context.Context, login string) (*models.User, error) {
	return r.first(func(u *models.User) bool { return u.Username == login || u.Email == login })
}

func (r memoryUsers) FindByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	return r.first(func(u *models.User) bool { return u.Username == username || u.Email == email })
}

func (r memoryUsers) all(match func(*models.User) bool, limit int) []models.User {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	out := []models.User{}
	for _, id := range r.m.order {
		if limit > 0 && len(out) == limit {
			break
		}
		if u := r.m.users[id]; match(u) {
			out = append(out, *cloneUser(u))
		}
	}
	return out
}

func (r memoryUsers) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	return r.all(func(u *models.User) bool { return indexOf(ids, u.ID) >= 0 }, 0), nil
}

func (r memoryUsers) mutate(id primitive.ObjectID, fn func(*models.User)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r memoryUsers) AddFollowing(_ context.Context, id, target primitive.ObjectID) error {
	return r.mutate(id, func(u *models.User) { u.Following = addToSet(u.Following, target) })
}

func (r memoryUsers) RemoveFollowing(_ context.Context, id, target primitive.ObjectID) error {
	return r.mutate(id, func(u *models.User) { u.Following = pull(u.Following, target) })
}

func (r memoryUsers) AddFollower(_ context.Context, id, follower primitive.ObjectID) error {
	return r.mutate(id, func(u *models.User) { u.Followers = addToSet(u.Followers, follower) })
}

func (r memoryUsers) RemoveFollower(_ context.Context, id, follower primitive.ObjectID) error {
	return r.mutate(id, func(u *models.User) { u.Followers = pull(u.Followers, follower) })
}

func (r memoryUsers) Suggest(_ context.Context, exclude []primitive.ObjectID, limit int) ([]models.User, error) {
	return r.all(func(u *models.User) bool { return indexOf(exclude, u.ID) < 0 }, limit), nil
}

func (r memoryUsers) Search(_ context.Context, query string, limit int) ([]models.User, error) {
	q := strings.ToLower(query)
	return r.all(func(u *models.User) bool {
		return strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.Bio), q)
	}, limit), nil
}

func (r memoryUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.User, error) {
	var out *models.User
	err := r.mutate(id, func(u *models.User) {
		if upd.Bio != nil {
			u.Bio = *upd.Bio
		}
		if upd.ProfilePicture != nil {
			u.ProfilePicture = *upd.ProfilePicture
		}
		if upd.Location != nil {
			u.Location = *upd.Location
		}
		if upd.Website != nil {
			u.Website = *upd.Website
		}
		out = cloneUser(u)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type memoryTweets struct{ m *Memory }

func (r memoryTweets) Create(_ context.Context, t *models.Tweet) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	r.m.tweets[t.ID] = cloneTweet(t)
	return nil
}

func (r memoryTweets) FindByID(_ context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	t, ok := r.m.tweets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTweet(t), nil
}

func (r memoryTweets) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Tweet, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	out := []models.Tweet{}
	for _, id := range ids {
		if t, ok := r.m.tweets[id]; ok {
			out = append(out, *cloneTweet(t))
		}
	}
	return out, nil
}

func (r memoryTweets) Delete(_ context.Context, id primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.tweets[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.tweets, id)
	return nil
}

func (r memoryTweets) Find(_ context.Context, f TweetFilter) ([]models.Tweet, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	q := strings.ToLower(f.Query)
	out := []models.Tweet{}
	for _, t := range r.m.tweets {
		if f.Authors != nil && indexOf(f.Authors, t.UserID) < 0 {
			continue
		}
		if f.Replies != nil && t.IsReply() != *f.Replies {
			continue
		}
		if f.InReplyToTweet != nil && (t.InReplyToTweet == nil || *t.InReplyToTweet != *f.InReplyToTweet) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Content), q) {
			continue
		}
		out = append(out, *cloneTweet(t))
	}

	sort.Slice(out, func(i, j int) bool { return models.NewerFirst(&out[i], &out[j]) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r memoryTweets) CountByAuthor(_ context.Context, author primitive.ObjectID) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	var n int64
	for _, t := range r.m.tweets {
		if t.UserID == author {
			n++
		}
	}
	return n, nil
}

func (r memoryTweets) ToggleMember(_ context.Context, id primitive.ObjectID, field string, userID primitive.ObjectID) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	t, ok := r.m.tweets[id]
	if !ok {
		return false, ErrNotFound
	}
	set := &t.Likes
	if field == FieldRetweets {
		set = &t.Retweets
	}
	t.UpdatedAt = time.Now().UTC()
	if indexOf(*set, userID) >= 0 {
		*set = pull(*set, userID)
		return false, nil
	}
	*set = append(*set, userID)
	return true, nil
}

func (r memoryTweets) PushComment(_ context.Context, id primitive.ObjectID, c models.Comment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	t, ok := r.m.tweets[id]
	if !ok {
		return ErrNotFound
	}
	t.Comments = append(t.Comments, c)
	t.UpdatedAt = time.Now().UTC()
	return nil
}

type memoryPolls struct{ m *Memory }

func (r memoryPolls) Create(_ context.Context, p *models.Poll) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	r.m.polls[p.ID] = clonePoll(p)
	return nil
}

func (r memoryPolls) FindByID(_ context.Context, id primitive.ObjectID) (*models.Poll, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	p, ok := r.m.polls[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clonePoll(p), nil
}

func (r memoryPolls) IncVote(_ context.Context, id primitive.ObjectID, option int) (*models.Poll, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	p, ok := r.m.polls[id]
	if !ok || option < 0 || option >= len(p.Options) {
		return nil, ErrNotFound
	}
	p.Options[option].Votes++
	return clonePoll(p), nil
}
