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

const (
	DefaultSuggestLimit = 5
	UserSearchLimit     = 10
)

type registerInput struct {
	Username string `validate:"required,handle"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type loginInput struct {
	Login    string `validate:"required"`
	Password string `validate:"required"`
}

type profileInput struct {
	Bio      *string `validate:"omitempty,max=160"`
	Location *string `validate:"omitempty,max=30"`
	Website  *string `validate:"omitempty,website"`
}

// AuthResult is a user together with a freshly issued access token.
type AuthResult struct {
	Token string
	User  *models.User
}

// Users covers identity and the follow graph.
type Users struct {
	d Deps
}

func (s *Users) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	if err := check(registerInput{Username: username, Email: email, Password: password}); err != nil {
		return nil, err
	}

	existing, err := s.d.Store.Users.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case err == nil:
		if existing.Email == email {
			return nil, newError(KindConflict, "Email already in use")
		}
		return nil, newError(KindConflict, "Username already taken")
	case !errors.Is(err, store.ErrNotFound):
		return nil, internal("find user", err)
	}

	hash, err := s.d.Hasher.Hash(password)
	if err != nil {
		return nil, internal("hash password", err)
	}

	now := s.d.Now().UTC()
	u := &models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Email:     email,
		Password:  hash,
		Following: []primitive.ObjectID{},
		Followers: []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.d.Store.Users.Create(ctx, u); err != nil {
		// lost a race against a concurrent registration
		if errors.Is(err, store.ErrDuplicate) {
			return nil, newError(KindConflict, "Username or email already taken")
		}
		return nil, internal("create user", err)
	}

	token, err := s.d.Tokens.Issue(u.ID.Hex(), u.Username)
	if err != nil {
		return nil, internal("issue token", err)
	}
	s.d.Log.Info(ctx, "user registered", "userId", u.ID.Hex(), "username", u.Username)
	return &AuthResult{Token: token, User: u}, nil
}

// Authenticate logs in by username or email.
func (s *Users) Authenticate(ctx context.Context, login, password string) (*AuthResult, error) {
	if err := check(loginInput{Login: strings.TrimSpace(login), Password: password}); err != nil {
		return nil, err
	}

	u, err := s.d.Store.Users.FindByLogin(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, "Invalid credentials")
	}
	if err != nil {
		return nil, internal("find user", err)
	}
	if !s.d.Hasher.Verify(password, u.Password) {
		return nil, newError(KindInvalidCredential, "Invalid credentials")
	}

	token, err := s.d.Tokens.Issue(u.ID.Hex(), u.Username)
	if err != nil {
		return nil, internal("issue token", err)
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *Users) load(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.d.Store.Users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, "User not found")
	}
	if err != nil {
		return nil, internal("find user", err)
	}
	return u, nil
}

// Me returns the authenticated user's own profile.
func (s *Users) Me(ctx context.Context, actor string) (*models.Profile, error) {
	actorID, err := parseActor(actor)
	if err != nil {
		return nil, err
	}
	u, err := s.load(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, u)
}

func (s *Users) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	u, err := s.d.Store.Users.FindByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, "User not found")
	}
	if err != nil {
		return nil, internal("find user", err)
	}
	return s.profile(ctx, u)
}

func (s *Users) profile(ctx context.Context, u *models.User) (*models.Profile, error) {
	related, err := s.d.Store.Users.FindByIDs(ctx, dedupe(append(append([]primitive.ObjectID{}, u.Following...), u.Followers...)))
	if err != nil {
		return nil, internal("load follow graph", err)
	}
	count, err := s.d.Store.Tweets.CountByAuthor(ctx, u.ID)
	if err != nil {
		return nil, internal("count tweets", err)
	}
	return &models.Profile{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		Location:       u.Location,
		Website:        u.Website,
		Following:      summaries(related, u.Following),
		Followers:      summaries(related, u.Followers),
		TweetCount:     count,
		CreatedAt:      u.CreatedAt,
	}, nil
}

// Follow records that actor follows target. The edge lives on both user
// documents; the actor side is written first and rolled back if the target
// side fails.
func (s *Users) Follow(ctx context.Context, actor, target string) error {
	actorID, targetID, err := s.edge(actor, target, "You can't follow yourself")
	if err != nil {
		return err
	}
	me, err := s.loadPair(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if me.IsFollowing(targetID) {
		return newError(KindAlreadyExists, "You already follow this user")
	}

	if err := s.d.Store.Users.AddFollowing(ctx, actorID, targetID); err != nil {
		return internal("add following", err)
	}
	if err := s.d.Store.Users.AddFollower(ctx, targetID, actorID); err != nil {
		if rerr := s.d.Store.Users.RemoveFollowing(ctx, actorID, targetID); rerr != nil {
			s.d.Log.Error(ctx, "follow rollback failed", "actor", actor, "target", target, "error", rerr)
		}
		return internal("add follower", err)
	}

	metrics.IncInteraction("followed")
	return nil
}

// Unfollow is the inverse of Follow, with the same write order and rollback.
func (s *Users) Unfollow(ctx context.Context, actor, target string) error {
	actorID, targetID, err := s.edge(actor, target, "You can't unfollow yourself")
	if err != nil {
		return err
	}
	me, err := s.loadPair(ctx, actorID, targetID)
	if err != nil {
		return err
	}
	if !me.IsFollowing(targetID) {
		return newError(KindNotFound, "You don't follow this user")
	}

	if err := s.d.Store.Users.RemoveFollowing(ctx, actorID, targetID); err != nil {
		return internal("remove following", err)
	}
	if err := s.d.Store.Users.RemoveFollower(ctx, targetID, actorID); err != nil {
		if rerr := s.d.Store.Users.AddFollowing(ctx, actorID, targetID); rerr != nil {
			s.d.Log.Error(ctx, "unfollow rollback failed", "actor", actor, "target", target, "error", rerr)
		}
		return internal("remove follower", err)
	}

	metrics.IncInteraction("unfollowed")
	return nil
}

func (s *Users) edge(actor, target, selfMsg string) (primitive.ObjectID, primitive.ObjectID, error) {
	actorID, err := parseActor(actor)
	if err != nil {
		return actorID, actorID, err
	}
	targetID, err := parseID(target, "user")
	if err != nil {
		return actorID, targetID, err
	}
	if actorID == targetID {
		return actorID, targetID, newError(KindInvalidOperation, selfMsg)
	}
	return actorID, targetID, nil
}

// loadPair checks both ends exist and returns the actor.
func (s *Users) loadPair(ctx context.Context, actorID, targetID primitive.ObjectID) (*models.User, error) {
	if _, err := s.load(ctx, targetID); err != nil {
		return nil, err
	}
	return s.load(ctx, actorID)
}

// SuggestUsers lists users the actor does not follow yet, in store order.
func (s *Users) SuggestUsers(ctx context.Context, actor string, limit int) ([]models.UserSummary, error) {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	actorID, err := parseActor(actor)
	if err != nil {
		return nil, err
	}
	me, err := s.load(ctx, actorID)
	if err != nil {
		return nil, err
	}

	exclude := append([]primitive.ObjectID{me.ID}, me.Following...)
	users, err := s.d.Store.Users.Suggest(ctx, exclude, limit)
	if err != nil {
		return nil, internal("suggest users", err)
	}
	return toSummaries(users), nil
}

// SearchUsers matches query inside usernames and bios, ignoring case.
func (s *Users) SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, newError(KindInvalidInput, "Query parameter is required")
	}
	users, err := s.d.Store.Users.Search(ctx, query, UserSearchLimit)
	if err != nil {
		return nil, internal("search users", err)
	}
	return toSummaries(users), nil
}

// UpdateProfile applies the allowed profile fields to the target user, who
// must be the actor.
func (s *Users) UpdateProfile(ctx context.Context, actor, target string, upd models.ProfileUpdate) (*models.User, error) {
	if actor != target {
		return nil, newError(KindForbidden, "Not authorized to update this profile")
	}
	id, err := parseActor(actor)
	if err != nil {
		return nil, err
	}
	if err := check(profileInput{Bio: upd.Bio, Location: upd.Location, Website: upd.Website}); err != nil {
		return nil, err
	}
	if upd.Empty() {
		return s.load(ctx, id)
	}

	u, err := s.d.Store.Users.UpdateProfile(ctx, id, upd)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, "User not found")
	}
	if err != nil {
		return nil, internal("update profile", err)
	}
	return u, nil
}

func toSummaries(users []models.User) []models.UserSummary {
	out := make([]models.UserSummary, len(users))
	for i := range users {
		out[i] = users[i].Summary()
	}
	return out
}
