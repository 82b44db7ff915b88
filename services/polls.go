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

type pollInput struct {
	Question string   `validate:"required"`
	Options  []string `validate:"min=2,max=10,dive,required"`
}

type Polls struct {
	d Deps
}

func (s *Polls) CreatePoll(ctx context.Context, actor, question string, options []string) (*models.Poll, error) {
	actorID, err := parseActor(actor)
	if err != nil {
		return nil, err
	}

	in := pollInput{Question: strings.TrimSpace(question)}
	for _, o := range options {
		in.Options = append(in.Options, strings.TrimSpace(o))
	}
	if err := check(in); err != nil {
		return nil, err
	}

	p := &models.Poll{
		ID:        primitive.NewObjectID(),
		Question:  in.Question,
		Options:   make([]models.PollOption, len(in.Options)),
		CreatedBy: actorID,
		CreatedAt: s.d.Now().UTC(),
	}
	for i, text := range in.Options {
		p.Options[i] = models.PollOption{Text: text}
	}

	if err := s.d.Store.Polls.Create(ctx, p); err != nil {
		return nil, internal("create poll", err)
	}
	return p, nil
}

func (s *Polls) GetPoll(ctx context.Context, id string) (*models.Poll, error) {
	pollID, err := parseID(id, "poll")
	if err != nil {
		return nil, err
	}
	return s.find(ctx, pollID)
}

func (s *Polls) find(ctx context.Context, id primitive.ObjectID) (*models.Poll, error) {
	p, err := s.d.Store.Polls.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, "Poll not found")
	}
	if err != nil {
		return nil, internal("find poll", err)
	}
	return p, nil
}

// Vote adds one vote to the option. Voters are not tracked, so the same
// caller may vote any number of times.
func (s *Polls) Vote(ctx context.Context, id string, option int) (*models.Poll, error) {
	pollID, err := parseID(id, "poll")
	if err != nil {
		return nil, err
	}
	p, err := s.find(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if option < 0 || option >= len(p.Options) {
		return nil, newError(KindOutOfRange, "Invalid option index")
	}

	p, err = s.d.Store.Polls.IncVote(ctx, pollID, option)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, "Poll not found")
	}
	if err != nil {
		return nil, internal("vote", err)
	}
	metrics.PollVotes.Inc()
	return p, nil
}
