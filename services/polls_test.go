package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePoll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice")

	p, err := f.svc.Polls.CreatePoll(ctx, a, " Tabs or spaces? ", []string{"tabs", " spaces "})
	require.NoError(t, err)
	assert.Equal(t, "Tabs or spaces?", p.Question)
	require.Len(t, p.Options, 2)
	assert.Equal(t, "spaces", p.Options[1].Text)
	assert.Zero(t, p.Options[0].Votes)
	assert.Equal(t, a, p.CreatedBy.Hex())

	tests := []struct {
		name     string
		question string
		options  []string
		msg      string
	}{
		{"no question", "", []string{"a", "b"}, "Poll question is required"},
		{"one option", "q", []string{"a"}, "Poll needs at least 2 options"},
		{"too many", "q", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}, "Poll cannot have more than 10 options"},
		{"blank option", "q", []string{"a", "  "}, "Poll options cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Polls.CreatePoll(ctx, a, tt.question, tt.options)
			requireKind(t, err, KindInvalidInput, tt.msg)
		})
	}
}

func TestVote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "alice")
	p, err := f.svc.Polls.CreatePoll(ctx, a, "q", []string{"a", "b", "c"})
	require.NoError(t, err)

	// voters are not tracked, so repeating a vote counts again
	_, err = f.svc.Polls.Vote(ctx, p.ID.Hex(), 1)
	require.NoError(t, err)
	got, err := f.svc.Polls.Vote(ctx, p.ID.Hex(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Options[1].Votes)
	assert.Zero(t, got.Options[0].Votes)

	_, err = f.svc.Polls.Vote(ctx, p.ID.Hex(), 3)
	requireKind(t, err, KindOutOfRange, "Invalid option index")
	_, err = f.svc.Polls.Vote(ctx, p.ID.Hex(), -1)
	requireKind(t, err, KindOutOfRange, "Invalid option index")

	_, err = f.svc.Polls.Vote(ctx, "65f000000000000000000000", 0)
	requireKind(t, err, KindNotFound, "Poll not found")

	fetched, err := f.svc.Polls.GetPoll(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(2), fetched.Options[1].Votes)
}
