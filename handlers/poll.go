package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type CreatePollRequest struct {
	Question string `json:"question"`
	Options  []struct {
		Text string `json:"text"`
	} `json:"options"`
}

type VoteRequest struct {
	PollID      string `json:"pollId" binding:"required"`
	OptionIndex *int   `json:"optionIndex" binding:"required"`
}

func (a *API) CreatePoll(c *gin.Context) {
	var req CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, invalidBody)
		return
	}
	options := make([]string, len(req.Options))
	for i, o := range req.Options {
		options[i] = o.Text
	}

	ctx, cancel := a.ctx(c)
	defer cancel()

	poll, err := a.svc.Polls.CreatePoll(ctx, actor(c), req.Question, options)
	if err != nil {
		a.respondError(c, "create poll", err)
		return
	}
	c.JSON(http.StatusCreated, poll)
}

func (a *API) VotePoll(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "pollId and optionIndex are required")
		return
	}

	ctx, cancel := a.ctx(c)
	defer cancel()

	poll, err := a.svc.Polls.Vote(ctx, req.PollID, *req.OptionIndex)
	if err != nil {
		a.respondError(c, "vote", err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

func (a *API) GetPoll(c *gin.Context) {
	ctx, cancel := a.ctx(c)
	defer cancel()

	poll, err := a.svc.Polls.GetPoll(ctx, c.Param("id"))
	if err != nil {
		a.respondError(c, "get poll", err)
		return
	}
	c.JSON(http.StatusOK, poll)
}
