package handlers

import (
	"net/http"

	"chirp/services"

	"github.com/gin-gonic/gin"
)

type CreateTweetRequest struct {
	Content          string   `json:"content"`
	Media            []string `json:"media"`
	QuoteTweetID     string   `json:"quoteTweetId"`
	InReplyToTweetID string   `json:"inReplyToTweetId"`
}

type CommentRequest struct {
	Content string `json:"content"`
}

var actionMessages = map[services.Action]string{
	services.ActionLiked:       "Tweet liked",
	services.ActionUnliked:     "Tweet unliked",
	services.ActionRetweeted:   "Tweet retweeted",
	services.ActionUnretweeted: "Tweet unretweeted",
}

func (a *API) CreateTweet(c *gin.Context) {
	var req CreateTweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, invalidBody)
		return
	}

	ctx, cancel := a.ctx(c)
	defer cancel()

	tweet, err := a.svc.Tweets.CreateTweet(ctx, actor(c), services.CreateTweetInput{
		Content:          req.Content,
		Media:            req.Media,
		QuoteTweetID:     req.QuoteTweetID,
		InReplyToTweetID: req.InReplyToTweetID,
	})
	if err != nil {
		a.respondError(c, "create tweet", err)
		return
	}
	c.JSON(http.StatusCreated, tweet)
}

func (a *API) GetTweetByID(c *gin.Context) {
	ctx, cancel := a.ctx(c)
	defer cancel()

	tweet, err := a.svc.Tweets.GetTweet(ctx, c.Param("id"))
	if err != nil {
		a.respondError(c, "get tweet", err)
		return
	}
	c.JSON(http.StatusOK, tweet)
}

func (a *API) DeleteTweet(c *gin.Context) {
	ctx, cancel := a.ctx(c)
	defer cancel()

	if err := a.svc.Tweets.DeleteTweet(ctx, actor(c), c.Param("id")); err != nil {
		a.respondError(c, "delete tweet", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tweet deleted successfully"})
}

func (a *API) GetHomeTimeline(c *gin.Context) {
	ctx, cancel := a.ctx(c)
	defer cancel()

	tweets, err := a.svc.Timeline.HomeTimeline(ctx, actor(c))
	if err != nil {
		a.respondError(c, "home timeline", err)
		return
	}
	c.JSON(http.StatusOK, tweets)
}

func (a *API) GetUserTweets(c *gin.Context) {
	ctx, cancel := a.ctx(c)
	defer cancel()

	tweets, err := a.svc.Timeline.UserTweets(ctx, c.Param("username"))
	if err != nil {
		a.respondError(c, "user tweets", err)
		return
	}
	c.JSON(http.StatusOK, tweets)
}

func (a *API) GetUserReplies(c *gin.Context) {
	ctx, cancel := a.ctx(c)
	defer cancel()

	tweets, err := a.svc.Timeline.UserReplies(ctx, c.Param("username"))
	if err != nil {
		a.respondError(c, "user replies", err)
		return
	}
	c.JSON(http.StatusOK, tweets)
}

func (a *API) GetTweetReplies(c *gin.Context) {
	ctx, cancel := a.ctx(c)
	defer cancel()

	tweets, err := a.svc.Timeline.TweetReplies(ctx, c.Param("id"))
	if err != nil {
		a.respondError(c, "tweet replies", err)
		return
	}
	c.JSON(http.StatusOK, tweets)
}

func (a *API) LikeTweet(c *gin.Context) {
	ctx, cancel := a.ctx(c)
	defer cancel()

	action, err := a.svc.Tweets.ToggleLike(ctx, actor(c), c.Param("id"))
	if err != nil {
		a.respondError(c, "like tweet", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": actionMessages[action], "action": action})
}

func (a *API) RetweetTweet(c *gin.Context) {
	ctx, cancel := a.ctx(c)
	defer cancel()

	action, err := a.svc.Tweets.ToggleRetweet(ctx, actor(c), c.Param("id"))
	if err != nil {
		a.respondError(c, "retweet tweet", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": actionMessages[action], "action": action})
}

func (a *API) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, invalidBody)
		return
	}

	ctx, cancel := a.ctx(c)
	defer cancel()

	comment, err := a.svc.Tweets.AddComment(ctx, actor(c), c.Param("id"), req.Content)
	if err != nil {
		a.respondError(c, "add comment", err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (a *API) SearchTweets(c *gin.Context) {
	ctx, cancel := a.ctx(c)
	defer cancel()

	tweets, err := a.svc.Tweets.SearchTweets(ctx, c.Query("q"))
	if err != nil {
		a.respondError(c, "search tweets", err)
		return
	}
	c.JSON(http.StatusOK, tweets)
}
