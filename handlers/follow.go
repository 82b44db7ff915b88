package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (a *API) FollowUser(c *gin.Context) {
	ctx, cancel := a.ctx(c)
	defer cancel()

	if err := a.svc.Users.Follow(ctx, actor(c), c.Param("id")); err != nil {
		a.respondError(c, "follow", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User followed successfully"})
}

func (a *API) UnfollowUser(c *gin.Context) {
	ctx, cancel := a.ctx(c)
	defer cancel()

	if err := a.svc.Users.Unfollow(ctx, actor(c), c.Param("id")); err != nil {
		a.respondError(c, "unfollow", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User unfollowed successfully"})
}

// GetSuggestedUsers accepts an optional ?limit=, default 5.
func (a *API) GetSuggestedUsers(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	ctx, cancel := a.ctx(c)
	defer cancel()

	users, err := a.svc.Users.SuggestUsers(ctx, actor(c), limit)
	if err != nil {
		a.respondError(c, "suggest users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}
