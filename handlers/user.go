package handlers

import (
	"net/http"

	"chirp/models"

	"github.com/gin-gonic/gin"
)

func (a *API) GetUserByUsername(c *gin.Context) {
	ctx, cancel := a.ctx(c)
	defer cancel()

	profile, err := a.svc.Users.GetProfile(ctx, c.Param("username"))
	if err != nil {
		a.respondError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateUser binds only the allowed profile fields; any other key in the
// body is ignored.
func (a *API) UpdateUser(c *gin.Context) {
	var upd models.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, invalidBody)
		return
	}

	ctx, cancel := a.ctx(c)
	defer cancel()

	user, err := a.svc.Users.UpdateProfile(ctx, actor(c), c.Param("id"), upd)
	if err != nil {
		a.respondError(c, "update user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (a *API) SearchUsers(c *gin.Context) {
	ctx, cancel := a.ctx(c)
	defer cancel()

	users, err := a.svc.Users.SearchUsers(ctx, c.Query("q"))
	if err != nil {
		a.respondError(c, "search users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}
