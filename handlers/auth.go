package handlers

import (
	"net/http"

	"chirp/models"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	// Username accepts a username or an email address.
	Username string `json:"username"`
	Password string `json:"password"`
}

func authUser(u *models.User) gin.H {
	return gin.H{
		"id":             u.ID.Hex(),
		"username":       u.Username,
		"email":          u.Email,
		"profilePicture": u.ProfilePicture,
		"bio":            u.Bio,
	}
}

func (a *API) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, invalidBody)
		return
	}

	ctx, cancel := a.ctx(c)
	defer cancel()

	res, err := a.svc.Users.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		a.respondError(c, "register", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": res.Token,
		"user":  authUser(res.User),
	})
}

func (a *API) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, invalidBody)
		return
	}

	ctx, cancel := a.ctx(c)
	defer cancel()

	res, err := a.svc.Users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		a.respondError(c, "login", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": res.Token,
		"user":  authUser(res.User),
	})
}

func (a *API) GetCurrentUser(c *gin.Context) {
	ctx, cancel := a.ctx(c)
	defer cancel()

	profile, err := a.svc.Users.Me(ctx, actor(c))
	if err != nil {
		a.respondError(c, "get current user", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
