package routes

import (
	"net/http"
	"strings"
	"time"

	"chirp/auth"
	"chirp/config"
	"chirp/handlers"
	"chirp/logging"
	"chirp/metrics"
	"chirp/middleware"
	"chirp/services"
	"chirp/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Config   config.Config
	Services *services.Services
	Tokens   *auth.Tokens
	Hub      *websocket.Manager
	Log      logging.Logger
}

func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Log))
	router.Use(metrics.Middleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		live := 0
		if d.Hub != nil {
			live = d.Hub.ConnectedUsers()
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"time":      time.Now().Unix(),
			"liveUsers": live,
		})
	})
	router.GET("/metrics", metrics.Handler())

	if d.Hub != nil {
		router.GET("/ws", gin.WrapF(websocket.Handler(d.Hub, d.Tokens)))
	}

	api := handlers.NewAPI(d.Services, d.Log, d.Config.RequestTimeout)
	requireAuth := middleware.JWTAuthMiddleware(d.Tokens, d.Log)

	// Public routes (no auth required)
	authGroup := router.Group("/api/auth")
	authGroup.POST("/register", api.Register)
	authGroup.POST("/login", api.Login)
	authGroup.GET("/me", requireAuth, api.GetCurrentUser)

	// Token required
	protected := router.Group("/api")
	protected.Use(requireAuth)

	// Users
	protected.GET("/users/suggestions", api.GetSuggestedUsers)
	protected.GET("/users/search", api.SearchUsers)
	protected.GET("/users/:username", api.GetUserByUsername)
	protected.PUT("/users/:id", api.UpdateUser)
	protected.POST("/users/:id/follow", api.FollowUser)
	protected.POST("/users/:id/unfollow", api.UnfollowUser)

	// Tweets. Reads are public; anything acting as a user needs a token.
	tweets := router.Group("/api/tweets")
	tweets.GET("/search/tweets", api.SearchTweets)
	tweets.GET("/user/:username", api.GetUserTweets)
	tweets.GET("/user/:username/replies", api.GetUserReplies)
	tweets.GET("/:id", api.GetTweetByID)
	tweets.GET("/:id/replies", api.GetTweetReplies)

	protected.POST("/tweets", api.CreateTweet)
	protected.GET("/tweets/timeline/home", api.GetHomeTimeline)
	protected.DELETE("/tweets/:id", api.DeleteTweet)
	protected.POST("/tweets/:id/like", api.LikeTweet)
	protected.POST("/tweets/:id/retweet", api.RetweetTweet)
	protected.POST("/tweets/:id/comment", api.AddComment)

	// Polls
	protected.POST("/polls/create", api.CreatePoll)
	protected.POST("/polls/vote", api.VotePoll)
	protected.GET("/polls/:id", api.GetPoll)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Endpoint not found",
				"path":    c.Request.URL.Path,
			})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})

	return router
}
