package middleware

import (
	"net/http"
	"strings"

	"chirp/auth"
	"chirp/logging"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuthMiddleware.
const (
	UserIDKey   = "userId"
	UsernameKey = "username"
)

func JWTAuthMiddleware(tokens *auth.Tokens, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip middleware for OPTIONS requests (CORS preflight)
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "No authorization token provided",
			})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Format should be: Bearer <token>",
			})
			return
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			log.Debug(c.Request.Context(), "jwt validation failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Token is not valid",
			})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}
