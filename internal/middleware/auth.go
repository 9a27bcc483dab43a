package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oopsmv/backend/internal/config"
	"github.com/oopsmv/backend/internal/services"
)

// Auth guards a route group behind an authenticated session. The session
// token comes from the cookie; anonymous or unknown sessions get a 401.
func Auth(authService *services.AuthService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cfg.SessionCookieName)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		sess, err := authService.CurrentUser(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
			c.Abort()
			return
		}
		if sess == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		c.Set("username", sess.Username)
		c.Set("nickname", sess.Nickname)
		c.Set("sessionToken", token)
		c.Next()
	}
}
