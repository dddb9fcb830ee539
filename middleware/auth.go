package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openjuris/docketsync/common"
)

// RequireAPIKey guards operator endpoints with a shared admin key carried in
// the X-API-Key header.
func RequireAPIKey(key string) gin.HandlerFunc {
	return requireHeaderSecret("X-API-Key", key)
}

// RequireCronSecret guards the cron endpoint with the secret the platform
// scheduler is configured to send in X-Cron-Secret.
func RequireCronSecret(secret string) gin.HandlerFunc {
	return requireHeaderSecret("X-Cron-Secret", secret)
}

func requireHeaderSecret(header, want string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if want == "" {
			c.Error(common.Errf(http.StatusInternalServerError, "%s is not configured", header))
			c.Abort()
			return
		}

		got := c.GetHeader(header)
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			c.Error(common.Errf(http.StatusUnauthorized, "unauthorized"))
			c.Abort()
			return
		}

		c.Next()
	}
}
