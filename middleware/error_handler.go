package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/openjuris/docketsync/common"
)

// ErrorHandler converts errors attached to the gin context into structured
// JSON payloads. Unexpected errors are logged and surfaced as a bare 500 so
// internals never leak to callers.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if apiErr, ok := err.(common.APIError); ok {
			response := gin.H{"error": apiErr.Message}
			if apiErr.Fields != nil {
				response["fields"] = apiErr.Fields
			}
			c.JSON(apiErr.Status, response)
			return
		}

		logrus.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		}).Error("unhandled request error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
