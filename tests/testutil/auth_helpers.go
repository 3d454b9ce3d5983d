package testutil

import (
	"github.com/gin-gonic/gin"

	"github.com/Seifallahbhj/beyana-Naturellement-Bio/middleware"
	"github.com/Seifallahbhj/beyana-Naturellement-Bio/models"
)

// MockAuthMiddleware returns a middleware that injects the given user into
// the request context the same way Authenticate does, skipping token checks.
func MockAuthMiddleware(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetCurrentUser(c, user)
		c.Next()
	}
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
