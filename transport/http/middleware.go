package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ethos-labs/ethos-auth/core"
	"github.com/ethos-labs/ethos-auth/service"
)

const sessionContextKey = "authSession"

// AuthMiddleware creates middleware that validates bearer session tokens.
// Every validation failure collapses to the same 401 body; the specific
// kind (expired, malformed, bad signature) stays in the service log only.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")

		session, err := authService.Validate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
			return
		}

		c.Set(sessionContextKey, session)

		c.Next()
	}
}

// SessionFromContext returns the authenticated session set by AuthMiddleware.
func SessionFromContext(c *gin.Context) (*core.Session, bool) {
	v, exists := c.Get(sessionContextKey)
	if !exists {
		return nil, false
	}
	session, ok := v.(*core.Session)
	return session, ok
}
