package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/creda-technologies/hitch/core"
	"github.com/creda-technologies/hitch/service"
)

// identityKey is the gin context key the middleware stores the authenticated
// identity under.
const identityKey = "claimedIdentity"

const bearerPrefix = "Bearer "

// AuthMiddleware creates middleware that validates session tokens. A missing
// header or a non-bearer scheme fails before the token codec ever runs.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		if !strings.HasPrefix(auth, bearerPrefix) || len(auth) == len(bearerPrefix) {
			status, msg := statusForError(core.ErrMissingCredentials)
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		identity, err := authService.ValidateToken(auth[len(bearerPrefix):])
		if err != nil {
			status, msg := statusForError(err)
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}
