package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/workforce-ai/corsgate/internal/api/response"
)

// RequireRole returns middleware that admits only principals holding one
// of allowedRoles. It must run after AuthMiddleware.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			response.Forbidden(c, "principal not found in context")
			c.Abort()
			return
		}

		if !slices.Contains(allowedRoles, p.Role) {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}
