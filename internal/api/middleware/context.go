package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/workforce-ai/corsgate/pkg/auth"
)

// Keys under which middleware stores request-scoped values.
const (
	CorrelationIDKey = "correlation_id"
	PrincipalKey     = "principal"
)

// PrincipalFrom returns the principal set by AuthMiddleware.
func PrincipalFrom(c *gin.Context) (*auth.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*auth.Principal)
	return p, ok && p != nil
}
