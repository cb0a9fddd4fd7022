package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/workforce-ai/corsgate/internal/api/response"
	"github.com/workforce-ai/corsgate/internal/config"
	"github.com/workforce-ai/corsgate/pkg/auth"
)

// DevTokenHandler mints test JWTs. Only mounted in development.
func DevTokenHandler(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Subject string `json:"subject"`
			Role    string `json:"role"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request", nil)
			return
		}
		if req.Subject == "" {
			response.BadRequest(c, "subject is required", nil)
			return
		}
		if req.Role == "" {
			req.Role = "admin"
		}

		token, err := auth.GenerateToken(cfg.Secret, cfg.Issuer, req.Subject, req.Role, cfg.ExpiryHours)
		if err != nil {
			response.InternalError(c, "failed to generate token")
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}
