package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/workforce-ai/corsgate/internal/api/response"
	"github.com/workforce-ai/corsgate/internal/config"
	"github.com/workforce-ai/corsgate/internal/models"
	"github.com/workforce-ai/corsgate/internal/origins"
)

// PolicyHandler exposes the effective CORS policy.
type PolicyHandler struct {
	view models.CORSPolicyView
}

// NewPolicyHandler snapshots the policy at startup; it never changes while
// the process runs.
func NewPolicyHandler(cfg config.CORSConfig, policy *origins.Policy) *PolicyHandler {
	return &PolicyHandler{view: models.CORSPolicyView{
		AllowedOrigins:   policy.List(),
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAgeSeconds:    int64(cfg.MaxAge / time.Second),
	}}
}

// HandleGetPolicy handles GET /api/v1/cors/policy.
func (h *PolicyHandler) HandleGetPolicy(c *gin.Context) {
	response.Success(c, http.StatusOK, h.view)
}
