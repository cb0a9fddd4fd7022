package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/workforce-ai/corsgate/internal/api/middleware"
	"github.com/workforce-ai/corsgate/internal/api/response"
	"github.com/workforce-ai/corsgate/internal/audit"
	"github.com/workforce-ai/corsgate/internal/metrics"
	"github.com/workforce-ai/corsgate/internal/models"
	"github.com/workforce-ai/corsgate/pkg/auth"
)

// AuthorizeHandler runs a token through the same verifier the gateway
// authorizer uses, so operators can check a token without a deployment.
type AuthorizeHandler struct {
	verifier auth.Verifier
	recorder audit.Recorder
	metrics  *metrics.Collector
}

// NewAuthorizeHandler creates a new authorize handler.
func NewAuthorizeHandler(verifier auth.Verifier, rec audit.Recorder, m *metrics.Collector) *AuthorizeHandler {
	return &AuthorizeHandler{verifier: verifier, recorder: rec, metrics: m}
}

type authorizeRequest struct {
	Token string `json:"token" binding:"required"`
}

type authorizeResult struct {
	Allowed   bool            `json:"allowed"`
	Principal *auth.Principal `json:"principal,omitempty"`
	Reason    string          `json:"reason,omitempty"`
}

// HandleAuthorize handles POST /api/v1/authorize.
func (h *AuthorizeHandler) HandleAuthorize(c *gin.Context) {
	var req authorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "request body must contain a token", nil)
		return
	}

	event := &models.AuditEvent{
		Origin:        c.GetHeader("Origin"),
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		CorrelationID: c.GetString(middleware.CorrelationIDKey),
	}

	p, err := h.verifier.Verify(c.Request.Context(), req.Token)
	switch {
	case err == nil:
		h.metrics.RecordAuthDecision("allowed")
		event.Kind = models.AuditAuthAllowed
		event.Principal = p.ID
		audit.Emit(c.Request.Context(), h.recorder, event)
		response.Success(c, http.StatusOK, authorizeResult{Allowed: true, Principal: p})

	case auth.IsRejection(err):
		h.metrics.RecordAuthDecision("denied")
		event.Kind = models.AuditAuthDenied
		event.Reason = err.Error()
		audit.Emit(c.Request.Context(), h.recorder, event)
		response.Success(c, http.StatusOK, authorizeResult{Allowed: false, Reason: err.Error()})

	default:
		h.metrics.RecordAuthDecision("error")
		slog.Error("authorize check failed", slog.String("error", err.Error()))
		response.Error(c, http.StatusServiceUnavailable, response.CodeAuthUnavailable,
			"authorization is temporarily unavailable", nil)
	}
}

// HandleWhoAmI handles GET /api/v1/whoami.
func HandleWhoAmI(c *gin.Context) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}
	response.Success(c, http.StatusOK, p)
}
