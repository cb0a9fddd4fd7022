package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/workforce-ai/corsgate/internal/api/response"
	"github.com/workforce-ai/corsgate/internal/models"
	"github.com/workforce-ai/corsgate/internal/repository"
)

const defaultAuditPage = 50

// AuditLister reads recorded audit events.
type AuditLister interface {
	ListRecent(ctx context.Context, kind string, limit int) ([]models.AuditEvent, error)
}

// AuditHandler serves the audit log.
type AuditHandler struct {
	events AuditLister
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(events AuditLister) *AuditHandler {
	return &AuditHandler{events: events}
}

var auditKinds = map[string]bool{
	models.AuditOriginRejected: true,
	models.AuditAuthDenied:     true,
	models.AuditAuthAllowed:    true,
}

// HandleListEvents handles GET /api/v1/audit/events.
func (h *AuditHandler) HandleListEvents(c *gin.Context) {
	kind := c.Query("kind")
	if kind != "" && !auditKinds[kind] {
		response.BadRequest(c, fmt.Sprintf("unknown audit kind %q", kind), nil)
		return
	}

	limit := defaultAuditPage
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > repository.MaxAuditPage {
			response.BadRequest(c, fmt.Sprintf("limit must be between 1 and %d", repository.MaxAuditPage), nil)
			return
		}
		limit = n
	}

	events, err := h.events.ListRecent(c.Request.Context(), kind, limit)
	if err != nil {
		response.InternalError(c, fmt.Sprintf("failed to list audit events: %v", err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}
