package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/workforce-ai/corsgate/internal/api/response"
	"github.com/workforce-ai/corsgate/internal/audit"
	"github.com/workforce-ai/corsgate/internal/metrics"
	"github.com/workforce-ai/corsgate/internal/models"
	"github.com/workforce-ai/corsgate/pkg/auth"
)

// AuthMiddleware verifies the credential carried in header and stores the
// resulting principal on the context. If the expected token cannot be
// loaded the request fails with 503; it is never let through.
func AuthMiddleware(header string, verifier auth.Verifier, rec audit.Recorder, m *metrics.Collector) gin.HandlerFunc {
	logger := slog.Default().With(slog.String("component", "auth"))

	return func(c *gin.Context) {
		token, err := auth.ExtractToken(header, c.GetHeader(header))
		var principal *auth.Principal
		if err == nil {
			principal, err = verifier.Verify(c.Request.Context(), token)
		}

		switch {
		case err == nil:
			m.RecordAuthDecision("allowed")
			c.Set(PrincipalKey, principal)
			c.Next()

		case auth.IsRejection(err):
			m.RecordAuthDecision("denied")
			audit.Emit(c.Request.Context(), rec, &models.AuditEvent{
				Kind:          models.AuditAuthDenied,
				Origin:        c.GetHeader("Origin"),
				Method:        c.Request.Method,
				Path:          c.Request.URL.Path,
				Reason:        err.Error(),
				CorrelationID: c.GetString(CorrelationIDKey),
			})
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, rejectionMessage(err))

		default:
			m.RecordAuthDecision("error")
			logger.Error("token verification unavailable",
				slog.String("error", err.Error()),
				slog.String("path", c.Request.URL.Path))
			response.Abort(c, http.StatusServiceUnavailable, response.CodeAuthUnavailable,
				"authorization is temporarily unavailable")
		}
	}
}

func rejectionMessage(err error) string {
	if errors.Is(err, auth.ErrMissingToken) {
		return "missing credentials"
	}
	return "invalid credentials"
}
