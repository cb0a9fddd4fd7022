package middleware

import (
	"log/slog"
	"net/http"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/workforce-ai/corsgate/internal/api/response"
	"github.com/workforce-ai/corsgate/internal/audit"
	"github.com/workforce-ai/corsgate/internal/config"
	"github.com/workforce-ai/corsgate/internal/metrics"
	"github.com/workforce-ai/corsgate/internal/models"
	"github.com/workforce-ai/corsgate/internal/origins"
)

// NewCORSConfig translates the service's CORS settings into the
// gin-contrib/cors configuration.
func NewCORSConfig(cfg config.CORSConfig, policy *origins.Policy) gincors.Config {
	c := gincors.Config{
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}
	if policy.AllowsAll() {
		c.AllowAllOrigins = true
	} else {
		c.AllowOriginFunc = policy.Allows
	}
	return c
}

// CORSMiddleware answers preflights and decorates cross-origin responses
// for allowed origins. Cross-origin requests from any other origin are
// refused with 403 before reaching authentication or handlers.
func CORSMiddleware(cfg config.CORSConfig, policy *origins.Policy, rec audit.Recorder, m *metrics.Collector) gin.HandlerFunc {
	apply := gincors.New(NewCORSConfig(cfg, policy))
	logger := slog.Default().With(slog.String("component", "cors"))

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" || isSameOrigin(c.Request, origin) {
			c.Next()
			return
		}

		if !policy.Allows(origin) {
			m.RecordCORSRejection()
			logger.Warn("origin not allowed",
				slog.String("origin", origin),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path))
			audit.Emit(c.Request.Context(), rec, &models.AuditEvent{
				Kind:          models.AuditOriginRejected,
				Origin:        origin,
				Method:        c.Request.Method,
				Path:          c.Request.URL.Path,
				Reason:        "origin not in allow-list",
				CorrelationID: c.GetString(CorrelationIDKey),
			})
			response.Abort(c, http.StatusForbidden, response.CodeOriginNotAllowed,
				"origin "+origin+" is not allowed")
			return
		}

		if c.Request.Method == http.MethodOptions {
			m.RecordPreflight()
		}
		apply(c)
	}
}

// isSameOrigin mirrors the check gin-contrib/cors uses to let same-origin
// fetches through.
func isSameOrigin(r *http.Request, origin string) bool {
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}
