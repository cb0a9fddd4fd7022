package api

import (
	"github.com/gin-gonic/gin"
	"github.com/workforce-ai/corsgate/internal/api/handlers"
	"github.com/workforce-ai/corsgate/internal/api/middleware"
	"github.com/workforce-ai/corsgate/internal/api/response"
	"github.com/workforce-ai/corsgate/internal/audit"
	"github.com/workforce-ai/corsgate/internal/config"
	"github.com/workforce-ai/corsgate/internal/metrics"
	"github.com/workforce-ai/corsgate/internal/origins"
	"github.com/workforce-ai/corsgate/pkg/auth"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Policy   *origins.Policy
	Verifier auth.Verifier
	Metrics  *metrics.Collector

	// Recorder receives audit events; audit.Nop when auditing is off.
	Recorder audit.Recorder
	// Events is nil when auditing is off, which leaves the audit route
	// unmounted.
	Events handlers.AuditLister
	// Checks are reported by /health.
	Checks map[string]handlers.Pinger
}

// NewRouter creates and configures the Gin router with all routes and middleware.
func NewRouter(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	rec := d.Recorder
	if rec == nil {
		rec = audit.Nop{}
	}

	// Global middleware. CORS runs before any route-level auth so that
	// preflights are answered without credentials and error responses
	// stay readable by allowed browsers.
	r.Use(gin.Recovery())
	r.Use(middleware.CorrelationMiddleware())
	r.Use(middleware.StructuredLogging())
	r.Use(middleware.MetricsMiddleware(d.Metrics))
	r.Use(middleware.CORSMiddleware(d.Config.CORS, d.Policy, rec, d.Metrics))

	// Health check and metrics (no auth required)
	r.GET("/health", handlers.NewHealthHandler(middleware.ServiceName, d.Checks).HandleHealth)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	policyHandler := handlers.NewPolicyHandler(d.Config.CORS, d.Policy)
	authorizeHandler := handlers.NewAuthorizeHandler(d.Verifier, rec, d.Metrics)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(d.Config.Auth.Header, d.Verifier, rec, d.Metrics))
	{
		v1.GET("/whoami", handlers.HandleWhoAmI)
		v1.GET("/cors/policy", policyHandler.HandleGetPolicy)
		v1.POST("/authorize", authorizeHandler.HandleAuthorize)

		if d.Events != nil {
			v1.GET("/audit/events",
				middleware.RequireRole("admin"),
				handlers.NewAuditHandler(d.Events).HandleListEvents,
			)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route "+c.Request.URL.Path+" not found")
	})

	// Token generation endpoint (dev only, generates test JWTs)
	if d.Config.IsDevelopment() {
		r.POST("/dev/token", handlers.DevTokenHandler(d.Config.JWT))
	}

	return r
}
