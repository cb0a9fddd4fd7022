package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workforce-ai/corsgate/internal/api/response"
	"github.com/workforce-ai/corsgate/internal/config"
	"github.com/workforce-ai/corsgate/internal/metrics"
	"github.com/workforce-ai/corsgate/internal/models"
	"github.com/workforce-ai/corsgate/internal/origins"
	"github.com/workforce-ai/corsgate/internal/tokensource"
	"github.com/workforce-ai/corsgate/pkg/auth"
)

const (
	allowedOrigin = "https://app.example.com"
	sharedToken   = "router-test-token"
	jwtSecret     = "router-test-secret"
)

type noEvents struct{}

func (noEvents) ListRecent(context.Context, string, int) ([]models.AuditEvent, error) {
	return []models.AuditEvent{}, nil
}

func testConfig(env string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Env: env, LogLevel: "info"},
		CORS: config.CORSConfig{
			AllowedOrigins:   []string{allowedOrigin},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           time.Hour,
		},
		Auth: config.AuthConfig{Mode: config.AuthModeStatic, Header: "Authorization", Token: sharedToken},
		JWT:  config.JWTConfig{Secret: jwtSecret, Issuer: "corsgate", ExpiryHours: 1},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, withAudit bool) http.Handler {
	t.Helper()
	policy, err := origins.Parse(cfg.CORS.AllowedOrigins)
	require.NoError(t, err)

	d := Deps{
		Config:   cfg,
		Policy:   policy,
		Verifier: auth.NewStaticVerifier("cloudfront", tokensource.Static(sharedToken)),
		Metrics:  metrics.NewCollector(),
	}
	if withAudit {
		d.Events = noEvents{}
	}
	return NewRouter(d)
}

func serve(h http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicRoutes(t *testing.T) {
	r := newTestRouter(t, testConfig("production"), false)

	assert.Equal(t, 200, serve(r, "GET", "/health", nil).Code)

	w := serve(r, "GET", "/metrics", nil)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "corsgate_http_requests_total")
}

func TestRouter_PreflightNeedsNoCredentials(t *testing.T) {
	r := newTestRouter(t, testConfig("production"), false)

	w := serve(r, "OPTIONS", "/api/v1/authorize", map[string]string{
		"Origin":                         allowedOrigin,
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "authorization,content-type",
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, allowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_AuthenticatedRoutes(t *testing.T) {
	r := newTestRouter(t, testConfig("production"), false)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "GET", "/api/v1/whoami", nil).Code)

	bearer := map[string]string{"Authorization": "Bearer " + sharedToken, "Origin": allowedOrigin}
	w := serve(r, "GET", "/api/v1/whoami", bearer)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, allowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, 200, serve(r, "GET", "/api/v1/cors/policy", bearer).Code)
}

func TestRouter_DisallowedOriginNeverReachesAuth(t *testing.T) {
	r := newTestRouter(t, testConfig("production"), false)

	w := serve(r, "GET", "/api/v1/whoami", map[string]string{
		"Origin":        "https://evil.example.com",
		"Authorization": "Bearer " + sharedToken,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_AuditRoute(t *testing.T) {
	bearer := map[string]string{"Authorization": "Bearer " + sharedToken}

	without := newTestRouter(t, testConfig("production"), false)
	assert.Equal(t, http.StatusNotFound, serve(without, "GET", "/api/v1/audit/events", bearer).Code)

	with := newTestRouter(t, testConfig("production"), true)
	// The shared token carries the service role, not admin.
	assert.Equal(t, http.StatusForbidden, serve(with, "GET", "/api/v1/audit/events", bearer).Code)
}

func TestRouter_DevTokenOnlyInDevelopment(t *testing.T) {
	prod := newTestRouter(t, testConfig("production"), false)
	assert.Equal(t, http.StatusNotFound, serve(prod, "POST", "/dev/token", nil).Code)

	dev := newTestRouter(t, testConfig("development"), false)
	assert.Equal(t, http.StatusBadRequest, serve(dev, "POST", "/dev/token", nil).Code)
}

func TestRouter_UnknownRouteUsesEnvelope(t *testing.T) {
	r := newTestRouter(t, testConfig("production"), false)

	w := serve(r, "GET", "/nope", map[string]string{"Origin": allowedOrigin})

	require.Equal(t, http.StatusNotFound, w.Code)
	var body response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, response.CodeNotFound, body.Error.Code)
	assert.Equal(t, allowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
}
