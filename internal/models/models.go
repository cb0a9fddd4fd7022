package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit event kinds.
const (
	AuditOriginRejected = "origin_rejected"
	AuditAuthDenied     = "auth_denied"
	AuditAuthAllowed    = "auth_allowed"
)

// AuditEvent records a security-relevant decision made at the edge.
// DB columns: id, kind, origin, principal, method, path, reason,
//
//	correlation_id, created_at
type AuditEvent struct {
	ID            uuid.UUID `json:"id"`
	Kind          string    `json:"kind"`
	Origin        string    `json:"origin,omitempty"`
	Principal     string    `json:"principal,omitempty"`
	Method        string    `json:"method"`
	Path          string    `json:"path"`
	Reason        string    `json:"reason,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CORSPolicyView is the effective CORS policy as reported by the API.
type CORSPolicyView struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowMethods     []string `json:"allow_methods"`
	AllowHeaders     []string `json:"allow_headers"`
	ExposeHeaders    []string `json:"expose_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAgeSeconds    int64    `json:"max_age_seconds"`
}
