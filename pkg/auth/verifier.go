package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/workforce-ai/corsgate/internal/tokensource"
)

var (
	// ErrMissingToken is returned when the request carries no credential.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken is returned when the credential does not verify.
	ErrInvalidToken = errors.New("invalid token")
)

// Verification methods recorded on a Principal.
const (
	MethodStatic = "static"
	MethodJWT    = "jwt"
)

// ServiceRole is the role granted to holders of the shared static token.
const ServiceRole = "service"

// Principal is the identity established by a successful verification.
type Principal struct {
	ID     string `json:"id"`
	Role   string `json:"role"`
	Method string `json:"method"`
}

// Verifier checks a presented token. Implementations return
// ErrMissingToken or ErrInvalidToken (possibly wrapped) for rejected
// credentials; any other error means the check itself could not run.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// ExtractToken pulls the credential out of a header value. The
// Authorization header carries "Bearer <token>" (scheme matched
// case-insensitively); any other header carries the raw token.
func ExtractToken(headerName, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrMissingToken
	}
	if !strings.EqualFold(headerName, "Authorization") {
		return value, nil
	}

	scheme, token, ok := strings.Cut(value, " ")
	if !ok && strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("%w: expected Bearer scheme", ErrInvalidToken)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// HeaderValue looks up name in a header map with arbitrary key casing, as
// delivered by API Gateway authorizer events.
func HeaderValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	canonical := http.CanonicalHeaderKey(name)
	for k, v := range headers {
		if http.CanonicalHeaderKey(k) == canonical {
			return v
		}
	}
	return ""
}

// StaticVerifier accepts tokens equal to the value of any of its sources.
// Listing the previous token as a second source keeps clients working
// while a rotation propagates.
type StaticVerifier struct {
	sources     []tokensource.Source
	principalID string
}

// NewStaticVerifier creates a verifier over the given sources. principalID
// names the caller in logs and authorizer context.
func NewStaticVerifier(principalID string, sources ...tokensource.Source) *StaticVerifier {
	return &StaticVerifier{sources: sources, principalID: principalID}
}

func (v *StaticVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	configured := 0
	for _, src := range v.sources {
		expected, err := src.Token(ctx)
		if errors.Is(err, tokensource.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load expected token: %w", err)
		}
		configured++
		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1 {
			return &Principal{ID: v.principalID, Role: ServiceRole, Method: MethodStatic}, nil
		}
	}
	if configured == 0 {
		return nil, fmt.Errorf("load expected token: %w", tokensource.ErrNotFound)
	}
	return nil, ErrInvalidToken
}

// JWTVerifier accepts HS256 tokens minted by GenerateToken.
type JWTVerifier struct {
	secret string
	issuer string
}

// NewJWTVerifier creates a verifier for the given secret and issuer.
func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: secret, issuer: issuer}
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	claims, err := ValidateToken(token, v.secret, v.issuer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &Principal{ID: claims.Subject, Role: claims.Role, Method: MethodJWT}, nil
}

// IsRejection reports whether err means the caller's credential was
// refused, as opposed to the check failing.
func IsRejection(err error) bool {
	return errors.Is(err, ErrMissingToken) || errors.Is(err, ErrInvalidToken)
}
