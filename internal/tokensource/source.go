// Package tokensource supplies the expected bearer token that callers must
// present. Sources compose: a parameter-store lookup is usually wrapped in
// retries and then in one or two cache tiers.
package tokensource

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound means the source has no token configured. Callers treat it
// as "this source accepts nothing" rather than as an outage.
var ErrNotFound = errors.New("token not found")

// Source returns the currently expected token.
type Source interface {
	Token(ctx context.Context) (string, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context) (string, error)

func (f SourceFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Static always returns the same token. An empty value reports ErrNotFound.
type Static string

func (s Static) Token(_ context.Context) (string, error) {
	v := strings.TrimSpace(string(s))
	if v == "" {
		return "", ErrNotFound
	}
	return v, nil
}
