package tokensource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// Retrying retries transient failures of the wrapped source with
// exponential backoff and jitter. ErrNotFound is returned immediately.
type Retrying struct {
	next          Source
	maxRetries    int
	retryBaseWait time.Duration
	logger        *slog.Logger
}

// NewRetrying wraps next. maxRetries counts retries after the first attempt.
func NewRetrying(next Source, maxRetries int, retryBaseWait time.Duration) *Retrying {
	return &Retrying{
		next:          next,
		maxRetries:    maxRetries,
		retryBaseWait: retryBaseWait,
		logger:        slog.Default().With(slog.String("component", "tokensource")),
	}
}

func (r *Retrying) Token(ctx context.Context) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		tok, err := r.next.Token(ctx)
		if err == nil {
			return tok, nil
		}
		if errors.Is(err, ErrNotFound) {
			return "", err
		}

		lastErr = err
		r.logger.Warn("token fetch failed",
			slog.String("error", err.Error()),
			slog.Int("attempt", attempt+1))

		if attempt >= r.maxRetries {
			break
		}

		backoff := r.calculateBackoff(attempt)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("token fetch failed after %d attempts: %w", r.maxRetries+1, lastErr)
}

// calculateBackoff returns min(base * 2^attempt + jitter, 10s), with jitter
// up to a tenth of the exponential term.
func (r *Retrying) calculateBackoff(attempt int) time.Duration {
	exponentialMs := r.retryBaseWait.Milliseconds() * int64(math.Pow(2, float64(attempt)))
	jitterMs := rand.Int63n(exponentialMs/10 + 1)

	totalMs := exponentialMs + jitterMs
	if maxMs := int64(10 * 1000); totalMs > maxMs {
		totalMs = maxMs
	}
	return time.Duration(totalMs) * time.Millisecond
}
