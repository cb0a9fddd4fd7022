package tokensource

import (
	"context"
	"sync"
	"time"
)

// Cached keeps the last fetched token in memory for ttl. Concurrent callers
// that find the entry stale wait on a single refresh.
type Cached struct {
	next Source
	ttl  time.Duration
	now  func() time.Time

	mu        sync.Mutex
	token     string
	fetchedAt time.Time
	valid     bool
}

// NewCached wraps next with an in-memory cache.
func NewCached(next Source, ttl time.Duration) *Cached {
	return &Cached{next: next, ttl: ttl, now: time.Now}
}

func (c *Cached) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.token, nil
	}

	tok, err := c.next.Token(ctx)
	if err != nil {
		// Errors are not cached; the next call tries again.
		return "", err
	}
	c.token = tok
	c.fetchedAt = c.now()
	c.valid = true
	return tok, nil
}

// Invalidate drops the cached token, forcing a refresh on the next call.
func (c *Cached) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.token = ""
	c.mu.Unlock()
}
