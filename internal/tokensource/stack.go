package tokensource

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// StackOptions configures NewStack.
type StackOptions struct {
	SSM            ParameterGetter
	Redis          *redis.Client
	RedisKeyPrefix string
	CacheTTL       time.Duration
	MaxRetries     int
	RetryBaseWait  time.Duration
}

// NewStack builds the source for one expected token. With no parameter
// name the literal value is used as is; otherwise the parameter is read
// through retries, the optional Redis tier and an in-memory cache. A
// non-positive CacheTTL disables both caches.
func NewStack(literal, parameter string, opts StackOptions) Source {
	if parameter == "" || opts.SSM == nil {
		return Static(literal)
	}

	var src Source = NewRetrying(NewSSM(opts.SSM, parameter), opts.MaxRetries, opts.RetryBaseWait)
	// A Redis SET with a zero TTL never expires, so the shared tier is only
	// used when caching is enabled.
	if opts.Redis != nil && opts.CacheTTL > 0 {
		src = NewRedisCache(opts.Redis, src, opts.RedisKeyPrefix+parameter, opts.CacheTTL)
	}
	if opts.CacheTTL > 0 {
		src = NewCached(src, opts.CacheTTL)
	}
	return src
}
