package middleware

import (
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"github.com/voltmap/chargepoint/internal/request"
)

// DefaultAuthRate limits login and registration attempts per client IP.
// Tight on purpose: these are the endpoints worth brute-forcing.
const DefaultAuthRate = "10-M"

// RedisRateLimiter holds the Redis connection backing the rate limit store
type RedisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter connects to Redis for rate limiting
func NewRedisRateLimiter(redisURL string) (*RedisRateLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return &RedisRateLimiter{client: redis.NewClient(opts)}, nil
}

// Client returns the underlying Redis client
func (l *RedisRateLimiter) Client() *redis.Client {
	return l.client
}

// Close closes the Redis connection
func (l *RedisRateLimiter) Close() error {
	return l.client.Close()
}

// RateLimit returns middleware limiting requests per client IP using the
// ulule limiter over Redis. rate uses the limiter's formatted notation,
// e.g. "10-M" for ten per minute.
func RateLimit(redisClient *redis.Client, rate string) (func(http.Handler) http.Handler, error) {
	if rate == "" {
		rate = DefaultAuthRate
	}

	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate %q: %w", rate, err)
	}

	store, err := redisstore.NewStore(redisClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create limiter store: %w", err)
	}

	instance := limiter.New(store, parsed)
	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}

	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(keyGetter))
	return mw.Handler, nil
}
