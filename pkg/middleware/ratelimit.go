package middleware

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/iota-uz/org-console/pkg/httpapi"
)

type RateLimitConfig struct {
	RequestsPerPeriod int
	Period            time.Duration
	Store             limiter.Store
}

func NewMemoryStore() limiter.Store {
	return memory.NewStore()
}

func NewRedisStore(addr string) (limiter.Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   "console_rate_limit",
		MaxRetry: 3,
	})
	if err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "rate limit redis store")
	}
	return store, nil
}

// RateLimit applies a global limit keyed by client IP. A non-positive
// RequestsPerPeriod disables it.
func RateLimit(cfg RateLimitConfig) mux.MiddlewareFunc {
	if cfg.RequestsPerPeriod <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	if cfg.Period <= 0 {
		cfg.Period = time.Second
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	rate := limiter.Rate{Period: cfg.Period, Limit: int64(cfg.RequestsPerPeriod)}
	mw := stdlib.NewMiddleware(
		limiter.New(cfg.Store, rate),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			_ = httpapi.WriteError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
		}),
	)
	return mw.Handler
}
