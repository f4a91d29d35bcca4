package ratelimit

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"codeberg.org/kartuli/server/internal/errors"
	"codeberg.org/kartuli/server/internal/logger"
)

// builds the limiter store: redis when a client is given, in-process otherwise
func NewStore(cfg *Config, client *redis.Client) (limiter.Store, error) {
	opts := limiter.StoreOptions{Prefix: cfg.Prefix, CleanUpInterval: cfg.Window}

	if client == nil {
		return memory.NewStoreWithOptions(opts), nil
	}

	store, err := sredis.NewStoreWithOptions(client, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}

	return store, nil
}

// returns a per-IP request limiting middleware; a disabled config passes everything through
func Middleware(cfg *Config, store limiter.Store) gin.HandlerFunc {
	if cfg.Limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	rate := limiter.Rate{Period: cfg.Window, Limit: int64(cfg.Limit)}
	instance := limiter.New(store, rate, limiter.WithTrustForwardHeader(cfg.TrustForwardHeader))

	inner := mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			logger.Warn("rate limit reached", "ip", c.ClientIP(), "path", c.Request.URL.Path)
			errors.TooManyRequests(c, "too many requests, slow down")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// limiter store outages should not take the API down
			logger.WarnErr(err, "rate limiter unavailable")
			c.Next()
		}),
	)

	return func(c *gin.Context) {
		if cfg.isExempt(c.Request.URL.Path) {
			c.Next()
			return
		}

		inner(c)
	}
}
