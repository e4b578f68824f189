package ratelimit

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"codeberg.org/starterkit/server/internal/cache"
	"codeberg.org/starterkit/server/internal/errors"
)

const (
	keyPrefix     = "ratelimit"
	storeMaxRetry = 3
)

// creates a per-client-IP rate limit middleware backed by redis. rate uses
// the limiter format, e.g. "100-M" for 100 requests per minute.
func New(rdb *redis.Client, rate string) (gin.HandlerFunc, error) {
	store, err := sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix:   keyPrefix,
		MaxRetry: storeMaxRetry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit store: %w", err)
	}

	return NewWithStore(store, rate)
}

// creates the middleware over any limiter store
func NewWithStore(store limiter.Store, rate string) (gin.HandlerFunc, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}

	lim := limiter.New(store, parsed)

	return mgin.NewMiddleware(lim,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			errors.Abort(c, errors.TooManyRequests("rate limit exceeded, try again later"))
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// store failures surface as cache errors
			errors.Abort(c, cache.Wrap("ratelimit", c.ClientIP(), err))
		}),
	), nil
}
