package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"taskhub/internal/cache"
	apperrors "taskhub/internal/errors"
)

const (
	throttleWindow    = time.Minute
	throttleKeyPrefix = "throttle:"
	throttleTimeout   = 200 * time.Millisecond
)

// Counter is the cache capability the fixed-window store needs.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RedisStore implements echo's RateLimiterStore as a fixed window of
// limit hits per identifier. Redis errors let the request through.
type RedisStore struct {
	counter Counter
	limit   int64
	window  time.Duration
	now     func() time.Time
}

// NewRedisStore builds a fixed-window store allowing limit hits per minute.
func NewRedisStore(counter Counter, limit int) *RedisStore {
	return &RedisStore{
		counter: counter,
		limit:   int64(limit),
		window:  throttleWindow,
		now:     time.Now,
	}
}

// Allow implements middleware.RateLimiterStore.
func (s *RedisStore) Allow(identifier string) (bool, error) {
	bucket := s.now().Unix() / int64(s.window/time.Second)
	key := fmt.Sprintf("%s%s:%d", throttleKeyPrefix, identifier, bucket)

	ctx, cancel := context.WithTimeout(context.Background(), throttleTimeout)
	defer cancel()

	n, err := s.counter.Incr(ctx, key, s.window)
	if err != nil {
		slog.Warn("throttle store unavailable, allowing request", "error", err)
		return true, nil
	}
	return n <= s.limit, nil
}

// Throttle limits each identity to perMinute requests. With a cache client
// the window is shared through Redis, otherwise it is kept in memory.
func Throttle(client *cache.Client, perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		perMinute = 60
	}

	var store echomw.RateLimiterStore
	if client != nil {
		store = NewRedisStore(client, perMinute)
	} else {
		store = echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(perMinute) / throttleWindow.Seconds()),
			Burst:     perMinute,
			ExpiresIn: 3 * throttleWindow,
		})
	}

	return ThrottleWithStore(store)
}

// ThrottleWithStore wires a RateLimiterStore into echo's limiter with the
// identity extractor and the 429 body used across the API.
func ThrottleWithStore(store echomw.RateLimiterStore) echo.MiddlewareFunc {
	tooMany := func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTooManyRequests, apperrors.ErrorResponse{Message: "Too Many Attempts."})
	}

	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store:               store,
		IdentifierExtractor: throttleIdentifier,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return tooMany(c)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return tooMany(c)
		},
	})
}

func throttleIdentifier(c echo.Context) (string, error) {
	if caller, ok := CallerFrom(c); ok {
		return fmt.Sprintf("user:%d", caller.UserID), nil
	}
	return "ip:" + c.RealIP(), nil
}
