package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RateLimiter bounds request rates on the public search surface
type RateLimiter interface {
	// Allow reports whether the key may make another request inside the
	// current window, incrementing its counter.
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimitConfig configures the fixed-window limiter
type RateLimitConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	Requests int
	Window   time.Duration
}

type redisRateLimiter struct {
	client   *redis.Client
	logger   *logrus.Logger
	requests int
	window   time.Duration
}

// NewRateLimiter creates a Redis-backed fixed-window rate limiter, or a noop
// limiter when disabled.
func NewRateLimiter(config RateLimitConfig, logger *logrus.Logger) (RateLimiter, error) {
	if !config.Enabled {
		logger.Info("Rate limiting disabled")
		return &noopRateLimiter{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"requests": config.Requests,
		"window":   config.Window,
	}).Info("Rate limiting initialized")

	return &redisRateLimiter{
		client:   client,
		logger:   logger,
		requests: config.Requests,
		window:   config.Window,
	}, nil
}

// Allow increments the counter for key and checks it against the window limit
func (l *redisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	counterKey := fmt.Sprintf("ratelimit:%s", key)

	pipeline := l.client.Pipeline()
	incrCmd := pipeline.Incr(ctx, counterKey)
	pipeline.Expire(ctx, counterKey, l.window)

	if _, err := pipeline.Exec(ctx); err != nil {
		l.logger.WithError(err).Error("Failed to increment rate limit counter")
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	count := incrCmd.Val()
	if count > int64(l.requests) {
		l.logger.WithFields(logrus.Fields{
			"key":   key,
			"count": count,
			"limit": l.requests,
		}).Warn("Rate limit exceeded")
		return false, nil
	}

	return true, nil
}

// noopRateLimiter is used when rate limiting is disabled
type noopRateLimiter struct{}

func (n *noopRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}
