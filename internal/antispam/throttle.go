// Package antispam limits how often a single client may submit the site forms.
package antispam

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/didax-edu/site-api/pkg/logging"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var throttleTracer = otel.Tracer("site.internal.antispam")

// ThrottleConfig bounds submissions per key per window.
type ThrottleConfig struct {
	Limit  int
	Window time.Duration
	Prefix string
}

// DefaultThrottleConfig allows 10 submissions per client every 10 minutes.
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		Limit:  10,
		Window: 10 * time.Minute,
		Prefix: "leads:throttle",
	}
}

// Throttle is a fixed-window counter kept in Redis, so every API instance
// shares the same view of a client.
type Throttle struct {
	redis  *redis.Client
	config ThrottleConfig
	logger *logging.Logger
}

// NewThrottle creates a throttle. A nil client disables it.
func NewThrottle(client *redis.Client, config ThrottleConfig, logger *logging.Logger) *Throttle {
	if logger == nil {
		logger = logging.Default()
	}
	defaults := DefaultThrottleConfig()
	if config.Limit <= 0 {
		config.Limit = defaults.Limit
	}
	if config.Window <= 0 {
		config.Window = defaults.Window
	}
	if strings.TrimSpace(config.Prefix) == "" {
		config.Prefix = defaults.Prefix
	}
	return &Throttle{redis: client, config: config, logger: logger.With("component", "antispam")}
}

// Allow counts one submission for key and reports whether it is within the
// limit. Redis failures allow the submission.
func (t *Throttle) Allow(ctx context.Context, key string) (bool, error) {
	if t == nil || t.redis == nil || key == "" {
		return true, nil
	}
	ctx, span := throttleTracer.Start(ctx, "antispam.throttle")
	defer span.End()

	redisKey := fmt.Sprintf("%s:%s", t.config.Prefix, key)
	count, err := t.incrementWindow(ctx, redisKey)
	if err != nil {
		t.logger.Error("throttle check failed", "error", err, "key", redisKey)
		span.SetAttributes(attribute.Bool("throttle.unavailable", true))
		return true, nil
	}

	allowed := count <= int64(t.config.Limit)
	span.SetAttributes(
		attribute.Int64("throttle.count", count),
		attribute.Bool("throttle.exceeded", !allowed),
	)
	if !allowed {
		t.logger.Warn("submission throttled",
			"key", redisKey,
			"count", count,
			"limit", t.config.Limit,
		)
	}
	return allowed, nil
}

func (t *Throttle) incrementWindow(ctx context.Context, key string) (int64, error) {
	count, err := t.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// Expiry is set only when the window opens.
	if count == 1 {
		if err := t.redis.Expire(ctx, key, t.config.Window).Err(); err != nil {
			return 0, err
		}
	}
	return count, nil
}
