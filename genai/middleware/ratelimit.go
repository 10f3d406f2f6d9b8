package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"

	"github.com/verdantlabs/googleai/genai"
)

// ErrRateLimited is returned when the local limiter rejects a request before
// it reaches the service.
var ErrRateLimited = errors.New("local rate limit exceeded")

// RateLimitOption configures the rate limiter.
type RateLimitOption func(*rateLimitConfig)

type rateLimitConfig struct {
	keyFunc func(*genai.Request) string
}

// WithRateLimitKeyFunc derives the limiter key from the request, enabling
// per-model limits instead of one global bucket.
func WithRateLimitKeyFunc(fn func(*genai.Request) string) RateLimitOption {
	return func(c *rateLimitConfig) { c.keyFunc = fn }
}

// RateLimit returns a middleware that gates sends through a token bucket of
// rate requests per second with the given burst. Rejected requests fail fast
// with [ErrRateLimited] instead of burning the service-side quota.
func RateLimit(rate int, burst int, opts ...RateLimitOption) genai.Middleware {
	cfg := &rateLimitConfig{
		keyFunc: func(*genai.Request) string { return "global" },
	}
	for _, opt := range opts {
		opt(cfg)
	}

	limiter := ratelimit.New(&ratelimit.Config{
		Rate:     rate,
		Burst:    burst,
		Interval: time.Second,
	})

	return func(next genai.SendFunc) genai.SendFunc {
		return func(ctx context.Context, req *genai.Request) (*genai.GenerateContentResponse, error) {
			if !limiter.Allow(ctx, cfg.keyFunc(req)) {
				return nil, ErrRateLimited
			}
			return next(ctx, req)
		}
	}
}

// RateLimitByModel applies a separate bucket per target model.
func RateLimitByModel(rate int, burst int) genai.Middleware {
	return RateLimit(rate, burst, WithRateLimitKeyFunc(func(req *genai.Request) string {
		return req.Model
	}))
}
