// Package middleware provides composable wrappers for the genai send chain:
// retry with exponential backoff, per-request timeouts, request logging and
// token-bucket rate limiting.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/verdantlabs/googleai/genai"
	"github.com/verdantlabs/googleai/observability"
)

// ErrRetryExhausted marks errors returned after the final retry attempt
// failed. Unwrap to reach the last service error.
var ErrRetryExhausted = errors.New("retry attempts exhausted")

// RetryConfig tunes the retry middleware. Zero values take the defaults
// documented per field.
type RetryConfig struct {
	// MaxRetries is the number of attempts after the first failure.
	// Default: 3.
	MaxRetries int

	// InitialBackoff is the wait before the first retry. Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed backoff. Default: 30s.
	MaxBackoff time.Duration

	// BackoffFactor is the exponential growth multiplier:
	// backoff = min(InitialBackoff * BackoffFactor^attempt, MaxBackoff).
	// Default: 2.0.
	BackoffFactor float64

	// JitterFraction adds random noise in [0, JitterFraction*backoff] to
	// avoid synchronized retries. Default: 0.1.
	JitterFraction float64

	// RetryableFunc reports whether an error should trigger a retry. The
	// default retries temporary service errors (408, 429, 5xx) and nothing
	// else.
	RetryableFunc func(error) bool
}

func defaultRetryable(err error) bool {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return false
}

func (c *RetryConfig) applyDefaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = time.Second
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = 30 * time.Second
	}
	if c.BackoffFactor == 0 {
		c.BackoffFactor = 2.0
	}
	if c.JitterFraction == 0 {
		c.JitterFraction = 0.1
	}
	if c.RetryableFunc == nil {
		c.RetryableFunc = defaultRetryable
	}
}

// backoff returns the wait for the given 0-indexed attempt.
func (c *RetryConfig) backoff(attempt int) time.Duration {
	base := float64(c.InitialBackoff) * math.Pow(c.BackoffFactor, float64(attempt))
	if base > float64(c.MaxBackoff) {
		base = float64(c.MaxBackoff)
	}
	jitter := base * c.JitterFraction * rand.Float64() //nolint:gosec // non-cryptographic jitter
	return time.Duration(base + jitter)
}

// Retry returns a middleware that retries failed sends with exponential
// backoff and jitter. Context cancellation is respected between attempts. On
// exhaustion the returned error wraps both [ErrRetryExhausted] and the last
// service error.
func Retry(config RetryConfig) genai.Middleware {
	config.applyDefaults()

	return func(next genai.SendFunc) genai.SendFunc {
		return func(ctx context.Context, req *genai.Request) (*genai.GenerateContentResponse, error) {
			var lastErr error
			for attempt := 0; attempt <= config.MaxRetries; attempt++ {
				if attempt > 0 {
					if span := observability.SpanFromContext(ctx); span != nil {
						span.AddEvent(observability.EventRetry,
							observability.Int("attempt", attempt),
							observability.Error(lastErr),
						)
					}
					select {
					case <-ctx.Done():
						return nil, ctx.Err()
					case <-time.After(config.backoff(attempt - 1)):
					}
				}

				res, err := next(ctx, req)
				if err == nil {
					return res, nil
				}
				lastErr = err
				if !config.RetryableFunc(err) {
					return nil, err
				}
			}
			return nil, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, config.MaxRetries, lastErr)
		}
	}
}
