package middleware

import (
	"context"
	"time"

	"github.com/verdantlabs/googleai/genai"
)

// Timeout returns a middleware that enforces a per-request deadline. A
// caller-supplied context with a shorter deadline wins, per normal context
// semantics. Place Timeout inside Retry so each attempt gets a fresh
// deadline.
func Timeout(timeout time.Duration) genai.Middleware {
	return func(next genai.SendFunc) genai.SendFunc {
		return func(ctx context.Context, req *genai.Request) (*genai.GenerateContentResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, req)
		}
	}
}
