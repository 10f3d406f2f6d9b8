package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verdantlabs/googleai/genai"
)

func okResponse() *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{}
}

func fastRetry(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	send := Retry(fastRetry(3))(func(ctx context.Context, req *genai.Request) (*genai.GenerateContentResponse, error) {
		calls++
		if calls < 3 {
			return nil, &genai.APIError{StatusCode: 503}
		}
		return okResponse(), nil
	})

	if _, err := send(context.Background(), &genai.Request{}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	calls := 0
	send := Retry(fastRetry(3))(func(ctx context.Context, req *genai.Request) (*genai.GenerateContentResponse, error) {
		calls++
		return nil, &genai.APIError{StatusCode: 400}
	})

	if _, err := send(context.Background(), &genai.Request{}); err == nil {
		t.Fatal("Expected an error")
	}
	if calls != 1 {
		t.Errorf("Expected 1 call for a non-retryable error, got %d", calls)
	}
}

func TestRetryExhaustionWrapsLastError(t *testing.T) {
	send := Retry(fastRetry(2))(func(ctx context.Context, req *genai.Request) (*genai.GenerateContentResponse, error) {
		return nil, &genai.APIError{StatusCode: 429}
	})

	_, err := send(context.Background(), &genai.Request{})
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("Expected ErrRetryExhausted, got %v", err)
	}
	var apiErr *genai.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 429 {
		t.Errorf("Expected the last service error to be unwrappable, got %v", err)
	}
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	send := Retry(RetryConfig{MaxRetries: 5, InitialBackoff: time.Hour})(
		func(ctx context.Context, req *genai.Request) (*genai.GenerateContentResponse, error) {
			cancel()
			return nil, &genai.APIError{StatusCode: 503}
		})

	_, err := send(ctx, &genai.Request{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestBackoffGrowsAndIsCapped(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     40 * time.Millisecond,
		BackoffFactor:  2,
		JitterFraction: 0.0001,
	}
	cfg.applyDefaults()

	b0 := cfg.backoff(0)
	b2 := cfg.backoff(2)
	b5 := cfg.backoff(5)
	if b0 < 10*time.Millisecond || b0 > 11*time.Millisecond {
		t.Errorf("Unexpected first backoff %v", b0)
	}
	if b2 < b0 {
		t.Errorf("Expected backoff growth, got %v then %v", b0, b2)
	}
	if b5 > 41*time.Millisecond {
		t.Errorf("Expected the cap to hold, got %v", b5)
	}
}

func TestTimeoutCancelsSlowSends(t *testing.T) {
	send := Timeout(10 * time.Millisecond)(func(ctx context.Context, req *genai.Request) (*genai.GenerateContentResponse, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return okResponse(), nil
		}
	})

	_, err := send(context.Background(), &genai.Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
}

func TestTimeoutLeavesFastSendsAlone(t *testing.T) {
	send := Timeout(time.Second)(func(ctx context.Context, req *genai.Request) (*genai.GenerateContentResponse, error) {
		return okResponse(), nil
	})
	if _, err := send(context.Background(), &genai.Request{}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
