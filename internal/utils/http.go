package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/verdantlabs/googleai/observability"
)

// HeaderOption is one extra header to set on a request.
type HeaderOption struct {
	Key   string
	Value string
}

// HTTPError is a non-2xx response, with the raw body preserved for callers
// that want the service's error payload.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, Truncate(string(e.Body), 200))
}

// PostJSON sends body as JSON and decodes a 2xx response into Out. Span
// events are emitted when a span rides on the context. A non-2xx status
// returns *HTTPError with the body attached; the caller maps it to a service
// error.
//
// The response body is always closed; close errors are logged and never
// override the primary error.
func PostJSON[Out any](ctx context.Context, client *http.Client, url string, body any, headers ...HeaderOption) (*Out, error) {
	span := observability.SpanFromContext(ctx)

	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if span != nil {
		span.AddEvent(observability.EventRequestPrepared,
			observability.String(observability.AttrHTTPMethod, http.MethodPost),
			observability.String(observability.AttrHTTPURL, url),
			observability.Int(observability.AttrHTTPRequestBodySize, len(payload)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for _, h := range headers {
		req.Header.Set(h.Key, h.Value)
	}

	start := time.Now()
	res, err := httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		if span != nil {
			span.AddEvent(observability.EventRequestError,
				observability.Error(err),
				observability.Duration(observability.AttrHTTPDuration, elapsed),
			)
		}
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "url", url)
		}
	}()

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if span != nil {
		span.AddEvent(observability.EventResponseReceived,
			observability.Int(observability.AttrHTTPStatusCode, res.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(respBody)),
			observability.Duration(observability.AttrHTTPDuration, elapsed),
		)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: res.StatusCode, Body: respBody}
	}

	var out Out
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response (status %d): %w; preview: %s",
			res.StatusCode, err, Truncate(string(respBody), 500))
	}
	return &out, nil
}
