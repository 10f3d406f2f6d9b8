package genai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/verdantlabs/googleai/content"
	"github.com/verdantlabs/googleai/internal/utils"
	"github.com/verdantlabs/googleai/observability"
)

const (
	// DefaultBaseURL is the REST endpoint of the Generative Language API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultModel is used when a request names no model.
	DefaultModel = "gemini-2.0-flash"
)

// Client is a REST client for the Generative Language API. Construct it with
// [New]; the zero value is not usable.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	observer    observability.Provider
	middlewares []Middleware
	send        SendFunc
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the API key sent in the x-goog-api-key header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithBaseURL overrides the API endpoint, mainly for tests and proxies.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver sets the observability provider. Without one the client emits
// nothing.
func WithObserver(p observability.Provider) Option {
	return func(c *Client) { c.observer = p }
}

// WithMiddlewares installs the middleware chain around generateContent
// calls. The first middleware is the outermost wrapper.
func WithMiddlewares(mw ...Middleware) Option {
	return func(c *Client) { c.middlewares = append(c.middlewares, mw...) }
}

// New creates a Client. An API key is required; everything else has
// defaults.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("genai: an API key is required")
	}
	c.send = buildSendChain(c.doGenerate, c.middlewares)
	return c, nil
}

// GenerateContent calls models/{model}:generateContent through the
// middleware chain. An empty model falls back to [DefaultModel].
func (c *Client) GenerateContent(ctx context.Context, model string, req *GenerateContentRequest) (*GenerateContentResponse, error) {
	if model == "" {
		model = DefaultModel
	}
	ctx, span := c.startSpan(ctx, "genai.generate_content", model)
	start := time.Now()
	res, err := c.send(ctx, &Request{Model: model, Body: req})
	c.finish(ctx, span, model, "generateContent", res, err, time.Since(start))
	return res, err
}

// doGenerate is the base of the middleware chain: a direct endpoint call.
func (c *Client) doGenerate(ctx context.Context, req *Request) (*GenerateContentResponse, error) {
	res, err := post[GenerateContentResponse](ctx, c, req.Model, "generateContent", req.Body)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CountTokens calls models/{model}:countTokens. Token counting bypasses the
// middleware chain; it is a metadata call, not a generation.
func (c *Client) CountTokens(ctx context.Context, model string, contents ...content.Content) (*CountTokensResponse, error) {
	if model == "" {
		model = DefaultModel
	}
	ctx, span := c.startSpan(ctx, "genai.count_tokens", model)
	res, err := post[CountTokensResponse](ctx, c, model, "countTokens", &CountTokensRequest{Contents: contents})
	c.finish(ctx, span, model, "countTokens", nil, err, 0)
	return res, err
}

// EmbedContent calls models/{model}:embedContent.
func (c *Client) EmbedContent(ctx context.Context, model string, req *EmbedContentRequest) (*EmbedContentResponse, error) {
	if model == "" {
		return nil, fmt.Errorf("genai: embedding requires an explicit model")
	}
	ctx, span := c.startSpan(ctx, "genai.embed_content", model)
	res, err := post[EmbedContentResponse](ctx, c, model, "embedContent", req)
	c.finish(ctx, span, model, "embedContent", nil, err, 0)
	return res, err
}

func post[Out any](ctx context.Context, c *Client, model, method string, body any) (*Out, error) {
	url := fmt.Sprintf("%s/models/%s:%s", c.baseURL, model, method)
	out, err := utils.PostJSON[Out](ctx, c.httpClient, url, body,
		utils.HeaderOption{Key: "x-goog-api-key", Value: c.apiKey})
	if err != nil {
		return nil, wrapTransportError(err)
	}
	return out, nil
}

func (c *Client) startSpan(ctx context.Context, name, model string) (context.Context, observability.Span) {
	if c.observer == nil {
		return ctx, nil
	}
	ctx = observability.ContextWithObserver(ctx, c.observer)
	ctx, span := c.observer.StartSpan(ctx, name,
		observability.String(observability.AttrModel, model),
		observability.String(observability.AttrEndpoint, c.baseURL),
	)
	return ctx, span
}

func (c *Client) finish(ctx context.Context, span observability.Span, model, operation string, res *GenerateContentResponse, err error, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	attrs := []observability.Attribute{
		observability.String(observability.AttrModel, model),
		observability.String(observability.AttrOperation, operation),
	}
	c.observer.Counter(observability.MetricRequests).Add(ctx, 1, attrs...)
	if elapsed > 0 {
		c.observer.Histogram(observability.MetricRequestDuration).Record(ctx, float64(elapsed.Milliseconds()), attrs...)
	}
	if err != nil {
		c.observer.Counter(observability.MetricErrors).Add(ctx, 1, attrs...)
		if span != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, err.Error())
		}
	} else if res != nil {
		if span != nil {
			span.SetAttributes(
				observability.String(observability.AttrResponseID, res.ResponseID),
				observability.Int(observability.AttrCandidates, len(res.Candidates)),
			)
		}
		if res.UsageMetadata != nil {
			c.observer.Counter(observability.MetricTokensTotal).Add(ctx, int64(res.UsageMetadata.TotalTokenCount), attrs...)
			if span != nil {
				span.SetAttributes(
					observability.Int(observability.AttrTokensPrompt, res.UsageMetadata.PromptTokenCount),
					observability.Int(observability.AttrTokensCandidates, res.UsageMetadata.CandidatesTokenCount),
					observability.Int(observability.AttrTokensTotal, res.UsageMetadata.TotalTokenCount),
				)
			}
		}
	}
	if span != nil {
		span.End()
	}
}
