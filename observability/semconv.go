package observability

// Attribute names used across the client, kept in one place so spans,
// metrics and logs stay correlatable.

// Generation attributes.
const (
	AttrModel        = "genai.model"
	AttrEndpoint     = "genai.endpoint"
	AttrOperation    = "genai.operation"
	AttrResponseID   = "genai.response.id"
	AttrFinishReason = "genai.finish_reason"
	AttrCandidates   = "genai.candidates"
)

// Token usage attributes.
const (
	AttrTokensPrompt     = "genai.tokens.prompt"     // #nosec G101 -- model tokens, not a credential
	AttrTokensCandidates = "genai.tokens.candidates" // #nosec G101 -- model tokens, not a credential
	AttrTokensTotal      = "genai.tokens.total"      // #nosec G101 -- model tokens, not a credential
)

// HTTP attributes.
const (
	AttrHTTPMethod           = "http.method"
	AttrHTTPURL              = "http.url"
	AttrHTTPStatusCode       = "http.status_code"
	AttrHTTPRequestBodySize  = "http.request.body_size"
	AttrHTTPResponseBodySize = "http.response.body_size"
	AttrHTTPDuration         = "http.request.duration"
)

// Span event names.
const (
	EventRequestStart     = "genai.request.start"
	EventRequestEnd       = "genai.request.end"
	EventRequestPrepared  = "http.request.prepared"
	EventResponseReceived = "http.response.received"
	EventRequestError     = "http.request.error"
	EventDecodeError      = "genai.decode.error"
	EventRetry            = "genai.retry"
)

// Metric names.
const (
	MetricRequests        = "genai.client.requests"
	MetricErrors          = "genai.client.errors"
	MetricRequestDuration = "genai.client.request.duration"
	MetricTokensTotal     = "genai.client.tokens" // #nosec G101 -- model tokens, not a credential
)
