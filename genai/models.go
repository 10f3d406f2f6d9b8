package genai

import (
	json "github.com/goccy/go-json"

	"github.com/verdantlabs/googleai/content"
)

// GenerateContentRequest is the request body of the generateContent
// endpoint. Field names follow the REST API's camelCase wire shape.
type GenerateContentRequest struct {
	Contents          []content.Content  `json:"contents"`
	SystemInstruction *SystemInstruction `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig  `json:"generationConfig,omitempty"`
	SafetySettings    []SafetySetting    `json:"safetySettings,omitempty"`
}

// SystemInstruction steers the model outside the conversation turns.
type SystemInstruction struct {
	Parts []content.Part `json:"parts"`
}

// GenerationConfig holds sampling and output-shape parameters. Pointer
// fields distinguish "unset" from zero.
type GenerationConfig struct {
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"topP,omitempty"`
	TopK             *int            `json:"topK,omitempty"`
	MaxOutputTokens  *int            `json:"maxOutputTokens,omitempty"`
	CandidateCount   *int            `json:"candidateCount,omitempty"`
	StopSequences    []string        `json:"stopSequences,omitempty"`
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

// SafetySetting adjusts one harm category's blocking threshold.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// GenerateContentResponse is the response body of generateContent.
type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *UsageMetadata  `json:"usageMetadata,omitempty"`
	ModelVersion   string          `json:"modelVersion,omitempty"`
	ResponseID     string          `json:"responseId,omitempty"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content       content.Content `json:"content"`
	FinishReason  string          `json:"finishReason,omitempty"`
	Index         int             `json:"index,omitempty"`
	SafetyRatings []SafetyRating  `json:"safetyRatings,omitempty"`
}

// SafetyRating is the model's harm assessment of one category.
type SafetyRating struct {
	Category    string `json:"category"`
	Probability string `json:"probability"`
	Blocked     bool   `json:"blocked,omitempty"`
}

// PromptFeedback explains why a prompt produced no candidates.
type PromptFeedback struct {
	BlockReason   string         `json:"blockReason,omitempty"`
	SafetyRatings []SafetyRating `json:"safetyRatings,omitempty"`
}

// UsageMetadata is the token accounting of one request.
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// Text returns the concatenated text parts of the first candidate, or ""
// when the response carries none.
func (r *GenerateContentResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	return r.Candidates[0].Content.Joined()
}

// CountTokensRequest is the request body of the countTokens endpoint.
type CountTokensRequest struct {
	Contents []content.Content `json:"contents"`
}

// CountTokensResponse is the response body of countTokens.
type CountTokensResponse struct {
	TotalTokens int `json:"totalTokens"`
}

// EmbedContentRequest is the request body of the embedContent endpoint.
type EmbedContentRequest struct {
	Content              content.Content `json:"content"`
	TaskType             string          `json:"taskType,omitempty"`
	Title                string          `json:"title,omitempty"`
	OutputDimensionality *int            `json:"outputDimensionality,omitempty"`
}

// EmbedContentResponse is the response body of embedContent.
type EmbedContentResponse struct {
	Embedding ContentEmbedding `json:"embedding"`
}

// ContentEmbedding is one embedding vector.
type ContentEmbedding struct {
	Values []float64 `json:"values"`
}
