package genai

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/verdantlabs/googleai/content"
	"github.com/verdantlabs/googleai/observability"
	"github.com/verdantlabs/googleai/parse"
	"github.com/verdantlabs/googleai/schema"
)

// TypedModel binds a model to a response type. Construction derives T's
// schema once; every generation constrains the model with it and decodes the
// answer back into T. Invalid types fail here, never at request time.
type TypedModel[T any] struct {
	client *Client
	model  string
	schema json.RawMessage
	config GenerationConfig
}

// TypedResult pairs the decoded value with the full response it came from.
type TypedResult[T any] struct {
	Data     T
	Response *GenerateContentResponse
}

// NewTypedModel derives T's schema and binds it to the model. The optional
// config seeds sampling parameters; its response MIME type and schema are
// overwritten on every request.
func NewTypedModel[T any](client *Client, model string, config *GenerationConfig) (*TypedModel[T], error) {
	s, err := schema.For[T]()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("genai: marshal schema: %w", err)
	}
	tm := &TypedModel[T]{client: client, model: model, schema: raw}
	if config != nil {
		tm.config = *config
	}
	return tm, nil
}

// Generate sends the contents and decodes the first candidate into T. The
// raw response is returned alongside the data; on a decode failure the
// *schema.DecodeError carries the untouched candidate text.
func (m *TypedModel[T]) Generate(ctx context.Context, contents ...content.Content) (*TypedResult[T], error) {
	cfg := m.config
	cfg.ResponseMIMEType = "application/json"
	cfg.ResponseSchema = m.schema

	res, err := m.client.GenerateContent(ctx, m.model, &GenerateContentRequest{
		Contents:         contents,
		GenerationConfig: &cfg,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Candidates) == 0 {
		if res.PromptFeedback != nil && res.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("genai: prompt blocked: %s", res.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("genai: response carries no candidates")
	}

	data, err := parse.As[T](res.Text())
	if err != nil {
		if observer := m.client.observer; observer != nil {
			observer.Warn(ctx, "typed decode failed",
				observability.String(observability.AttrModel, m.model),
				observability.Error(err),
			)
		}
		return nil, err
	}
	return &TypedResult[T]{Data: data, Response: res}, nil
}

// GenerateText is shorthand for a single user text prompt.
func (m *TypedModel[T]) GenerateText(ctx context.Context, prompt string) (*TypedResult[T], error) {
	return m.Generate(ctx, content.UserText(prompt))
}

// Schema returns the wire schema the model is constrained with.
func (m *TypedModel[T]) Schema() json.RawMessage {
	return m.schema
}
