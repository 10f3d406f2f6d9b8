package genai

import (
	"context"
	"fmt"

	"github.com/verdantlabs/googleai/content"
)

// Chat is a multi-turn session. History accumulates only turns the service
// accepted: a failed send leaves it unchanged, so retrying the same message
// does not duplicate turns.
type Chat struct {
	client  *Client
	model   string
	system  *SystemInstruction
	config  *GenerationConfig
	history []content.Content
}

// ChatOption configures a Chat.
type ChatOption func(*Chat)

// WithSystemInstruction sets the system prompt for every turn.
func WithSystemInstruction(text string) ChatOption {
	return func(c *Chat) {
		c.system = &SystemInstruction{Parts: []content.Part{content.Text(text)}}
	}
}

// WithGenerationConfig sets sampling parameters for every turn.
func WithGenerationConfig(cfg *GenerationConfig) ChatOption {
	return func(c *Chat) { c.config = cfg }
}

// WithHistory seeds the session with prior turns.
func WithHistory(history ...content.Content) ChatOption {
	return func(c *Chat) { c.history = append(c.history, history...) }
}

// NewChat starts a session on the given model.
func (c *Client) NewChat(model string, opts ...ChatOption) *Chat {
	chat := &Chat{client: c, model: model}
	for _, opt := range opts {
		opt(chat)
	}
	return chat
}

// Send appends a user turn, generates the model's reply and records both in
// the history.
func (c *Chat) Send(ctx context.Context, parts ...content.Part) (*GenerateContentResponse, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("genai: a chat message needs at least one part")
	}
	turn := content.User(parts...)
	contents := append(append([]content.Content(nil), c.history...), turn)

	res, err := c.client.GenerateContent(ctx, c.model, &GenerateContentRequest{
		Contents:          contents,
		SystemInstruction: c.system,
		GenerationConfig:  c.config,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Candidates) == 0 {
		return res, fmt.Errorf("genai: response carries no candidates")
	}

	c.history = append(c.history, turn, res.Candidates[0].Content)
	return res, nil
}

// SendText is shorthand for a single text part.
func (c *Chat) SendText(ctx context.Context, text string) (*GenerateContentResponse, error) {
	return c.Send(ctx, content.Text(text))
}

// History returns a copy of the recorded turns.
func (c *Chat) History() []content.Content {
	return append([]content.Content(nil), c.history...)
}
