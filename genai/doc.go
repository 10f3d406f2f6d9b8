// Package genai is a REST client for the Google Generative Language API.
//
// [Client] exposes the raw endpoints (GenerateContent, CountTokens,
// EmbedContent) behind a composable middleware chain. [TypedModel]
// constrains generation with a schema derived from a Go type and decodes
// answers back into it; [Chat] keeps multi-turn history.
package genai
