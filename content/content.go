// Package content models the request and response payload parts exchanged
// with the Generative Language API: text, inline binary data and URI-backed
// file references, grouped into role-tagged content blocks.
package content

import (
	"encoding/base64"
	"fmt"
	"os"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Role identifies the author of a content block.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Content is one role-tagged block of parts in a conversation turn.
type Content struct {
	Role  Role   `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is one piece of a content block. Exactly one of the fields is set.
type Part struct {
	Text       string    `json:"text,omitempty"`
	InlineData *Blob     `json:"inlineData,omitempty"`
	FileData   *FileData `json:"fileData,omitempty"`
}

// Blob is inline binary data, base64-encoded on the wire.
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// FileData references previously uploaded or cloud-hosted bytes by URI
// instead of inlining them.
type FileData struct {
	MIMEType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

// Text builds a text part.
func Text(s string) Part {
	return Part{Text: s}
}

// Textf builds a text part from a format string.
func Textf(format string, args ...any) Part {
	return Part{Text: fmt.Sprintf(format, args...)}
}

// Data builds an inline-data part from raw bytes.
func Data(mimeType string, data []byte) Part {
	return Part{InlineData: &Blob{
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}}
}

// File builds a part referencing bytes by URI.
func File(mimeType, uri string) Part {
	return Part{FileData: &FileData{MIMEType: mimeType, FileURI: uri}}
}

// FromFile reads path and builds an inline-data part with the given MIME
// type.
func FromFile(mimeType, path string) (Part, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Part{}, fmt.Errorf("content: read %s: %w", path, err)
	}
	return Data(mimeType, b), nil
}

// FromHTML converts an HTML document to markdown and wraps it in a text
// part. Markdown keeps document structure while stripping markup the model
// would otherwise spend tokens on.
func FromHTML(html string) (Part, error) {
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return Part{}, fmt.Errorf("content: convert html: %w", err)
	}
	return Text(md), nil
}

// User builds a user-role content block from parts.
func User(parts ...Part) Content {
	return Content{Role: RoleUser, Parts: parts}
}

// Model builds a model-role content block from parts.
func Model(parts ...Part) Content {
	return Content{Role: RoleModel, Parts: parts}
}

// UserText is shorthand for a user block holding a single text part.
func UserText(s string) Content {
	return User(Text(s))
}

// Joined concatenates the text parts of the content block, ignoring
// non-text parts.
func (c Content) Joined() string {
	var out string
	for _, p := range c.Parts {
		out += p.Text
	}
	return out
}
