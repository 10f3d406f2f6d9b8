package content

import (
	"encoding/base64"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func TestTextPartMarshalsOnlyText(t *testing.T) {
	b, err := json.Marshal(Text("hello"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(b) != `{"text":"hello"}` {
		t.Errorf("Expected a bare text part, got %s", b)
	}
}

func TestDataPartEncodesBase64(t *testing.T) {
	p := Data("image/png", []byte{0x89, 0x50, 0x4e, 0x47})
	if p.InlineData == nil {
		t.Fatal("Expected inline data to be set")
	}
	if p.InlineData.MIMEType != "image/png" {
		t.Errorf("Expected image/png, got %q", p.InlineData.MIMEType)
	}
	raw, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
	if err != nil {
		t.Fatalf("Data is not valid base64: %v", err)
	}
	if string(raw) != "\x89PNG" {
		t.Errorf("Round trip changed the bytes: %x", raw)
	}
}

func TestFilePartCarriesURI(t *testing.T) {
	p := File("video/mp4", "gs://bucket/clip.mp4")
	if p.FileData == nil || p.FileData.FileURI != "gs://bucket/clip.mp4" {
		t.Errorf("Expected the URI to survive, got %+v", p.FileData)
	}
}

func TestUserBlockHasUserRole(t *testing.T) {
	c := UserText("hi")
	if c.Role != RoleUser {
		t.Errorf("Expected role %q, got %q", RoleUser, c.Role)
	}
	if len(c.Parts) != 1 || c.Parts[0].Text != "hi" {
		t.Errorf("Expected a single text part, got %+v", c.Parts)
	}
}

func TestFromHTMLStripsMarkup(t *testing.T) {
	p, err := FromHTML(`<h1>Title</h1><p>Body with <strong>bold</strong> text.</p>`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.Contains(p.Text, "<h1>") || strings.Contains(p.Text, "<p>") {
		t.Errorf("HTML tags survived conversion: %q", p.Text)
	}
	if !strings.Contains(p.Text, "Title") || !strings.Contains(p.Text, "bold") {
		t.Errorf("Content lost in conversion: %q", p.Text)
	}
}

func TestJoinedConcatenatesTextParts(t *testing.T) {
	c := User(Text("a"), File("image/png", "gs://x"), Text("b"))
	if got := c.Joined(); got != "ab" {
		t.Errorf("Expected %q, got %q", "ab", got)
	}
}
