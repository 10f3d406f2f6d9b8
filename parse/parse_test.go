package parse

import (
	"errors"
	"testing"

	"github.com/verdantlabs/googleai/schema"
)

type verdict struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

func TestParsesCleanJSON(t *testing.T) {
	got, err := As[verdict](`{"answer":"yes","confidence":0.9}`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Answer != "yes" || got.Confidence != 0.9 {
		t.Errorf("Unexpected result: %+v", got)
	}
}

func TestStripsMarkdownFence(t *testing.T) {
	input := "```json\n{\"answer\":\"yes\",\"confidence\":0.5}\n```"
	got, err := As[verdict](input)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Answer != "yes" {
		t.Errorf("Unexpected result: %+v", got)
	}
}

func TestRepairsMalformedJSON(t *testing.T) {
	// Single quotes and a trailing comma, typical sloppy model output.
	got, err := As[verdict](`{'answer': 'yes', 'confidence': 0.7,}`)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Answer != "yes" {
		t.Errorf("Unexpected result: %+v", got)
	}
}

func TestSchemaViolationIsNotRepaired(t *testing.T) {
	// Valid JSON that fails validation must not be "fixed" into passing.
	_, err := As[verdict](`{"answer":"yes"}`)
	if err == nil {
		t.Fatal("Expected a decode error for a missing required property")
	}
	var derr *schema.DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("Expected *schema.DecodeError, got %T", err)
	}
}

func TestUnrepairableInputReportsOriginalError(t *testing.T) {
	_, err := As[verdict]("not json at all {{{")
	if err == nil {
		t.Fatal("Expected an error")
	}
}

func TestStripFencesKeepsPlainText(t *testing.T) {
	if got := StripFences(`{"a":1}`); got != `{"a":1}` {
		t.Errorf("Expected unchanged input, got %q", got)
	}
}

func TestStripFencesHandlesNoLanguageTag(t *testing.T) {
	got := StripFences("```\n{\"a\":1}\n```")
	if got != `{"a":1}` {
		t.Errorf("Expected the fence to be removed, got %q", got)
	}
}
