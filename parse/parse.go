// Package parse extracts schema-conforming values from raw model text.
// Models occasionally wrap JSON in markdown code fences or emit slightly
// malformed output; this package strips fences and applies one automatic
// JSON repair pass before decoding. Decoding itself is always strict: repair
// fixes syntax, never schema violations.
package parse

import (
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/verdantlabs/googleai/schema"
)

// As decodes model output into T, validated against T's derived schema.
// The raw text is tried first; if it is not valid JSON, a repaired copy is
// tried once. Schema violations (missing required properties, unknown keys,
// enum mismatches) fail on both passes.
func As[T any](text string) (T, error) {
	cleaned := StripFences(text)

	out, err := schema.Unmarshal[T]([]byte(cleaned))
	if err == nil {
		return out, nil
	}
	if !syntaxError(err) {
		var zero T
		return zero, err
	}

	repaired, repairErr := jsonrepair.JSONRepair(cleaned)
	if repairErr != nil {
		// Repair failed; the original syntax error describes the input
		// better than the repair failure does.
		var zero T
		return zero, err
	}
	return schema.Unmarshal[T]([]byte(repaired))
}

// syntaxError reports whether the decode failed on JSON syntax rather than
// schema validation. Only syntax failures are worth a repair pass.
func syntaxError(err error) bool {
	derr, ok := err.(*schema.DecodeError)
	if !ok {
		return false
	}
	return strings.HasPrefix(derr.Reason, "invalid JSON") ||
		strings.HasPrefix(derr.Reason, "trailing data")
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag, returning the input unchanged when no fence wraps it.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	rest := trimmed[3:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		// Drop the opening fence line, including any language tag.
		rest = rest[i+1:]
	} else {
		return trimmed
	}
	if i := strings.LastIndex(rest, "```"); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}
