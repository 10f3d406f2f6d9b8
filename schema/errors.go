package schema

import (
	"fmt"
	"reflect"
)

// DerivationError reports why a Go type cannot be mapped to a Schema. It is
// produced when a type is first derived, never lazily at request time, and
// the failure is cached, so no partial schema ever escapes.
type DerivationError struct {
	Type   reflect.Type
	Field  string // empty when the error concerns the type as a whole
	Reason string
}

func (e *DerivationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema: cannot derive %s: field %s: %s", e.Type, e.Field, e.Reason)
	}
	return fmt.Sprintf("schema: cannot derive %s: %s", e.Type, e.Reason)
}

// DecodeError reports a mismatch between a returned payload and the schema it
// was supposed to satisfy. Decoding is all-or-nothing: the target value is
// unusable when a DecodeError is returned. Raw holds the untouched payload so
// callers can inspect what the service actually produced.
type DecodeError struct {
	Path   string // JSON path of the offending value, e.g. $.tags[2]
	Reason string
	Raw    []byte
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schema: decode: %s", e.Reason)
	}
	return fmt.Sprintf("schema: decode: %s: %s", e.Path, e.Reason)
}

func decodeErrorf(path string, raw []byte, format string, args ...any) *DecodeError {
	return &DecodeError{Path: path, Raw: raw, Reason: fmt.Sprintf(format, args...)}
}
