package schema

import (
	"bytes"
	"fmt"
	"reflect"

	json "github.com/goccy/go-json"
)

// Tuple marks a positional aggregate. T must be a struct; its fields lose
// their names and derive to a fixed-length array schema with one item schema
// per position (a single repeated item schema when every position has the
// same type). The wire value is a JSON array whose elements decode into the
// fields of Values in declaration order.
//
//	type span = schema.Tuple[struct {
//		Start int
//		End   int
//	}]
type Tuple[T any] struct {
	Values T
}

// tupleMarker lets the deriver recognise Tuple instantiations through
// reflection without knowing the concrete T.
type tupleMarker interface{ tupleMarker() }

func (Tuple[T]) tupleMarker() {}

var tupleMarkerType = reflect.TypeOf((*tupleMarker)(nil)).Elem()

// MarshalJSON encodes the wrapped struct's fields as a JSON array in
// declaration order.
func (t Tuple[T]) MarshalJSON() ([]byte, error) {
	rv := reflect.ValueOf(t.Values)
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: Tuple wraps %s, want a struct", rv.Kind())
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; i < rv.NumField(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := json.Marshal(rv.Field(i).Interface())
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON array positionally into the wrapped struct's
// fields. The arity must match exactly.
func (t *Tuple[T]) UnmarshalJSON(data []byte) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return fmt.Errorf("schema: Tuple expects a JSON array: %w", err)
	}
	rv := reflect.ValueOf(&t.Values).Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("schema: Tuple wraps %s, want a struct", rv.Kind())
	}
	if len(elems) != rv.NumField() {
		return fmt.Errorf("schema: Tuple expects %d elements, got %d", rv.NumField(), len(elems))
	}
	for i, raw := range elems {
		if err := json.Unmarshal(raw, rv.Field(i).Addr().Interface()); err != nil {
			return fmt.Errorf("schema: Tuple element %d: %w", i, err)
		}
	}
	return nil
}

// Map marks a key/value container as schema-compliant despite the wire
// format's lack of a free-form map kind: it derives to an object schema with
// no enumerated properties, and each returned value is validated against V's
// schema at decode time. Plain map[string]V fields derive identically; the
// named type exists so the intent is visible at the type level.
type Map[K ~string, V any] map[K]V
