package schema

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Type is the wire data type of a Schema. It mirrors the subset of OpenAPI
// data types accepted by the Generative Language API's responseSchema field.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Format refines a primitive Type. The service only accepts a handful of
// type/format pairs; CompatibleWith encodes which.
type Format string

const (
	FormatNone   Format = ""
	FormatFloat  Format = "float"
	FormatDouble Format = "double"
	FormatInt32  Format = "int32"
	FormatInt64  Format = "int64"
	FormatEnum   Format = "enum"
)

// CompatibleWith reports whether the format may annotate the given type.
func (f Format) CompatibleWith(t Type) bool {
	switch f {
	case FormatNone:
		return true
	case FormatFloat, FormatDouble:
		return t == TypeNumber
	case FormatInt32, FormatInt64:
		return t == TypeInteger
	case FormatEnum:
		return t == TypeString
	}
	return false
}

// Schema describes the shape of one value in the vocabulary the Generative
// Language API expects for constrained output. A Schema tree is immutable
// once derived; [For] hands every caller an independent copy.
//
// Exactly one of Items and TupleItems may be set, and only when Type is
// TypeArray. TupleItems describes a fixed-length array whose positions have
// distinct schemas (see [Tuple]).
type Schema struct {
	Type        Type
	Format      Format
	Description string
	Nullable    bool

	// Enum lists the allowed values of a string schema, in declaration
	// order. When set, Format is FormatEnum.
	Enum []string

	Items      *Schema
	TupleItems []*Schema

	// Properties preserves insertion order so that generated schemas are
	// deterministic; the order is visible to the model and affects
	// generated output.
	Properties []Property
	Required   []string

	MinItems int64
	MaxItems int64

	// mapValue holds the value schema of a free-form object (a map). It is
	// not part of the wire format; the decoder validates entries with it.
	mapValue *Schema
}

// Property is one named member of an object schema.
type Property struct {
	Name   string
	Schema *Schema
}

// Property returns the schema of the named property, or nil.
func (s *Schema) Property(name string) *Schema {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}

// validate checks the structural invariants of an authored schema tree:
// compatible type/format pairs, enum values only on string schemas, items
// only on arrays, properties only on objects, and Required a subset of the
// property keys. Derived trees hold these by construction; trees supplied
// through [Schemer] are checked with it.
func (s *Schema) validate() error {
	if !s.Format.CompatibleWith(s.Type) {
		return fmt.Errorf("format %q is not supported for type %q", s.Format, s.Type)
	}
	if len(s.Enum) > 0 {
		if s.Type != TypeString {
			return fmt.Errorf("enum values require a string schema, got %q", s.Type)
		}
		if len(s.Properties) > 0 || s.Items != nil || len(s.TupleItems) > 0 {
			return fmt.Errorf("enum schema cannot carry properties or items")
		}
	}
	if s.Type != TypeArray {
		if s.Items != nil || len(s.TupleItems) > 0 {
			return fmt.Errorf("items require an array schema, got %q", s.Type)
		}
		if s.MinItems != 0 || s.MaxItems != 0 {
			return fmt.Errorf("minItems/maxItems require an array schema, got %q", s.Type)
		}
	}
	if s.Items != nil && len(s.TupleItems) > 0 {
		return fmt.Errorf("items and positional items are mutually exclusive")
	}
	if s.Type != TypeObject && len(s.Properties) > 0 {
		return fmt.Errorf("properties require an object schema, got %q", s.Type)
	}
	for _, key := range s.Required {
		if s.Property(key) == nil {
			return fmt.Errorf("required key %q has no matching property", key)
		}
	}
	if s.Items != nil {
		if err := s.Items.validate(); err != nil {
			return err
		}
	}
	for _, it := range s.TupleItems {
		if err := it.validate(); err != nil {
			return err
		}
	}
	for _, p := range s.Properties {
		if err := p.Schema.validate(); err != nil {
			return fmt.Errorf("property %q: %w", p.Name, err)
		}
	}
	return nil
}

// MarshalJSON emits the wire shape consumed by the API's responseSchema
// field. Properties are written in insertion order, which the standard
// map-backed encoding cannot guarantee.
func (s *Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	field := func(name string, v any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteByte('"')
		buf.WriteString(name)
		buf.WriteString(`":`)
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}

	if err := field("type", string(s.Type)); err != nil {
		return nil, err
	}
	if s.Description != "" {
		if err := field("description", s.Description); err != nil {
			return nil, err
		}
	}
	if s.Format != FormatNone {
		if err := field("format", string(s.Format)); err != nil {
			return nil, err
		}
	}
	if s.Nullable {
		if err := field("nullable", true); err != nil {
			return nil, err
		}
	}
	if len(s.Enum) > 0 {
		if err := field("enum", s.Enum); err != nil {
			return nil, err
		}
	}
	if len(s.Properties) > 0 {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(`"properties":{`)
		for i, p := range s.Properties {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(p.Name)
			if err != nil {
				return nil, err
			}
			buf.Write(name)
			buf.WriteByte(':')
			b, err := json.Marshal(p.Schema)
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte('}')
	}
	if len(s.Required) > 0 {
		if err := field("required", s.Required); err != nil {
			return nil, err
		}
	}
	switch {
	case s.Items != nil:
		if err := field("items", s.Items); err != nil {
			return nil, err
		}
	case len(s.TupleItems) > 0:
		if err := field("items", s.TupleItems); err != nil {
			return nil, err
		}
	}
	if s.MinItems > 0 {
		if err := field("minItems", s.MinItems); err != nil {
			return nil, err
		}
	}
	if s.MaxItems > 0 {
		if err := field("maxItems", s.MaxItems); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String returns the indented JSON representation, for debugging.
func (s *Schema) String() string {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Sprintf("schema: %v", err)
	}
	return string(b)
}

// clone deep-copies the schema tree.
func (s *Schema) clone() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	out.Enum = append([]string(nil), s.Enum...)
	out.Required = append([]string(nil), s.Required...)
	out.Items = s.Items.clone()
	out.mapValue = s.mapValue.clone()
	if s.TupleItems != nil {
		out.TupleItems = make([]*Schema, len(s.TupleItems))
		for i, it := range s.TupleItems {
			out.TupleItems[i] = it.clone()
		}
	}
	if s.Properties != nil {
		out.Properties = make([]Property, len(s.Properties))
		for i, p := range s.Properties {
			out.Properties[i] = Property{Name: p.Name, Schema: p.Schema.clone()}
		}
	}
	return &out
}
