package schema

import (
	"fmt"
	"reflect"
	"sync"
	"time"
)

// Schemer lets a type supply its own schema, replacing reflection entirely.
// It is the escape hatch for foreign types whose wire shape the deriver
// cannot infer. AsSchema must not depend on the receiver value: it is invoked
// on a zero value during derivation.
type Schemer interface {
	AsSchema() *Schema
}

// Enumerated marks a string type whose values form a closed set. The deriver
// maps it to a string schema with format "enum" and the values in the order
// EnumValues returns them; the decoder rejects anything outside the set.
//
//	type Direction string
//
//	func (Direction) EnumValues() []string {
//		return []string{"NORTH", "EAST", "SOUTH", "WEST"}
//	}
type Enumerated interface {
	EnumValues() []string
}

// Variant describes one alternative of a Union. Value is a zero value of the
// variant's payload, or nil for a unit variant that carries no data.
type Variant struct {
	Name  string
	Value any
}

// Union marks a tagged-union type. When every variant is a unit variant the
// type derives to an enum of the variant names; otherwise it derives to an
// object with one non-required property per variant, each holding the schema
// of that variant's payload. Mixing unit and data-carrying variants is
// allowed. Like AsSchema, Variants is invoked on a zero value.
type Union interface {
	Variants() []Variant
}

// Case names a naming convention for property keys.
type Case string

const (
	CaseSnake          Case = "snake_case"
	CaseScreamingSnake Case = "SCREAMING_SNAKE_CASE"
	CaseCamel          Case = "camelCase"
	CasePascal         Case = "PascalCase"
	CaseKebab          Case = "kebab-case"
	CaseLower          Case = "lowercase"
	CaseUpper          Case = "UPPERCASE"
)

// FieldCase marks a struct type whose property keys follow a naming
// convention. The convention applies to every field that is not renamed
// explicitly through a json tag or a rename option; explicit names always
// win. Like AsSchema, SchemaFieldCase is invoked on a zero value.
//
//	type Event struct {
//		CreatedAt time.Time
//		UserID    string
//	}
//
//	func (Event) SchemaFieldCase() Case { return CaseSnake }
//
// derives properties "created_at" and "user_id".
type FieldCase interface {
	SchemaFieldCase() Case
}

var (
	schemerType    = reflect.TypeOf((*Schemer)(nil)).Elem()
	enumeratedType = reflect.TypeOf((*Enumerated)(nil)).Elem()
	unionType      = reflect.TypeOf((*Union)(nil)).Elem()
	fieldCaseType  = reflect.TypeOf((*FieldCase)(nil)).Elem()
	timeType       = reflect.TypeOf(time.Time{})
)

// For derives the schema of T. Derivation happens once per distinct type and
// is cached, including failures; concurrent first use performs a single
// derivation. The returned tree is an independent copy the caller owns.
func For[T any]() (*Schema, error) {
	return ForType(reflect.TypeFor[T]())
}

// ForType is the non-generic form of [For].
func ForType(t reflect.Type) (*Schema, error) {
	e := entryFor(t)
	if e.err != nil {
		return nil, e.err
	}
	return e.bind.schema.clone(), nil
}

// MustFor is like [For] but panics on derivation errors. Assigning the result
// to a package-level variable makes invalid types fail at process
// initialization, before any request is sent.
func MustFor[T any]() *Schema {
	s, err := For[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// cacheEntry is the per-type derivation result. The sync.Once guards against
// concurrent first use: at most one derivation runs per type.
type cacheEntry struct {
	once sync.Once
	bind *binding
	err  error
}

var cache sync.Map // reflect.Type -> *cacheEntry

func entryFor(t reflect.Type) *cacheEntry {
	v, _ := cache.LoadOrStore(t, &cacheEntry{})
	e := v.(*cacheEntry)
	e.once.Do(func() {
		d := &deriver{}
		e.bind, e.err = d.derive(t)
	})
	return e
}

// bindKind selects the decoding strategy for one schema node.
type bindKind int

const (
	bindString bindKind = iota
	bindBool
	bindInt
	bindUint
	bindFloat
	bindEnum
	bindSlice
	bindArray
	bindMap
	bindPointer
	bindStruct
	bindTuple
	// bindRaw re-encodes the payload subtree and hands it to the target
	// type's own unmarshaler. Used for Schemer overrides, tag type
	// overrides, unions and time.Time.
	bindRaw
)

// binding pairs a schema node with the reflection recipe that maps a decoded
// payload back onto the native type which produced it.
type binding struct {
	schema *Schema
	kind   bindKind
	typ    reflect.Type

	elem   *binding       // slice, array, map value, pointer element
	elems  []*binding     // tuple positions
	fields []fieldBinding // struct properties
	enum   map[string]struct{}
}

type fieldBinding struct {
	key      string
	index    int
	required bool
	bind     *binding
}

// deriver performs one derivation pass. visiting holds the chain of composite
// types currently being expanded, for recursion detection: the wire format
// has no schema references, so a type that contains itself (directly or
// mutually) cannot be represented and is rejected here rather than at
// request time.
type deriver struct {
	visiting []reflect.Type
}

func (d *deriver) derive(t reflect.Type) (*binding, error) {
	if v, ok := zeroOf(t, schemerType); ok {
		s := v.Interface().(Schemer).AsSchema()
		if s == nil {
			return nil, &DerivationError{Type: t, Reason: "AsSchema returned nil"}
		}
		if err := s.validate(); err != nil {
			return nil, &DerivationError{Type: t, Reason: err.Error()}
		}
		return &binding{kind: bindRaw, typ: t, schema: s.clone()}, nil
	}

	if v, ok := zeroOf(t, enumeratedType); ok {
		return d.deriveEnum(t, v.Interface().(Enumerated).EnumValues())
	}

	if v, ok := zeroOf(t, unionType); ok {
		return d.deriveUnion(t, v.Interface().(Union).Variants())
	}

	if t.Implements(tupleMarkerType) && t.Kind() == reflect.Struct {
		return d.deriveTuple(t)
	}

	if t == timeType {
		return &binding{kind: bindRaw, typ: t, schema: &Schema{Type: TypeString}}, nil
	}

	switch t.Kind() {
	case reflect.String:
		return &binding{kind: bindString, typ: t, schema: &Schema{Type: TypeString}}, nil
	case reflect.Bool:
		return &binding{kind: bindBool, typ: t, schema: &Schema{Type: TypeBoolean}}, nil
	case reflect.Float32:
		return &binding{kind: bindFloat, typ: t, schema: &Schema{Type: TypeNumber, Format: FormatFloat}}, nil
	case reflect.Float64:
		return &binding{kind: bindFloat, typ: t, schema: &Schema{Type: TypeNumber, Format: FormatDouble}}, nil
	case reflect.Int, reflect.Int8, reflect.Int16:
		return &binding{kind: bindInt, typ: t, schema: &Schema{Type: TypeInteger}}, nil
	case reflect.Int32:
		return &binding{kind: bindInt, typ: t, schema: &Schema{Type: TypeInteger, Format: FormatInt32}}, nil
	case reflect.Int64:
		return &binding{kind: bindInt, typ: t, schema: &Schema{Type: TypeInteger, Format: FormatInt64}}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &binding{kind: bindUint, typ: t, schema: &Schema{Type: TypeInteger}}, nil
	case reflect.Slice:
		elem, err := d.deriveElem(t)
		if err != nil {
			return nil, err
		}
		// A nil slice serializes as null, so slices are nullable.
		s := &Schema{Type: TypeArray, Items: elem.schema, Nullable: true}
		return &binding{kind: bindSlice, typ: t, schema: s, elem: elem}, nil
	case reflect.Array:
		elem, err := d.deriveElem(t)
		if err != nil {
			return nil, err
		}
		n := int64(t.Len())
		s := &Schema{Type: TypeArray, Items: elem.schema, MinItems: n, MaxItems: n}
		return &binding{kind: bindArray, typ: t, schema: s, elem: elem}, nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return nil, &DerivationError{Type: t, Reason: fmt.Sprintf("map keys must have string kind, got %s", t.Key())}
		}
		elem, err := d.deriveElem(t)
		if err != nil {
			return nil, err
		}
		// Free-form object: the key set is only known at decode time, so
		// no properties are enumerated. The value schema rides along
		// unexported for the decoder.
		s := &Schema{Type: TypeObject, Nullable: true, mapValue: elem.schema}
		return &binding{kind: bindMap, typ: t, schema: s, elem: elem}, nil
	case reflect.Pointer:
		elem, err := d.deriveElem(t)
		if err != nil {
			return nil, err
		}
		s := elem.schema.clone()
		s.Nullable = true
		return &binding{kind: bindPointer, typ: t, schema: s, elem: elem}, nil
	case reflect.Struct:
		return d.deriveStruct(t)
	default:
		return nil, &DerivationError{Type: t, Reason: fmt.Sprintf("cannot derive a schema for %s", t.Kind())}
	}
}

// zeroOf returns an addressable zero value of t asserting the interface, also
// checking *t for pointer-receiver implementations.
func zeroOf(t reflect.Type, iface reflect.Type) (reflect.Value, bool) {
	if t.Implements(iface) {
		return reflect.New(t).Elem(), true
	}
	if reflect.PointerTo(t).Implements(iface) {
		return reflect.New(t), true
	}
	return reflect.Value{}, false
}

func (d *deriver) deriveEnum(t reflect.Type, values []string) (*binding, error) {
	if t.Kind() != reflect.String {
		return nil, &DerivationError{Type: t, Reason: fmt.Sprintf("Enumerated requires a string kind, got %s", t.Kind())}
	}
	if len(values) == 0 {
		return nil, &DerivationError{Type: t, Reason: "EnumValues returned no values"}
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, dup := set[v]; dup {
			return nil, &DerivationError{Type: t, Reason: fmt.Sprintf("duplicate enum value %q", v)}
		}
		set[v] = struct{}{}
	}
	s := &Schema{Type: TypeString, Format: FormatEnum, Enum: append([]string(nil), values...)}
	return &binding{kind: bindEnum, typ: t, schema: s, enum: set}, nil
}

func (d *deriver) deriveUnion(t reflect.Type, variants []Variant) (*binding, error) {
	if len(variants) == 0 {
		return nil, &DerivationError{Type: t, Reason: "Variants returned no variants"}
	}
	if err := d.push(t); err != nil {
		return nil, err
	}
	defer d.pop()

	hasData := false
	for _, v := range variants {
		if v.Name == "" {
			return nil, &DerivationError{Type: t, Reason: "variant with empty name"}
		}
		if v.Value != nil {
			hasData = true
		}
	}

	if !hasData {
		names := make([]string, len(variants))
		for i, v := range variants {
			names[i] = v.Name
		}
		s := &Schema{Type: TypeString, Format: FormatEnum, Enum: names}
		return &binding{kind: bindRaw, typ: t, schema: s}, nil
	}

	// Tagged union: one property per variant, none required, so a payload
	// provides exactly the variants it carries.
	s := &Schema{Type: TypeObject}
	seen := map[string]bool{}
	for _, v := range variants {
		if seen[v.Name] {
			return nil, &DerivationError{Type: t, Reason: fmt.Sprintf("duplicate variant name %q", v.Name)}
		}
		seen[v.Name] = true

		var vs *Schema
		if v.Value == nil {
			vs = &Schema{Type: TypeObject}
		} else {
			vb, err := d.derive(reflect.TypeOf(v.Value))
			if err != nil {
				return nil, err
			}
			vs = vb.schema
		}
		s.Properties = append(s.Properties, Property{Name: v.Name, Schema: vs})
	}
	return &binding{kind: bindRaw, typ: t, schema: s}, nil
}

func (d *deriver) deriveTuple(t reflect.Type) (*binding, error) {
	inner := t.Field(0).Type
	if inner.Kind() != reflect.Struct {
		return nil, &DerivationError{Type: t, Reason: fmt.Sprintf("Tuple wraps %s, want a struct", inner.Kind())}
	}
	if err := d.push(inner); err != nil {
		return nil, err
	}
	defer d.pop()

	b := &binding{kind: bindTuple, typ: t}
	var items []*Schema
	for i := 0; i < inner.NumField(); i++ {
		f := inner.Field(i)
		if !f.IsExported() {
			return nil, &DerivationError{Type: t, Field: f.Name, Reason: "tuple positions must be exported"}
		}
		spec, err := parseFieldSpec(f)
		if err != nil {
			return nil, &DerivationError{Type: t, Field: f.Name, Reason: err.Error()}
		}
		if spec.skip {
			return nil, &DerivationError{Type: t, Field: f.Name, Reason: "skip is not allowed on tuple positions"}
		}
		fb, err := d.derive(f.Type)
		if err != nil {
			return nil, err
		}
		fs := fb.schema
		if desc := spec.description(); desc != "" {
			fs.Description = desc
		}
		if spec.format != FormatNone {
			if !spec.format.CompatibleWith(fs.Type) {
				return nil, &DerivationError{Type: t, Field: f.Name, Reason: fmt.Sprintf("format %q is not supported for type %q", spec.format, fs.Type)}
			}
			fs.Format = spec.format
		}
		items = append(items, fs)
		b.elems = append(b.elems, fb)
	}
	if len(items) == 0 {
		return nil, &DerivationError{Type: t, Reason: "Tuple wraps a struct with no fields"}
	}

	n := int64(len(items))
	s := &Schema{Type: TypeArray, MinItems: n, MaxItems: n}
	if uniform(items) {
		s.Items = items[0]
	} else {
		s.TupleItems = items
	}
	b.schema = s
	return b, nil
}

// uniform reports whether every positional schema is identical, in which case
// a single repeated item schema describes the whole tuple.
func uniform(items []*Schema) bool {
	for _, it := range items[1:] {
		if !reflect.DeepEqual(it, items[0]) {
			return false
		}
	}
	return true
}

func (d *deriver) deriveStruct(t reflect.Type) (*binding, error) {
	if err := d.push(t); err != nil {
		return nil, err
	}
	defer d.pop()

	s := &Schema{Type: TypeObject}
	b := &binding{kind: bindStruct, typ: t, schema: s}
	seen := map[string]bool{}

	var convention Case
	if v, ok := zeroOf(t, fieldCaseType); ok {
		convention = v.Interface().(FieldCase).SchemaFieldCase()
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		spec, err := parseFieldSpec(f)
		if err != nil {
			return nil, &DerivationError{Type: t, Field: f.Name, Reason: err.Error()}
		}
		if spec.skip {
			continue
		}
		if convention != "" && !spec.renamed {
			spec.key, err = applyCase(convention, f.Name)
			if err != nil {
				return nil, &DerivationError{Type: t, Field: f.Name, Reason: err.Error()}
			}
		}

		var (
			fs *Schema
			fb *binding
		)
		if spec.typ != "" {
			// Full override: the declared wire shape replaces derivation
			// for this field, and decoding goes through the field type's
			// own unmarshaler.
			if !spec.format.CompatibleWith(spec.typ) {
				return nil, &DerivationError{Type: t, Field: f.Name, Reason: fmt.Sprintf("format %q is not supported for type %q", spec.format, spec.typ)}
			}
			fs = &Schema{Type: spec.typ, Format: spec.format}
			fb = &binding{kind: bindRaw, typ: f.Type, schema: fs}
		} else {
			fb, err = d.derive(f.Type)
			if err != nil {
				return nil, err
			}
			fs = fb.schema
			if spec.format != FormatNone {
				if !spec.format.CompatibleWith(fs.Type) {
					return nil, &DerivationError{Type: t, Field: f.Name, Reason: fmt.Sprintf("format %q is not supported for type %q", spec.format, fs.Type)}
				}
				fs.Format = spec.format
			}
		}

		if desc := spec.description(); desc != "" {
			fs.Description = desc
		}
		if spec.nullable != nil {
			fs.Nullable = *spec.nullable
		}
		if spec.hasMin || spec.hasMax {
			if fs.Type != TypeArray {
				return nil, &DerivationError{Type: t, Field: f.Name, Reason: "minItems/maxItems require an array schema"}
			}
			if spec.hasMin {
				fs.MinItems = spec.minItems
			}
			if spec.hasMax {
				fs.MaxItems = spec.maxItems
			}
		}

		if seen[spec.key] {
			return nil, &DerivationError{Type: t, Field: f.Name, Reason: fmt.Sprintf("duplicate property key %q", spec.key)}
		}
		seen[spec.key] = true

		required := !spec.optional
		if spec.nullable != nil && *spec.nullable {
			required = false
		}
		if spec.required != nil {
			required = *spec.required
		}
		if required {
			s.Required = append(s.Required, spec.key)
		}

		s.Properties = append(s.Properties, Property{Name: spec.key, Schema: fs})
		b.fields = append(b.fields, fieldBinding{key: spec.key, index: i, required: required, bind: fb})
	}
	return b, nil
}

// deriveElem derives the element type of a container with the container
// itself on the visiting chain, so cycles built purely out of slices, arrays,
// maps or pointers are caught the same way struct cycles are.
func (d *deriver) deriveElem(t reflect.Type) (*binding, error) {
	if err := d.push(t); err != nil {
		return nil, err
	}
	defer d.pop()
	return d.derive(t.Elem())
}

func (d *deriver) push(t reflect.Type) error {
	for _, v := range d.visiting {
		if v == t {
			return &DerivationError{Type: t, Reason: "recursive type: the wire format cannot represent self-referential schemas"}
		}
	}
	d.visiting = append(d.visiting, t)
	return nil
}

func (d *deriver) pop() {
	d.visiting = d.visiting[:len(d.visiting)-1]
}
