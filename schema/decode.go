package schema

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	json "github.com/goccy/go-json"
)

// Unmarshal decodes data into a T, checking every value against T's derived
// schema. Unknown object keys, missing required properties, enum values
// outside the declared set and type mismatches are all errors; on any error
// the result is the zero value and the *DecodeError carries the JSON path of
// the first offending value plus the raw payload.
func Unmarshal[T any](data []byte) (T, error) {
	var out T
	err := UnmarshalType(data, &out)
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// UnmarshalType is the non-generic form of [Unmarshal]. dst must be a
// non-nil pointer; the schema is derived from the pointed-to type.
func UnmarshalType(data []byte, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("schema: UnmarshalType requires a non-nil pointer, got %T", dst)
	}
	e := entryFor(rv.Type().Elem())
	if e.err != nil {
		return e.err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return decodeErrorf("$", data, "invalid JSON: %v", err)
	}
	var trailing any
	if err := dec.Decode(&trailing); err == nil {
		return decodeErrorf("$", data, "trailing data after JSON value")
	}

	dec2 := &decoder{raw: data}
	if err := dec2.assign(e.bind, payload, rv.Elem(), "$"); err != nil {
		rv.Elem().Set(reflect.Zero(rv.Type().Elem()))
		return err
	}
	return nil
}

type decoder struct {
	raw []byte
}

func (d *decoder) errf(path, format string, args ...any) *DecodeError {
	return decodeErrorf(path, d.raw, format, args...)
}

// assign checks v against b's schema and writes it to dst. dst is always
// settable: callers pass struct fields, slice elements or freshly allocated
// values.
func (d *decoder) assign(b *binding, v any, dst reflect.Value, path string) error {
	if v == nil {
		if !b.schema.Nullable {
			return d.errf(path, "null for non-nullable %s", b.schema.Type)
		}
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	switch b.kind {
	case bindString:
		s, ok := v.(string)
		if !ok {
			return d.errf(path, "expected string, got %s", jsonKind(v))
		}
		dst.SetString(s)
		return nil

	case bindBool:
		bv, ok := v.(bool)
		if !ok {
			return d.errf(path, "expected boolean, got %s", jsonKind(v))
		}
		dst.SetBool(bv)
		return nil

	case bindInt:
		n, ok := v.(json.Number)
		if !ok {
			return d.errf(path, "expected integer, got %s", jsonKind(v))
		}
		i, err := n.Int64()
		if err != nil {
			return d.errf(path, "expected integer, got %q", n.String())
		}
		if dst.OverflowInt(i) {
			return d.errf(path, "%d overflows %s", i, dst.Type())
		}
		dst.SetInt(i)
		return nil

	case bindUint:
		n, ok := v.(json.Number)
		if !ok {
			return d.errf(path, "expected integer, got %s", jsonKind(v))
		}
		i, err := parseUint(n)
		if err != nil {
			return d.errf(path, "expected non-negative integer, got %q", n.String())
		}
		if dst.OverflowUint(i) {
			return d.errf(path, "%d overflows %s", i, dst.Type())
		}
		dst.SetUint(i)
		return nil

	case bindFloat:
		n, ok := v.(json.Number)
		if !ok {
			return d.errf(path, "expected number, got %s", jsonKind(v))
		}
		f, err := n.Float64()
		if err != nil {
			return d.errf(path, "expected number, got %q", n.String())
		}
		dst.SetFloat(f)
		return nil

	case bindEnum:
		s, ok := v.(string)
		if !ok {
			return d.errf(path, "expected string, got %s", jsonKind(v))
		}
		if _, ok := b.enum[s]; !ok {
			return d.errf(path, "%q is not one of %s", s, strings.Join(b.schema.Enum, ", "))
		}
		dst.SetString(s)
		return nil

	case bindSlice:
		arr, ok := v.([]any)
		if !ok {
			return d.errf(path, "expected array, got %s", jsonKind(v))
		}
		if err := checkBounds(b.schema, len(arr)); err != nil {
			return d.errf(path, "%v", err)
		}
		out := reflect.MakeSlice(dst.Type(), len(arr), len(arr))
		for i, ev := range arr {
			if err := d.assign(b.elem, ev, out.Index(i), elemPath(path, i)); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil

	case bindArray:
		arr, ok := v.([]any)
		if !ok {
			return d.errf(path, "expected array, got %s", jsonKind(v))
		}
		if len(arr) != dst.Len() {
			return d.errf(path, "expected exactly %d elements, got %d", dst.Len(), len(arr))
		}
		for i, ev := range arr {
			if err := d.assign(b.elem, ev, dst.Index(i), elemPath(path, i)); err != nil {
				return err
			}
		}
		return nil

	case bindMap:
		obj, ok := v.(map[string]any)
		if !ok {
			return d.errf(path, "expected object, got %s", jsonKind(v))
		}
		out := reflect.MakeMapWithSize(dst.Type(), len(obj))
		kt := dst.Type().Key()
		for k, ev := range obj {
			ev := ev
			val := reflect.New(dst.Type().Elem()).Elem()
			if err := d.assign(b.elem, ev, val, keyPath(path, k)); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(kt), val)
		}
		dst.Set(out)
		return nil

	case bindPointer:
		// Null was handled above; allocate and decode through.
		p := reflect.New(dst.Type().Elem())
		if err := d.assign(b.elem, v, p.Elem(), path); err != nil {
			return err
		}
		dst.Set(p)
		return nil

	case bindStruct:
		obj, ok := v.(map[string]any)
		if !ok {
			return d.errf(path, "expected object, got %s", jsonKind(v))
		}
		known := make(map[string]bool, len(b.fields))
		for _, f := range b.fields {
			known[f.key] = true
		}
		for k := range obj {
			if !known[k] {
				return d.errf(keyPath(path, k), "unknown property")
			}
		}
		for _, f := range b.fields {
			fv, present := obj[f.key]
			if !present {
				if f.required {
					return d.errf(path, "missing required property %q", f.key)
				}
				continue
			}
			if err := d.assign(f.bind, fv, dst.Field(f.index), keyPath(path, f.key)); err != nil {
				return err
			}
		}
		return nil

	case bindTuple:
		arr, ok := v.([]any)
		if !ok {
			return d.errf(path, "expected array, got %s", jsonKind(v))
		}
		if len(arr) != len(b.elems) {
			return d.errf(path, "expected exactly %d elements, got %d", len(b.elems), len(arr))
		}
		inner := dst.Field(0)
		for i, ev := range arr {
			if err := d.assign(b.elems[i], ev, inner.Field(i), elemPath(path, i)); err != nil {
				return err
			}
		}
		return nil

	case bindRaw:
		if err := checkShape(b.schema, v); err != nil {
			return d.errf(path, "%v", err)
		}
		enc, err := json.Marshal(v)
		if err != nil {
			return d.errf(path, "re-encode: %v", err)
		}
		if err := json.Unmarshal(enc, dst.Addr().Interface()); err != nil {
			return d.errf(path, "%v", err)
		}
		return nil

	default:
		return d.errf(path, "unhandled binding kind %d", b.kind)
	}
}

// checkShape validates the top-level JSON kind of v against s. Used for
// values decoded through a type's own unmarshaler, where the binding tree
// cannot descend.
func checkShape(s *Schema, v any) error {
	switch s.Type {
	case TypeString:
		sv, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %s", jsonKind(v))
		}
		if len(s.Enum) > 0 {
			for _, e := range s.Enum {
				if e == sv {
					return nil
				}
			}
			return fmt.Errorf("%q is not one of %s", sv, strings.Join(s.Enum, ", "))
		}
	case TypeNumber, TypeInteger:
		n, ok := v.(json.Number)
		if !ok {
			return fmt.Errorf("expected %s, got %s", s.Type, jsonKind(v))
		}
		if s.Type == TypeInteger {
			if _, err := n.Int64(); err != nil {
				return fmt.Errorf("expected integer, got %q", n.String())
			}
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected boolean, got %s", jsonKind(v))
		}
	case TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return fmt.Errorf("expected array, got %s", jsonKind(v))
		}
		if err := checkBounds(s, len(arr)); err != nil {
			return err
		}
	case TypeObject:
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("expected object, got %s", jsonKind(v))
		}
	}
	return nil
}

func checkBounds(s *Schema, n int) error {
	if s.MinItems > 0 && int64(n) < s.MinItems {
		return fmt.Errorf("expected at least %d elements, got %d", s.MinItems, n)
	}
	if s.MaxItems > 0 && int64(n) > s.MaxItems {
		return fmt.Errorf("expected at most %d elements, got %d", s.MaxItems, n)
	}
	return nil
}

// parseUint parses a json.Number as an unsigned integer, rejecting negatives
// and fractions.
func parseUint(n json.Number) (uint64, error) {
	r, ok := new(big.Rat).SetString(n.String())
	if !ok || !r.IsInt() || r.Sign() < 0 {
		return 0, fmt.Errorf("not a non-negative integer")
	}
	if !r.Num().IsUint64() {
		return 0, fmt.Errorf("out of range")
	}
	return r.Num().Uint64(), nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func elemPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func keyPath(path, key string) string {
	return path + "." + key
}
