package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// fieldSpec is the per-field derivation state accumulated from the `schema`
// struct tag, with the `json` tag mirrored for naming and skipping unless the
// schema tag overrides it.
type fieldSpec struct {
	name string // native field identifier
	key  string // resolved external property key

	// descriptions collects every description= occurrence in declaration
	// order; an empty fragment is a paragraph break.
	descriptions []string

	typ      Type // wire type override; "" means derive from the Go type
	format   Format
	required *bool
	nullable *bool
	skip     bool

	minItems, maxItems int64
	hasMin, hasMax     bool

	// optional marks a field that defaults to not-required: pointer types
	// and json ",omitempty" fields.
	optional bool

	// renamed is set when the key came from a json tag or a rename option,
	// which exempts the field from a type-level case convention.
	renamed bool
}

var (
	validTypes = map[string]Type{
		"string": TypeString, "number": TypeNumber, "integer": TypeInteger,
		"boolean": TypeBoolean, "array": TypeArray, "object": TypeObject,
	}
	validFormats = map[string]Format{
		"float": FormatFloat, "double": FormatDouble,
		"int32": FormatInt32, "int64": FormatInt64, "enum": FormatEnum,
	}
)

// parseFieldSpec reads the json and schema tags of one struct field. Options
// are comma separated with no escaping, so option values must not contain
// commas. The returned error text is a bare reason; the caller wraps it into
// a DerivationError with type and field context.
func parseFieldSpec(f reflect.StructField) (*fieldSpec, error) {
	spec := &fieldSpec{name: f.Name, key: f.Name}

	// The json tag's name and skip/omitempty semantics are mirrored so the
	// generated schema matches what encoding/json produces for the type.
	if jsonTag, ok := f.Tag.Lookup("json"); ok {
		name, opts, hasOpts := strings.Cut(jsonTag, ",")
		if name == "-" && !hasOpts {
			spec.skip = true
		} else if name != "" {
			spec.key = name
			spec.renamed = true
		}
		for _, opt := range strings.Split(opts, ",") {
			if opt == "omitempty" {
				spec.optional = true
			}
		}
	}

	if f.Type.Kind() == reflect.Pointer {
		spec.optional = true
	}

	tag, ok := f.Tag.Lookup("schema")
	if !ok {
		return spec, nil
	}

	sawDescription := false
	for _, item := range strings.Split(tag, ",") {
		key, value, hasValue := strings.Cut(item, "=")
		switch key {
		case "description":
			if !hasValue {
				return nil, fmt.Errorf("description needs a value")
			}
			spec.descriptions = append(spec.descriptions, value)
			sawDescription = true
		case "rename":
			if value == "" {
				return nil, fmt.Errorf("rename needs a value")
			}
			spec.key = value
			spec.renamed = true
		case "type":
			t, ok := validTypes[value]
			if !ok {
				return nil, fmt.Errorf("unknown type %q", value)
			}
			spec.typ = t
		case "format":
			fm, ok := validFormats[value]
			if !ok {
				return nil, fmt.Errorf("unknown format %q", value)
			}
			spec.format = fm
		case "required":
			b, err := tagBool(key, value, hasValue)
			if err != nil {
				return nil, err
			}
			spec.required = &b
		case "nullable":
			b, err := tagBool(key, value, hasValue)
			if err != nil {
				return nil, err
			}
			spec.nullable = &b
		case "skip":
			if hasValue {
				return nil, fmt.Errorf("skip takes no value")
			}
			spec.skip = true
		case "minItems":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("minItems: %w", err)
			}
			spec.minItems, spec.hasMin = n, true
		case "maxItems":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("maxItems: %w", err)
			}
			spec.maxItems, spec.hasMax = n, true
		case "":
			// trailing comma
		default:
			return nil, fmt.Errorf("unknown schema tag option %q", key)
		}
	}

	if spec.typ != "" && spec.skip {
		return nil, fmt.Errorf("type override and skip are mutually exclusive")
	}
	if sawDescription {
		if _, err := joinDescriptions(spec.descriptions); err != nil {
			return nil, err
		}
	}
	return spec, nil
}

func tagBool(key, value string, hasValue bool) (bool, error) {
	if !hasValue {
		return true, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// joinDescriptions concatenates description fragments in declaration order,
// joined by newlines. An empty fragment among others inserts a blank line,
// matching the paragraph-break convention of doc comments; fragments that are
// all empty are rejected because a present-but-empty description is
// meaningless on the wire.
func joinDescriptions(fragments []string) (string, error) {
	if len(fragments) == 0 {
		return "", nil
	}
	joined := strings.Join(fragments, "\n")
	if strings.TrimSpace(joined) == "" {
		return "", fmt.Errorf("description must not be empty")
	}
	return joined, nil
}

// description returns the field's joined description, or "" when none was
// declared.
func (s *fieldSpec) description() string {
	joined, err := joinDescriptions(s.descriptions)
	if err != nil {
		// Rejected already in parseFieldSpec.
		return ""
	}
	return joined
}

// splitWords breaks a Go field identifier into its words for case
// conversion. A word starts at a lower-to-upper boundary and at the last
// capital of an acronym run, so UserID becomes [User ID] and HTMLBody
// becomes [HTML Body]. Digits stay attached to the current word.
func splitWords(name string) []string {
	runes := []rune(name)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		if !unicode.IsUpper(runes[i]) {
			continue
		}
		boundary := unicode.IsLower(runes[i-1]) ||
			(unicode.IsUpper(runes[i-1]) && i+1 < len(runes) && unicode.IsLower(runes[i+1]))
		if boundary {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	return append(words, string(runes[start:]))
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	r := []rune(strings.ToLower(w))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// applyCase converts a field identifier to the given naming convention.
func applyCase(c Case, name string) (string, error) {
	words := splitWords(name)
	switch c {
	case CaseSnake:
		return strings.ToLower(strings.Join(words, "_")), nil
	case CaseScreamingSnake:
		return strings.ToUpper(strings.Join(words, "_")), nil
	case CaseKebab:
		return strings.ToLower(strings.Join(words, "-")), nil
	case CaseLower:
		return strings.ToLower(strings.Join(words, "")), nil
	case CaseUpper:
		return strings.ToUpper(strings.Join(words, "")), nil
	case CaseCamel:
		out := strings.ToLower(words[0])
		for _, w := range words[1:] {
			out += titleWord(w)
		}
		return out, nil
	case CasePascal:
		var out string
		for _, w := range words {
			out += titleWord(w)
		}
		return out, nil
	default:
		return "", fmt.Errorf("unknown field case %q", c)
	}
}
