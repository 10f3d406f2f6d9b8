package schema

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func TestMarshalWritesPropertiesInDeclarationOrder(t *testing.T) {
	type profile struct {
		Zeta  string `json:"zeta"`
		Alpha string `json:"alpha"`
		Mid   string `json:"mid"`
	}
	s := MustFor[profile]()
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := string(b)
	zi := strings.Index(out, `"zeta"`)
	ai := strings.Index(out, `"alpha"`)
	mi := strings.Index(out, `"mid"`)
	if zi < 0 || ai < 0 || mi < 0 {
		t.Fatalf("Missing properties in %s", out)
	}
	if !(zi < ai && ai < mi) {
		t.Errorf("Properties not in declaration order: %s", out)
	}
}

func TestMarshalOmitsZeroFields(t *testing.T) {
	s := &Schema{Type: TypeString}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(b) != `{"type":"string"}` {
		t.Errorf("Expected a bare string schema, got %s", b)
	}
}

func TestMarshalEmitsEnum(t *testing.T) {
	s := MustFor[mood]()
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := `{"type":"string","format":"enum","enum":["HAPPY","NEUTRAL","SAD"]}`
	if string(b) != want {
		t.Errorf("Expected %s, got %s", want, b)
	}
}

func TestMarshalEmitsPositionalItems(t *testing.T) {
	type pair = Tuple[struct {
		Label string
		Count int
	}]
	s := MustFor[pair]()
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, `"items":[{"type":"string"},{"type":"integer"}]`) {
		t.Errorf("Expected positional item schemas, got %s", out)
	}
	if !strings.Contains(out, `"minItems":2`) || !strings.Contains(out, `"maxItems":2`) {
		t.Errorf("Expected fixed bounds, got %s", out)
	}
}

func TestMapSchemaOmitsValueSchemaOnWire(t *testing.T) {
	s := MustFor[map[string]int]()
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := string(b)
	if strings.Contains(out, "properties") || strings.Contains(out, "integer") {
		t.Errorf("Free-form object leaked its value schema: %s", out)
	}
}

func TestFormatCompatibility(t *testing.T) {
	cases := []struct {
		format Format
		typ    Type
		ok     bool
	}{
		{FormatNone, TypeString, true},
		{FormatFloat, TypeNumber, true},
		{FormatDouble, TypeNumber, true},
		{FormatFloat, TypeInteger, false},
		{FormatInt32, TypeInteger, true},
		{FormatInt64, TypeInteger, true},
		{FormatInt32, TypeNumber, false},
		{FormatEnum, TypeString, true},
		{FormatEnum, TypeObject, false},
	}
	for _, c := range cases {
		if got := c.format.CompatibleWith(c.typ); got != c.ok {
			t.Errorf("CompatibleWith(%q, %q) = %v, want %v", c.format, c.typ, got, c.ok)
		}
	}
}

func TestStringRendersIndentedJSON(t *testing.T) {
	s := MustFor[mood]()
	out := s.String()
	if !strings.Contains(out, "\n") {
		t.Errorf("Expected indented output, got %q", out)
	}
}
