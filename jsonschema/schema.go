package jsonschema

import (
	"fmt"

	sm "github.com/reoring/strictmodel"
)

// Draft is the dialect emitted by FromSchema.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	// Core
	SchemaURI   string `json:"$schema,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	Format      string `json:"format,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`

	// Array
	Items       *Schema   `json:"items,omitempty"`
	PrefixItems []*Schema `json:"prefixItems,omitempty"`
	MinItems    *int      `json:"minItems,omitempty"`
	MaxItems    *int      `json:"maxItems,omitempty"`

	// Union
	AnyOf []*Schema `json:"anyOf,omitempty"`

	Defs map[string]*Schema `json:"$defs,omitempty"`
}

// FromSchema exports a record schema. Every record type reachable from s
// (s included) becomes an entry of $defs keyed by schema name and is
// referenced with $ref, so recursive declarations terminate. Records are
// closed (additionalProperties: false); optional values admit null.
func FromSchema(s *sm.Schema) (*Schema, error) {
	if s == nil {
		return nil, fmt.Errorf("jsonschema: nil schema")
	}
	x := &exporter{defs: map[string]*Schema{}, seen: map[string]*sm.Schema{}}
	if err := x.define(s); err != nil {
		return nil, err
	}
	return &Schema{
		SchemaURI: Draft,
		Ref:       refTo(s),
		Defs:      x.defs,
	}, nil
}

type exporter struct {
	defs map[string]*Schema
	seen map[string]*sm.Schema
}

func refTo(s *sm.Schema) string { return "#/$defs/" + s.Name() }

func (x *exporter) define(s *sm.Schema) error {
	if prev, ok := x.seen[s.Name()]; ok {
		if prev != s {
			return fmt.Errorf("jsonschema: two schemas named %q", s.Name())
		}
		return nil
	}
	x.seen[s.Name()] = s
	closed := false
	out := &Schema{
		Title:                s.Name(),
		Type:                 "object",
		Properties:           map[string]*Schema{},
		AdditionalProperties: &closed,
	}
	x.defs[s.Name()] = out
	for _, f := range s.Fields() {
		p, err := x.typeOf(f.Type)
		if err != nil {
			return fmt.Errorf("jsonschema: %s.%s: %w", s.Name(), f.Name, err)
		}
		out.Properties[f.Name] = p
		if f.Required() {
			out.Required = append(out.Required, f.Name)
		}
	}
	if rules := s.Rules(); len(rules) > 0 {
		out.Description = fmt.Sprintf("record rules: %v", rules)
	}
	return nil
}

func (x *exporter) typeOf(t sm.Type) (*Schema, error) {
	switch t.Kind() {
	case sm.KindString:
		return &Schema{Type: "string"}, nil
	case sm.KindInteger:
		return &Schema{Type: "integer"}, nil
	case sm.KindFloat:
		return &Schema{Type: "number"}, nil
	case sm.KindBoolean:
		return &Schema{Type: "boolean"}, nil
	case sm.KindTimestamp:
		return &Schema{Type: "string", Format: "date-time"}, nil
	case sm.KindOptional:
		inner, _ := t.Elem()
		s, err := x.typeOf(inner)
		if err != nil {
			return nil, err
		}
		return &Schema{AnyOf: []*Schema{s, {Type: "null"}}}, nil
	case sm.KindUnion:
		out := &Schema{}
		for _, a := range t.Alternatives() {
			s, err := x.typeOf(a)
			if err != nil {
				return nil, err
			}
			out.AnyOf = append(out.AnyOf, s)
		}
		return out, nil
	case sm.KindList:
		elem, _ := t.Elem()
		s, err := x.typeOf(elem)
		if err != nil {
			return nil, err
		}
		return &Schema{Type: "array", Items: s}, nil
	case sm.KindTuple:
		alts := t.Alternatives()
		n := len(alts)
		out := &Schema{Type: "array", MinItems: &n, MaxItems: &n}
		for _, a := range alts {
			s, err := x.typeOf(a)
			if err != nil {
				return nil, err
			}
			out.PrefixItems = append(out.PrefixItems, s)
		}
		return out, nil
	case sm.KindRecord:
		rs := t.Schema()
		if rs == nil {
			return nil, fmt.Errorf("record type without schema")
		}
		if err := x.define(rs); err != nil {
			return nil, err
		}
		return &Schema{Ref: refTo(rs)}, nil
	case sm.KindDynamic:
		return &Schema{Type: "object"}, nil
	}
	return nil, fmt.Errorf("unsupported type %s", t)
}
