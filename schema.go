package strictmodel

import "fmt"

// MaxSchemaDepth bounds eager record nesting in a declaration.
const MaxSchemaDepth = 64

// Field is one declared field of a Schema. A field is required unless its
// type is Optional (or a Union with an Optional alternative).
type Field struct {
	Name string
	Type Type
}

// Required reports whether the field must be present in the input.
func (f Field) Required() bool { return !f.Type.IsOptional() }

// Rule is a record-level check run after construction and after every
// accepted Set. Returning Issues places them relative to the record; any
// other error becomes a rule_violation at the record root.
type Rule struct {
	Name  string
	Check func(r *Record) error
}

// Schema is an immutable record declaration: an ordered field set plus
// optional record-level rules.
type Schema struct {
	name   string
	fields []Field
	index  map[string]int
	rules  []Rule
	depth  int
}

// NewSchema validates and returns a schema declaration.
func NewSchema(name string, fields []Field, rules ...Rule) (*Schema, error) {
	root := Path{}
	if name == "" {
		return nil, Issues{invalidSchema(root, "empty schema name")}
	}
	s := &Schema{
		name:   name,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
		depth:  1,
	}
	var iss Issues
	for _, f := range fields {
		p := root.Field(f.Name)
		if f.Name == "" {
			iss = AppendIssues(iss, invalidSchema(p, "empty field name"))
			continue
		}
		if _, dup := s.index[f.Name]; dup {
			iss = AppendIssues(iss, invalidSchema(p, "duplicate field "+f.Name))
			continue
		}
		d, err := checkType(f.Type, p, false)
		if err != nil {
			iss = AppendIssues(iss, *err)
			continue
		}
		s.depth = max(s.depth, d+1)
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	if s.depth > MaxSchemaDepth {
		iss = AppendIssues(iss, invalidSchema(root, fmt.Sprintf("nesting depth %d exceeds %d", s.depth, MaxSchemaDepth)))
	}
	for _, r := range rules {
		if r.Check == nil {
			iss = AppendIssues(iss, invalidSchema(root, "rule "+r.Name+" has no check"))
			continue
		}
		s.rules = append(s.rules, r)
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(name string, fields []Field, rules ...Rule) *Schema {
	s, err := NewSchema(name, fields, rules...)
	if err != nil {
		panic(err)
	}
	return s
}

func invalidSchema(p Path, reason string) Issue {
	it := IssueAt(p, CodeInvalidSchema, nil)
	it.Message += ": " + reason
	return it
}

// checkType validates a field type and returns the eager record depth below
// it. guarded is true once an Optional or List boundary has been crossed.
func checkType(t Type, p Path, guarded bool) (int, *Issue) {
	fail := func(reason string) (int, *Issue) {
		it := invalidSchema(p, reason)
		return 0, &it
	}
	switch t.kind {
	case KindString, KindInteger, KindFloat, KindBoolean, KindTimestamp, KindDynamic:
		return 0, nil
	case KindOptional, KindList:
		if len(t.elems) != 1 {
			return fail(t.kind.String() + " without element type")
		}
		return checkType(t.elems[0], p, true)
	case KindUnion, KindTuple:
		if t.kind == KindUnion && len(t.elems) == 0 {
			return fail("union without alternatives")
		}
		depth := 0
		for _, e := range t.elems {
			d, err := checkType(e, p, guarded)
			if err != nil {
				return 0, err
			}
			depth = max(depth, d)
		}
		return depth, nil
	case KindRecord:
		if t.schema != nil {
			return t.schema.depth, nil
		}
		if t.lazy == nil {
			return fail("record type without schema")
		}
		if !guarded {
			return fail("lazy record reference must be wrapped in optional or list")
		}
		return 0, nil
	default:
		return fail("invalid type")
	}
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fields returns the declared fields in declaration order.
func (s *Schema) Fields() []Field { return append([]Field(nil), s.fields...) }

// Field looks up a declared field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Len returns the number of declared fields.
func (s *Schema) Len() int { return len(s.fields) }

// Rules returns the record-level rule names in declaration order.
func (s *Schema) Rules() []string {
	out := make([]string, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.Name
	}
	return out
}

func (s *Schema) String() string { return "schema " + s.name }
