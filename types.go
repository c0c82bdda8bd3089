package strictmodel

import "strings"

// Kind enumerates the shapes a declared field type can take.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindTimestamp
	KindOptional
	KindUnion
	KindList
	KindTuple
	KindRecord  // Nested schema, static (Ref) or deferred (Lazy).
	KindDynamic // Nested record resolved through the registry.
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindString:    "string",
	KindInteger:   "integer",
	KindFloat:     "float",
	KindBoolean:   "boolean",
	KindTimestamp: "timestamp",
	KindOptional:  "optional",
	KindUnion:     "union",
	KindList:      "list",
	KindTuple:     "tuple",
	KindRecord:    "record",
	KindDynamic:   "dynamic",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// IsPrimitive reports whether k is a leaf kind handled by primitive coercion.
func (k Kind) IsPrimitive() bool { return k >= KindString && k <= KindTimestamp }

// Type is an immutable field type descriptor. Build values with the
// constructors below; the zero Type is invalid.
type Type struct {
	kind   Kind
	elems  []Type // optional/list: one element; union/tuple: alternatives/positions
	schema *Schema
	lazy   func() *Schema
}

func String() Type    { return Type{kind: KindString} }
func Integer() Type   { return Type{kind: KindInteger} }
func Float() Type     { return Type{kind: KindFloat} }
func Boolean() Type   { return Type{kind: KindBoolean} }
func Timestamp() Type { return Type{kind: KindTimestamp} }

// Optional accepts absence (or an explicit null) in addition to t.
// Optional(Optional(t)) collapses to Optional(t).
func Optional(t Type) Type {
	if t.kind == KindOptional {
		return t
	}
	return Type{kind: KindOptional, elems: []Type{t}}
}

// Union tries each alternative in declaration order; the first one that
// coerces wins.
func Union(alts ...Type) Type {
	return Type{kind: KindUnion, elems: append([]Type(nil), alts...)}
}

// List is an ordered, homogeneous sequence of elem.
func List(elem Type) Type { return Type{kind: KindList, elems: []Type{elem}} }

// Tuple is a fixed-arity sequence with one type per position.
func Tuple(elems ...Type) Type {
	return Type{kind: KindTuple, elems: append([]Type(nil), elems...)}
}

// Ref nests a record of schema s.
func Ref(s *Schema) Type { return Type{kind: KindRecord, schema: s} }

// Lazy nests a record whose schema is produced on first use. It allows
// recursive declarations and must sit behind an Optional or List.
func Lazy(fn func() *Schema) Type { return Type{kind: KindRecord, lazy: fn} }

// Dynamic nests a record whose schema is selected by the discriminator field
// of the nested input, through the registry.
func Dynamic() Type { return Type{kind: KindDynamic} }

// Kind returns the type's kind.
func (t Type) Kind() Kind { return t.kind }

// Elem returns the wrapped type of an Optional or List.
func (t Type) Elem() (Type, bool) {
	if (t.kind == KindOptional || t.kind == KindList) && len(t.elems) == 1 {
		return t.elems[0], true
	}
	return Type{}, false
}

// Alternatives returns union alternatives or tuple positions.
func (t Type) Alternatives() []Type {
	if t.kind != KindUnion && t.kind != KindTuple {
		return nil
	}
	return append([]Type(nil), t.elems...)
}

// Schema returns the nested schema of a record type, resolving Lazy.
func (t Type) Schema() *Schema {
	if t.kind != KindRecord {
		return nil
	}
	if t.schema != nil {
		return t.schema
	}
	if t.lazy != nil {
		return t.lazy()
	}
	return nil
}

// IsOptional reports whether absence is acceptable for t.
func (t Type) IsOptional() bool {
	switch t.kind {
	case KindOptional:
		return true
	case KindUnion:
		for _, a := range t.elems {
			if a.IsOptional() {
				return true
			}
		}
	}
	return false
}

// String renders a compact description, e.g. "list<optional<integer>>".
func (t Type) String() string {
	switch t.kind {
	case KindOptional, KindList:
		return t.kind.String() + "<" + t.elems[0].String() + ">"
	case KindUnion:
		return t.kind.String() + "<" + joinTypes(t.elems, "|") + ">"
	case KindTuple:
		return t.kind.String() + "<" + joinTypes(t.elems, ",") + ">"
	case KindRecord:
		if t.schema != nil {
			return "record<" + t.schema.Name() + ">"
		}
		return "record<lazy>"
	default:
		return t.kind.String()
	}
}

func joinTypes(ts []Type, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}
