package dsl

import (
	sm "github.com/reoring/strictmodel"
)

// ObjectBuilder declares a record schema field by field.
type ObjectBuilder struct {
	name   string
	fields []sm.Field
	index  map[string]int
	rules  []sm.Rule
	errs   sm.Issues
}

// FieldStep refines the field most recently added with Field.
type FieldStep struct {
	b *ObjectBuilder
	i int
}

// Object creates a new builder for a schema named name. Fields are required
// unless marked Optional.
func Object(name string) *ObjectBuilder {
	return &ObjectBuilder{name: name, index: map[string]int{}}
}

// Field declares a field. Declaring the same name again replaces the type
// but keeps the original position.
func (b *ObjectBuilder) Field(name string, t sm.Type) *FieldStep {
	if i, ok := b.index[name]; ok {
		b.fields[i].Type = t
		return &FieldStep{b: b, i: i}
	}
	b.index[name] = len(b.fields)
	b.fields = append(b.fields, sm.Field{Name: name, Type: t})
	return &FieldStep{b: b, i: len(b.fields) - 1}
}

// Required marks the field as required, unwrapping an Optional type.
func (f *FieldStep) Required() *ObjectBuilder {
	t := f.b.fields[f.i].Type
	if t.Kind() == sm.KindOptional {
		inner, _ := t.Elem()
		f.b.fields[f.i].Type = inner
	}
	return f.b
}

// Optional wraps the field type in Optional.
func (f *FieldStep) Optional() *ObjectBuilder {
	f.b.fields[f.i].Type = sm.Optional(f.b.fields[f.i].Type)
	return f.b
}

// Forward helpers to keep chaining ergonomics.
func (f *FieldStep) Field(name string, t sm.Type) *FieldStep { return f.b.Field(name, t) }
func (f *FieldStep) Rule(name string, fn func(*sm.Record) error) *ObjectBuilder {
	return f.b.Rule(name, fn)
}
func (f *FieldStep) Expr(name, src string) *ObjectBuilder { return f.b.Expr(name, src) }
func (f *FieldStep) Require(names ...string) *ObjectBuilder {
	return f.b.Require(names...)
}
func (f *FieldStep) Build() (*sm.Schema, error) { return f.b.Build() }
func (f *FieldStep) MustBuild() *sm.Schema      { return f.b.MustBuild() }

// Require marks one or more already declared fields as required.
func (b *ObjectBuilder) Require(names ...string) *ObjectBuilder {
	for _, n := range names {
		if i, ok := b.index[n]; ok {
			(&FieldStep{b: b, i: i}).Required()
		}
	}
	return b
}

// Rule adds a record-level rule. It runs after construction and after every
// accepted Set.
func (b *ObjectBuilder) Rule(name string, fn func(*sm.Record) error) *ObjectBuilder {
	if fn == nil {
		return b
	}
	b.rules = append(b.rules, sm.Rule{Name: name, Check: fn})
	return b
}

// Build validates the declaration and returns the schema.
func (b *ObjectBuilder) Build() (*sm.Schema, error) {
	s, err := sm.NewSchema(b.name, b.fields, b.rules...)
	if len(b.errs) > 0 {
		iss := append(sm.Issues{}, b.errs...)
		if more, ok := sm.AsIssues(err); ok {
			iss = append(iss, more...)
		}
		return nil, iss
	}
	return s, err
}

// MustBuild is like Build but panics on error.
func (b *ObjectBuilder) MustBuild() *sm.Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
