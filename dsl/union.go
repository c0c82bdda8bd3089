package dsl

import (
	sm "github.com/reoring/strictmodel"
)

// UnionVariant binds a discriminator value to a schema.
type UnionVariant struct {
	name   string
	schema *sm.Schema
}

// Variant constructs a UnionVariant.
func Variant(name string, s *sm.Schema) UnionVariant {
	return UnionVariant{name: name, schema: s}
}

// DiscriminatedBuilder declares a discriminated family of schemas and builds
// the registry that dispatches on it.
type DiscriminatedBuilder struct {
	opts     sm.Options
	variants []UnionVariant
}

// Discriminated starts a family keyed by the given input field.
func Discriminated(field string) *DiscriminatedBuilder {
	return &DiscriminatedBuilder{opts: sm.Options{DiscriminatorField: field}}
}

// WithOptions sets registry options (OverwriteOnRegister, Logger). The
// discriminator field given to Discriminated is kept.
func (b *DiscriminatedBuilder) WithOptions(o sm.Options) *DiscriminatedBuilder {
	o.DiscriminatorField = b.opts.DiscriminatorField
	b.opts = o
	return b
}

// OneOf adds variants in order.
func (b *DiscriminatedBuilder) OneOf(vars ...UnionVariant) *DiscriminatedBuilder {
	b.variants = append(b.variants, vars...)
	return b
}

// Build registers every variant in a new registry and seals it. All
// registration failures are reported together.
func (b *DiscriminatedBuilder) Build() (*sm.Registry, error) {
	reg := sm.NewRegistry(b.opts)
	var iss sm.Issues
	for _, v := range b.variants {
		if err := reg.Register(v.name, v.schema); err != nil {
			if more, ok := sm.AsIssues(err); ok {
				iss = sm.AppendIssues(iss, more...)
				continue
			}
			return nil, err
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	reg.Seal()
	return reg, nil
}

// MustBuild is like Build but panics on error.
func (b *DiscriminatedBuilder) MustBuild() *sm.Registry {
	reg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return reg
}
