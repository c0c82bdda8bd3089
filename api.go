package strictmodel

import "strconv"

// Factory is the public entry point: it resolves the target schema, drives
// composition and returns typed records. Its success types are *Record and
// []*Record only; there is no path that hands back a generic map.
type Factory struct {
	reg  *Registry
	opts Options
}

// NewFactory returns a factory over reg (DefaultRegistry when nil) using the
// last Options, or DefaultOptions when none are given.
func NewFactory(reg *Registry, opts ...Options) *Factory {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Factory{reg: reg, opts: pickOptions(opts)}
}

// With returns a copy of the factory using o.
func (f *Factory) With(o Options) *Factory {
	cp := *f
	cp.opts = o
	return &cp
}

// Options returns the factory's options.
func (f *Factory) Options() Options { return f.opts }

// Registry returns the factory's registry.
func (f *Factory) Registry() *Registry { return f.reg }

// Build resolves the target schema from the input's discriminator field and
// composes a record of it.
func (f *Factory) Build(raw any) (*Record, error) {
	c := newComposer(f.opts, f.reg)
	r, ok := c.dynamicRecord(raw, Path{})
	if !ok {
		return nil, c.issues
	}
	return r, nil
}

// BuildAs composes raw against an explicit target schema.
func (f *Factory) BuildAs(raw any, target *Schema) (*Record, error) {
	return composeWith(raw, target, f.opts, f.reg)
}

// BuildKey composes raw against the schema registered under key.
func (f *Factory) BuildKey(raw any, key string) (*Record, error) {
	s, err := f.reg.Resolve(key)
	if err != nil {
		return nil, err
	}
	return f.BuildAs(raw, s)
}

// BuildList composes every element of an ordered sequence. A nil target
// resolves each element by shape.
func (f *Factory) BuildList(raw any, target *Schema) ([]*Record, error) {
	items, ok := asSequence(raw)
	if !ok {
		return nil, Issues{mismatch(Path{}, CodeStructureMismatch, "list", describe(raw))}
	}
	targets := make([]*Schema, len(items))
	for i := range targets {
		targets[i] = target
	}
	return f.buildEach(items, targets)
}

// BuildTuple composes a fixed-arity sequence, one target per position. A nil
// target resolves that position by shape. A length mismatch always fails
// with arity_mismatch.
func (f *Factory) BuildTuple(raw any, targets ...*Schema) ([]*Record, error) {
	items, ok := asSequence(raw)
	if !ok {
		return nil, Issues{mismatch(Path{}, CodeStructureMismatch, "tuple", describe(raw))}
	}
	if len(items) != len(targets) {
		return nil, Issues{mismatch(Path{}, CodeArityMismatch, strconv.Itoa(len(targets)), strconv.Itoa(len(items)))}
	}
	return f.buildEach(items, targets)
}

func (f *Factory) buildEach(items []any, targets []*Schema) ([]*Record, error) {
	c := newComposer(f.opts, f.reg)
	out := make([]*Record, len(items))
	for i, it := range items {
		p := Path{}.Index(i)
		var (
			r  *Record
			ok bool
		)
		if targets[i] == nil {
			r, ok = c.dynamicRecord(it, p)
		} else {
			r, ok = c.record(it, targets[i], p, 0, "", "")
		}
		if !ok {
			if c.halted() {
				return nil, c.issues
			}
			continue
		}
		out[i] = r
	}
	if len(c.issues) > 0 {
		return nil, c.issues
	}
	return out, nil
}

// dynamicRecord resolves raw by shape and composes it.
func (c *composer) dynamicRecord(raw any, path Path) (*Record, bool) {
	v, ok := c.dynamic(raw, path, 0)
	if !ok {
		return nil, false
	}
	return v.(*Record), true
}

// Build is the package-level factory entry point over DefaultRegistry. A nil
// target resolves the schema by shape.
func Build(raw any, target *Schema, opts ...Options) (*Record, error) {
	f := NewFactory(nil, opts...)
	if target == nil {
		return f.Build(raw)
	}
	return f.BuildAs(raw, target)
}
