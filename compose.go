package strictmodel

import (
	"reflect"
	"strconv"
)

// composer walks an input tree against declared types. It is created per
// call and never shared.
type composer struct {
	opts   Options
	reg    *Registry // nil = DefaultRegistry()
	issues Issues
}

func newComposer(o Options, reg *Registry) *composer { return &composer{opts: o, reg: reg} }

// Compose builds a record of schema s from raw. Dynamic nested fields
// resolve through DefaultRegistry.
func Compose(raw any, s *Schema, opts ...Options) (*Record, error) {
	return composeWith(raw, s, pickOptions(opts), nil)
}

func composeWith(raw any, s *Schema, o Options, reg *Registry) (*Record, error) {
	if s == nil {
		return nil, singleIssue(Path{}, CodeInvalidSchema, nil)
	}
	c := newComposer(o, reg)
	r, ok := c.record(raw, s, Path{}, 0, "", "")
	if !ok {
		return nil, c.issues
	}
	return r, nil
}

func (c *composer) registry() *Registry {
	if c.reg != nil {
		return c.reg
	}
	return DefaultRegistry()
}

func (c *composer) add(iss ...Issue) { c.issues = AppendIssues(c.issues, iss...) }

// halted reports whether fail-fast mode has recorded an issue.
func (c *composer) halted() bool { return !c.opts.CollectAllErrors && len(c.issues) > 0 }

func (c *composer) tooDeep(path Path, depth int) bool {
	if c.opts.MaxDepth <= 0 || depth <= c.opts.MaxDepth {
		return false
	}
	it := mismatch(path, CodeStructureMismatch, "depth <= "+strconv.Itoa(c.opts.MaxDepth), "depth "+strconv.Itoa(depth))
	c.add(it)
	return true
}

// record composes a keyed input into a record of s. tagField/tagValue name
// the discriminator consumed by shape resolution; the key is exempt from the
// closed-world check unless s declares it.
func (c *composer) record(raw any, s *Schema, path Path, depth int, tagField, tagValue string) (*Record, bool) {
	if c.tooDeep(path, depth) {
		return nil, false
	}
	src, ok := asKeyed(raw)
	if !ok {
		c.add(mismatch(path, CodeStructureMismatch, "record<"+s.name+">", describe(raw)))
		return nil, false
	}
	before := len(c.issues)
	skip := tagField
	if _, declared := s.index[tagField]; declared {
		skip = ""
	}
	if iss := s.checkClosed(src, path, skip); len(iss) > 0 {
		if !c.opts.CollectAllErrors {
			c.add(iss[0])
			return nil, false
		}
		c.add(iss...)
	}
	values := make([]any, len(s.fields))
	presence := make([]Presence, len(s.fields))
	for i, f := range s.fields {
		fp := path.Field(f.Name)
		rv, exists := src[f.Name]
		if !exists {
			if f.Required() {
				c.add(IssueAt(fp, CodeMissingRequiredField, map[string]string{"expected": f.Type.String()}))
			}
		} else {
			presence[i] = PresenceSeen
			if rv == nil {
				presence[i] |= PresenceWasNull
			}
			if v, ok := c.value(rv, f.Type, fp, depth+1); ok {
				values[i] = v
			}
		}
		if c.halted() {
			return nil, false
		}
	}
	if len(c.issues) > before {
		return nil, false
	}
	r, iss := construct(s, values, presence, c.opts, c.reg, path)
	if len(iss) > 0 {
		c.add(iss...)
		return nil, false
	}
	r.tagField, r.tagValue = tagField, tagValue
	return r, true
}

// value coerces raw against t. A nil value with ok=true means "absent" and is
// only produced for optional types.
func (c *composer) value(raw any, t Type, path Path, depth int) (any, bool) {
	if raw == nil {
		if t.IsOptional() {
			return nil, true
		}
		c.add(IssueAt(path, CodeMissingRequiredField, map[string]string{"expected": t.String()}))
		return nil, false
	}
	switch t.kind {
	case KindOptional:
		return c.value(raw, t.elems[0], path, depth)
	case KindUnion:
		return c.union(raw, t, path, depth)
	case KindList:
		return c.list(raw, t, path, depth)
	case KindTuple:
		return c.tuple(raw, t, path, depth)
	case KindRecord:
		s := t.Schema()
		if s == nil {
			c.add(mismatch(path, CodeInvalidSchema, t.String(), "nil schema"))
			return nil, false
		}
		return c.record(raw, s, path, depth, "", "")
	case KindDynamic:
		return c.dynamic(raw, path, depth)
	default:
		if !t.kind.IsPrimitive() {
			c.add(mismatch(path, CodeInvalidSchema, t.String(), describe(raw)))
			return nil, false
		}
		v, ok := coercePrimitive(raw, t.kind, c.opts)
		if !ok {
			c.add(mismatch(path, CodeTypeMismatch, t.String(), describe(raw)))
			return nil, false
		}
		return v, true
	}
}

// union applies first-match: alternatives are tried in declaration order
// with a fail-fast child walk and the first success wins.
func (c *composer) union(raw any, t Type, path Path, depth int) (any, bool) {
	tried := make([]string, 0, len(t.elems))
	var attempts Issues
	for _, alt := range t.elems {
		child := newComposer(c.opts, c.reg)
		child.opts.CollectAllErrors = false
		if v, ok := child.value(raw, alt, path, depth); ok {
			return v, true
		}
		tried = append(tried, alt.String())
		attempts = AppendIssues(attempts, child.issues...)
	}
	it := mismatch(path, CodeTypeMismatch, t.String(), describe(raw))
	it.Alternatives = tried
	it.Cause = attempts
	c.add(it)
	return nil, false
}

func (c *composer) list(raw any, t Type, path Path, depth int) (any, bool) {
	if c.tooDeep(path, depth) {
		return nil, false
	}
	items, ok := asSequence(raw)
	if !ok {
		c.add(mismatch(path, CodeStructureMismatch, t.String(), describe(raw)))
		return nil, false
	}
	out := make([]any, len(items))
	failed := false
	for i, e := range items {
		v, ok := c.value(e, t.elems[0], path.Index(i), depth+1)
		if !ok {
			failed = true
			if c.halted() {
				return nil, false
			}
			continue
		}
		out[i] = v
	}
	return out, !failed
}

func (c *composer) tuple(raw any, t Type, path Path, depth int) (any, bool) {
	if c.tooDeep(path, depth) {
		return nil, false
	}
	items, ok := asSequence(raw)
	if !ok {
		c.add(mismatch(path, CodeStructureMismatch, t.String(), describe(raw)))
		return nil, false
	}
	if len(items) != len(t.elems) {
		c.add(mismatch(path, CodeArityMismatch, strconv.Itoa(len(t.elems)), strconv.Itoa(len(items))))
		return nil, false
	}
	out := make([]any, len(items))
	failed := false
	for i, e := range items {
		v, ok := c.value(e, t.elems[i], path.Index(i), depth+1)
		if !ok {
			failed = true
			if c.halted() {
				return nil, false
			}
			continue
		}
		out[i] = v
	}
	return out, !failed
}

func (c *composer) dynamic(raw any, path Path, depth int) (any, bool) {
	if r, ok := raw.(*Record); ok && r != nil {
		raw = r.toMap(true, false)
	}
	reg := c.registry()
	field := reg.discriminatorFor(c.opts)
	e, iss := reg.resolveShape(raw, field, path)
	if len(iss) > 0 {
		c.add(iss...)
		return nil, false
	}
	return e.build(c, raw, path, depth, field)
}

// asKeyed accepts keyed structures: map[string]any, other string-keyed maps,
// and existing records (re-validated through their serialized form).
func asKeyed(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case *Record:
		if m == nil {
			return nil, false
		}
		return m.toMap(false, false), true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// asSequence accepts []any and any other slice or array.
func asSequence(raw any) ([]any, bool) {
	if l, ok := raw.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
