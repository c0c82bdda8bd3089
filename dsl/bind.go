package dsl

import (
	"reflect"
	"time"

	sm "github.com/reoring/strictmodel"
)

// Binding projects records of one schema onto a Go struct type T (or *T).
// Compatibility between every schema field and its struct field is checked
// once, at Bind time.
type Binding[T any] struct {
	schema *sm.Schema
	rt     reflect.Type
	ptr    bool
	plan   *structPlan
}

// Bind checks that T can hold every field of s and returns the binding.
// Struct keys resolve via strictmodel.ResolveStructKey; struct fields
// without a schema field are left untouched.
func Bind[T any](s *sm.Schema) (*Binding[T], error) {
	if s == nil {
		return nil, sm.Issues{{Code: sm.CodeInvalidSchema, Message: "Bind requires a schema"}}
	}
	var zero T
	rt := reflect.TypeOf(&zero).Elem()
	ptr := false
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
		ptr = true
	}
	if rt.Kind() != reflect.Struct {
		return nil, sm.Issues{{Code: sm.CodeInvalidSchema, Message: "Bind[T] requires struct T", Actual: rt.String()}}
	}
	pl := &planner{plans: map[planKey]*structPlan{}}
	p, err := pl.structPlan(s, rt, sm.Path{})
	if err != nil {
		return nil, err
	}
	return &Binding[T]{schema: s, rt: rt, ptr: ptr, plan: p}, nil
}

// MustBind is like Bind but panics on error.
func MustBind[T any](s *sm.Schema) *Binding[T] {
	b, err := Bind[T](s)
	if err != nil {
		panic(err)
	}
	return b
}

// Schema returns the bound schema.
func (b *Binding[T]) Schema() *sm.Schema { return b.schema }

// Decode composes raw against the bound schema (dynamic fields resolve
// through the default registry) and projects the record onto T.
func (b *Binding[T]) Decode(raw any, opts ...sm.Options) (T, error) {
	r, err := sm.Compose(raw, b.schema, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return b.FromRecord(r)
}

// DecodeWith is like Decode but builds through f (its registry and options).
func (b *Binding[T]) DecodeWith(f *sm.Factory, raw any) (T, error) {
	r, err := f.BuildAs(raw, b.schema)
	if err != nil {
		var zero T
		return zero, err
	}
	return b.FromRecord(r)
}

// FromRecord projects a record of the bound schema onto T.
func (b *Binding[T]) FromRecord(r *sm.Record) (T, error) {
	var zero T
	if r == nil || r.Schema() != b.schema {
		got := "nil"
		if r != nil {
			got = "record<" + r.Schema().Name() + ">"
		}
		return zero, sm.Issues{{Code: sm.CodeStructureMismatch, Message: "record of another schema", Expected: "record<" + b.schema.Name() + ">", Actual: got}}
	}
	rv := reflect.New(b.rt)
	if err := b.plan.fill(rv.Elem(), r, sm.Path{}); err != nil {
		return zero, err
	}
	if b.ptr {
		return rv.Interface().(T), nil
	}
	return rv.Elem().Interface().(T), nil
}

// Encode validates a typed value by rebuilding it as a record of the bound
// schema. Nil pointers become absent fields; zero values count as present.
func (b *Binding[T]) Encode(v T, opts ...sm.Options) (*sm.Record, error) {
	rv := reflect.ValueOf(&v).Elem()
	if b.ptr {
		if rv.IsNil() {
			return nil, sm.Issues{{Code: sm.CodeStructureMismatch, Message: "nil value", Expected: "record<" + b.schema.Name() + ">", Actual: "null"}}
		}
		rv = rv.Elem()
	}
	return sm.Compose(b.plan.toMap(rv), b.schema, opts...)
}

// ---- planning ----

var (
	recordPtrType = reflect.TypeOf((*sm.Record)(nil))
	timeType      = reflect.TypeOf(time.Time{})
)

type planKey struct {
	s *sm.Schema
	t reflect.Type
}

type planner struct {
	plans map[planKey]*structPlan
}

type structPlan struct {
	schema *sm.Schema
	fields []fieldPlan
}

type fieldPlan struct {
	key   string
	index int
	conv  *conv
}

// conv moves one canonical value into a Go value (assign) and back out
// (extract, ok=false for absent).
type conv struct {
	assign  func(dst reflect.Value, v any, p sm.Path) error
	extract func(src reflect.Value) (any, bool)
}

func bindError(p sm.Path, reason string, t sm.Type, rt reflect.Type) error {
	return sm.Issues{{
		Path:     p,
		Code:     sm.CodeInvalidSchema,
		Message:  "cannot bind: " + reason,
		Expected: t.String(),
		Actual:   rt.String(),
	}}
}

func assignError(p sm.Path, rt reflect.Type, v any) error {
	return sm.Issues{{
		Path:     p,
		Code:     sm.CodeTypeMismatch,
		Message:  "value does not fit " + rt.String(),
		Expected: rt.String(),
		Actual:   reflect.TypeOf(v).String(),
	}}
}

func (pl *planner) structPlan(s *sm.Schema, rt reflect.Type, p sm.Path) (*structPlan, error) {
	key := planKey{s: s, t: rt}
	if sp, ok := pl.plans[key]; ok {
		return sp, nil
	}
	sp := &structPlan{schema: s}
	// registered before filling so recursive schemas terminate
	pl.plans[key] = sp
	idx := make(map[string]int)
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sm.ResolveStructKey(sf)
		if name == "-" || name == "" {
			continue
		}
		idx[name] = i
	}
	for _, f := range s.Fields() {
		fp := p.Field(f.Name)
		i, ok := idx[f.Name]
		if !ok {
			return nil, bindError(fp, "no struct field for key "+f.Name, f.Type, rt)
		}
		cv, err := pl.conv(f.Type, rt.Field(i).Type, fp)
		if err != nil {
			return nil, err
		}
		sp.fields = append(sp.fields, fieldPlan{key: f.Name, index: i, conv: cv})
	}
	return sp, nil
}

func (sp *structPlan) fill(dst reflect.Value, r *sm.Record, p sm.Path) error {
	for _, fp := range sp.fields {
		v, ok := r.Get(fp.key)
		if !ok {
			continue
		}
		if err := fp.conv.assign(dst.Field(fp.index), v, p.Field(fp.key)); err != nil {
			return err
		}
	}
	return nil
}

func (sp *structPlan) toMap(src reflect.Value) map[string]any {
	m := make(map[string]any, len(sp.fields))
	for _, fp := range sp.fields {
		if v, ok := fp.conv.extract(src.Field(fp.index)); ok {
			m[fp.key] = v
		}
	}
	return m
}

func (pl *planner) conv(t sm.Type, rt reflect.Type, p sm.Path) (*conv, error) {
	if rt.Kind() == reflect.Interface {
		if rt.NumMethod() != 0 {
			return nil, bindError(p, "only the empty interface can hold any value", t, rt)
		}
		return anyConv(), nil
	}
	if rt == recordPtrType {
		k := t.Kind()
		if k == sm.KindOptional {
			inner, _ := t.Elem()
			k = inner.Kind()
		}
		if k == sm.KindRecord || k == sm.KindDynamic {
			return recordConv(), nil
		}
		return nil, bindError(p, "*Record holds record types only", t, rt)
	}
	switch t.Kind() {
	case sm.KindOptional:
		inner, _ := t.Elem()
		if rt.Kind() == reflect.Pointer {
			return pl.pointerConv(inner, rt, p)
		}
		return pl.conv(inner, rt, p)
	case sm.KindString, sm.KindInteger, sm.KindFloat, sm.KindBoolean, sm.KindTimestamp:
		return primitiveConv(t, rt, p)
	case sm.KindList:
		if rt.Kind() != reflect.Slice {
			return nil, bindError(p, "list needs a slice", t, rt)
		}
		elem, _ := t.Elem()
		ec, err := pl.conv(elem, rt.Elem(), p.Index(0))
		if err != nil {
			return nil, err
		}
		return sliceConv(rt, func(int) *conv { return ec }), nil
	case sm.KindTuple:
		alts := t.Alternatives()
		switch {
		case rt.Kind() == reflect.Array && rt.Len() != len(alts):
			return nil, bindError(p, "tuple arity differs from array length", t, rt)
		case rt.Kind() != reflect.Array && rt.Kind() != reflect.Slice:
			return nil, bindError(p, "tuple needs a slice or array", t, rt)
		}
		convs := make([]*conv, len(alts))
		for i, a := range alts {
			c, err := pl.conv(a, rt.Elem(), p.Index(i))
			if err != nil {
				return nil, err
			}
			convs[i] = c
		}
		return sliceConv(rt, func(i int) *conv {
			if i >= len(convs) {
				return nil
			}
			return convs[i]
		}), nil
	case sm.KindUnion:
		return pl.unionConv(t, rt, p)
	case sm.KindRecord:
		return pl.recordStructConv(t, rt, p)
	case sm.KindDynamic:
		return nil, bindError(p, "dynamic records bind to *Record or any", t, rt)
	}
	return nil, bindError(p, "unsupported type", t, rt)
}

func anyConv() *conv {
	return &conv{
		assign: func(dst reflect.Value, v any, _ sm.Path) error {
			dst.Set(reflect.ValueOf(v))
			return nil
		},
		extract: func(src reflect.Value) (any, bool) {
			if src.IsNil() {
				return nil, false
			}
			return src.Interface(), true
		},
	}
}

func recordConv() *conv {
	return &conv{
		assign: func(dst reflect.Value, v any, p sm.Path) error {
			r, ok := v.(*sm.Record)
			if !ok {
				return assignError(p, recordPtrType, v)
			}
			dst.Set(reflect.ValueOf(r))
			return nil
		},
		extract: func(src reflect.Value) (any, bool) {
			if src.IsNil() {
				return nil, false
			}
			return src.Interface(), true
		},
	}
}

func (pl *planner) pointerConv(inner sm.Type, rt reflect.Type, p sm.Path) (*conv, error) {
	ic, err := pl.conv(inner, rt.Elem(), p)
	if err != nil {
		return nil, err
	}
	return &conv{
		assign: func(dst reflect.Value, v any, p sm.Path) error {
			nv := reflect.New(rt.Elem())
			if err := ic.assign(nv.Elem(), v, p); err != nil {
				return err
			}
			dst.Set(nv)
			return nil
		},
		extract: func(src reflect.Value) (any, bool) {
			if src.IsNil() {
				return nil, false
			}
			return ic.extract(src.Elem())
		},
	}, nil
}

func primitiveConv(t sm.Type, rt reflect.Type, p sm.Path) (*conv, error) {
	k := rt.Kind()
	switch t.Kind() {
	case sm.KindString:
		if k != reflect.String {
			break
		}
		return &conv{
			assign: func(dst reflect.Value, v any, p sm.Path) error {
				s, ok := v.(string)
				if !ok {
					return assignError(p, rt, v)
				}
				dst.SetString(s)
				return nil
			},
			extract: func(src reflect.Value) (any, bool) { return src.String(), true },
		}, nil
	case sm.KindInteger:
		switch k {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return &conv{
				assign: func(dst reflect.Value, v any, p sm.Path) error {
					n, ok := v.(int64)
					if !ok || dst.OverflowInt(n) {
						return assignError(p, rt, v)
					}
					dst.SetInt(n)
					return nil
				},
				extract: func(src reflect.Value) (any, bool) { return src.Int(), true },
			}, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return &conv{
				assign: func(dst reflect.Value, v any, p sm.Path) error {
					n, ok := v.(int64)
					if !ok || n < 0 || dst.OverflowUint(uint64(n)) {
						return assignError(p, rt, v)
					}
					dst.SetUint(uint64(n))
					return nil
				},
				extract: func(src reflect.Value) (any, bool) { return src.Uint(), true },
			}, nil
		}
	case sm.KindFloat:
		if k != reflect.Float32 && k != reflect.Float64 {
			break
		}
		return &conv{
			assign: func(dst reflect.Value, v any, p sm.Path) error {
				f, ok := v.(float64)
				if !ok || dst.OverflowFloat(f) {
					return assignError(p, rt, v)
				}
				dst.SetFloat(f)
				return nil
			},
			extract: func(src reflect.Value) (any, bool) { return src.Float(), true },
		}, nil
	case sm.KindBoolean:
		if k != reflect.Bool {
			break
		}
		return &conv{
			assign: func(dst reflect.Value, v any, p sm.Path) error {
				b, ok := v.(bool)
				if !ok {
					return assignError(p, rt, v)
				}
				dst.SetBool(b)
				return nil
			},
			extract: func(src reflect.Value) (any, bool) { return src.Bool(), true },
		}, nil
	case sm.KindTimestamp:
		if rt != timeType {
			break
		}
		return &conv{
			assign: func(dst reflect.Value, v any, p sm.Path) error {
				ts, ok := v.(time.Time)
				if !ok {
					return assignError(p, rt, v)
				}
				dst.Set(reflect.ValueOf(ts))
				return nil
			},
			extract: func(src reflect.Value) (any, bool) { return src.Interface(), true },
		}, nil
	}
	return nil, bindError(p, "incompatible Go type", t, rt)
}

// sliceConv handles lists (one element conv) and tuples (one per position).
// at returns nil past a tuple's arity; extract passes such elements through
// unconverted so composition reports the arity mismatch.
func sliceConv(rt reflect.Type, at func(i int) *conv) *conv {
	return &conv{
		assign: func(dst reflect.Value, v any, p sm.Path) error {
			items, ok := v.([]any)
			if !ok {
				return assignError(p, rt, v)
			}
			out := dst
			if rt.Kind() == reflect.Slice {
				out = reflect.MakeSlice(rt, len(items), len(items))
			}
			for i, it := range items {
				if it == nil {
					continue
				}
				c := at(i)
				if c == nil || i >= out.Len() {
					return assignError(p, rt, v)
				}
				if err := c.assign(out.Index(i), it, p.Index(i)); err != nil {
					return err
				}
			}
			if rt.Kind() == reflect.Slice {
				dst.Set(out)
			}
			return nil
		},
		extract: func(src reflect.Value) (any, bool) {
			out := make([]any, src.Len())
			for i := range out {
				c := at(i)
				if c == nil {
					out[i] = src.Index(i).Interface()
					continue
				}
				if v, ok := c.extract(src.Index(i)); ok {
					out[i] = v
				}
			}
			return out, true
		},
	}
}

// unionConv binds a union to a concrete Go type when at least one
// alternative fits it; assignment tries the fitting alternatives in order.
func (pl *planner) unionConv(t sm.Type, rt reflect.Type, p sm.Path) (*conv, error) {
	var fits []*conv
	for _, a := range t.Alternatives() {
		if c, err := pl.conv(a, rt, p); err == nil {
			fits = append(fits, c)
		}
	}
	if len(fits) == 0 {
		return nil, bindError(p, "no union alternative fits", t, rt)
	}
	return &conv{
		assign: func(dst reflect.Value, v any, p sm.Path) error {
			var err error
			for _, c := range fits {
				if err = c.assign(dst, v, p); err == nil {
					return nil
				}
			}
			return err
		},
		extract: fits[0].extract,
	}, nil
}

func (pl *planner) recordStructConv(t sm.Type, rt reflect.Type, p sm.Path) (*conv, error) {
	s := t.Schema()
	if s == nil {
		return nil, bindError(p, "record type without schema", t, rt)
	}
	st, isPtr := rt, false
	if rt.Kind() == reflect.Pointer {
		st, isPtr = rt.Elem(), true
	}
	if st.Kind() != reflect.Struct {
		return nil, bindError(p, "record needs a struct", t, rt)
	}
	sp, err := pl.structPlan(s, st, p)
	if err != nil {
		return nil, err
	}
	return &conv{
		assign: func(dst reflect.Value, v any, p sm.Path) error {
			r, ok := v.(*sm.Record)
			if !ok {
				return assignError(p, rt, v)
			}
			target := dst
			if isPtr {
				target = reflect.New(st).Elem()
			}
			if err := sp.fill(target, r, p); err != nil {
				return err
			}
			if isPtr {
				dst.Set(target.Addr())
			}
			return nil
		},
		extract: func(src reflect.Value) (any, bool) {
			if isPtr {
				if src.IsNil() {
					return nil, false
				}
				src = src.Elem()
			}
			return sp.toMap(src), true
		},
	}, nil
}
