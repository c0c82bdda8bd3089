package strictmodel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/strictmodel/codec"
	"github.com/reoring/strictmodel/i18n"
)

// Record is a closed-world instance of exactly one Schema. Records are only
// produced by the composer; every field value has the canonical
// representation of its declared type and absent fields hold nothing.
type Record struct {
	schema   *Schema
	values   []any // by declaration index; nil = absent
	presence []Presence
	frozen   bool
	opts     Options
	reg      *Registry
	// discriminator that selected the schema, when resolved by shape
	tagField string
	tagValue string
}

// construct finalizes a record from coerced values and runs record rules.
func construct(s *Schema, values []any, presence []Presence, o Options, reg *Registry, path Path) (*Record, Issues) {
	r := &Record{
		schema:   s,
		values:   values,
		presence: presence,
		frozen:   o.Frozen,
		opts:     o,
		reg:      reg,
	}
	if iss := r.runRules(path); len(iss) > 0 {
		return nil, iss
	}
	return r, nil
}

// checkClosed reports every input key that the schema does not declare,
// in key-sorted order. skip names a key that is exempt (the discriminator
// consumed by shape resolution).
func (s *Schema) checkClosed(src map[string]any, path Path, skip string) Issues {
	var unknown []string
	for k := range src {
		if _, known := s.index[k]; known || (skip != "" && k == skip) {
			continue
		}
		unknown = append(unknown, k)
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	iss := make(Issues, 0, len(unknown))
	for _, k := range unknown {
		iss = append(iss, IssueAt(path.Field(k), CodeUnknownField, map[string]string{"key": k}))
	}
	return iss
}

func (r *Record) runRules(path Path) Issues {
	var iss Issues
	if r.schema == nil {
		return nil
	}
	for _, rule := range r.schema.rules {
		err := rule.Check(r)
		if err == nil {
			continue
		}
		if child, ok := AsIssues(err); ok {
			for _, it := range child.rebase(path) {
				if it.Rule == "" {
					it.Rule = rule.Name
				}
				iss = AppendIssues(iss, it)
			}
		} else {
			iss = AppendIssues(iss, Issue{
				Path:    path,
				Code:    CodeRuleViolation,
				Message: i18n.T(CodeRuleViolation, map[string]string{"rule": rule.Name}) + ": " + err.Error(),
				Rule:    rule.Name,
				Cause:   err,
			})
		}
		if !r.opts.CollectAllErrors {
			return iss
		}
	}
	return iss
}

// Schema returns the record's schema.
func (r *Record) Schema() *Schema { return r.schema }

// Frozen reports whether the record rejects mutation.
func (r *Record) Frozen() bool { return r.frozen }

// Discriminator returns the field and value that selected this record's
// schema during shape-based resolution (ok=false when the schema was
// supplied explicitly).
func (r *Record) Discriminator() (field, value string, ok bool) {
	return r.tagField, r.tagValue, r.tagField != ""
}

// fieldIndex looks up a declared field. A zero Record has no schema and no
// fields.
func (r *Record) fieldIndex(name string) (int, bool) {
	if r.schema == nil {
		return 0, false
	}
	i, ok := r.schema.index[name]
	return i, ok
}

// Has reports whether the named field holds a value.
func (r *Record) Has(name string) bool {
	i, ok := r.fieldIndex(name)
	return ok && r.values[i] != nil
}

// Get returns the canonical value of a field. Lists and tuples are returned
// as copies.
func (r *Record) Get(name string) (any, bool) {
	i, ok := r.fieldIndex(name)
	if !ok || r.values[i] == nil {
		return nil, false
	}
	return copyValue(r.values[i]), true
}

// Presence returns how the field appeared in the input.
func (r *Record) Presence(name string) Presence {
	i, ok := r.fieldIndex(name)
	if !ok {
		return 0
	}
	return r.presence[i]
}

// Fields returns the names of the fields holding values, in declaration
// order.
func (r *Record) Fields() []string {
	out := make([]string, 0, len(r.values))
	for i, v := range r.values {
		if v != nil {
			out = append(out, r.schema.fields[i].Name)
		}
	}
	return out
}

func (r *Record) GetString(name string) (string, bool) { return getAs[string](r, name) }
func (r *Record) GetInt(name string) (int64, bool)     { return getAs[int64](r, name) }
func (r *Record) GetFloat(name string) (float64, bool) { return getAs[float64](r, name) }
func (r *Record) GetBool(name string) (bool, bool)     { return getAs[bool](r, name) }
func (r *Record) GetTime(name string) (time.Time, bool) {
	return getAs[time.Time](r, name)
}
func (r *Record) GetRecord(name string) (*Record, bool) { return getAs[*Record](r, name) }
func (r *Record) GetList(name string) ([]any, bool)     { return getAs[[]any](r, name) }

func getAs[T any](r *Record, name string) (T, bool) {
	v, ok := r.Get(name)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// ValidateField coerces v against the declared type of the named field with
// the same rules used at construction, without assigning it.
func (r *Record) ValidateField(name string, v any) (any, error) {
	p := Path{}.Field(name)
	i, ok := r.fieldIndex(name)
	if !ok {
		return nil, singleIssue(p, CodeUnknownField, map[string]string{"key": name})
	}
	f := r.schema.fields[i]
	c := newComposer(r.opts, r.reg)
	out, ok := c.value(v, f.Type, p, 0)
	if !ok {
		return nil, c.issues
	}
	return out, nil
}

// Set re-validates v and assigns it to the named field. Frozen records fail
// with immutable_record. Assigning nil clears an optional field. When a
// record rule rejects the new state, the previous value is restored.
//
// Only this record's rules run. Records nested in another record (as
// returned by GetRecord) are shared with their parent, and setting a field
// on them does not re-run the parent's rules; rebuild the parent from
// ToMap to check them.
func (r *Record) Set(name string, v any) error {
	if r.frozen {
		return singleIssue(Path{}.Field(name), CodeImmutableRecord, nil)
	}
	val, err := r.ValidateField(name, v)
	if err != nil {
		return err
	}
	i := r.schema.index[name]
	prev, prevP := r.values[i], r.presence[i]
	r.values[i] = val
	r.presence[i] = PresenceAssigned
	if v == nil {
		r.presence[i] |= PresenceWasNull
	}
	if iss := r.runRules(Path{}); len(iss) > 0 {
		r.values[i], r.presence[i] = prev, prevP
		return iss
	}
	return nil
}

// ToMap serializes the record into a keyed structure of canonical values.
// Nested records become maps; absent fields are omitted. Shape-resolved
// records carry their discriminator so the map builds back into the same
// record.
func (r *Record) ToMap() map[string]any {
	return r.toMap(true, false)
}

func (r *Record) toMap(withTag, wire bool) map[string]any {
	m := make(map[string]any, len(r.values)+1)
	for i, v := range r.values {
		if v == nil {
			continue
		}
		m[r.schema.fields[i].Name] = serialize(v, wire)
	}
	if withTag && r.tagField != "" {
		if _, declared := r.fieldIndex(r.tagField); !declared {
			m[r.tagField] = r.tagValue
		}
	}
	return m
}

func serialize(v any, wire bool) any {
	switch t := v.(type) {
	case *Record:
		return t.toMap(true, wire)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = serialize(t[i], wire)
		}
		return out
	case time.Time:
		if wire {
			return codec.FormatTimestamp(t)
		}
		return t
	default:
		return v
	}
}

func copyValue(v any) any {
	if l, ok := v.([]any); ok {
		out := make([]any, len(l))
		for i := range l {
			out[i] = copyValue(l[i])
		}
		return out
	}
	return v
}

// MarshalJSON encodes the record as a JSON object with RFC 3339 timestamps.
func (r *Record) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(r.toMap(true, true))
}

// Equal reports whether two records share a schema and hold equal values.
// Presence flags and frozen state are not compared.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.schema != o.schema {
		return false
	}
	for i := range r.values {
		if !equalValue(r.values[i], o.values[i]) {
			return false
		}
	}
	return true
}

func equalValue(a, b any) bool {
	switch x := a.(type) {
	case *Record:
		y, ok := b.(*Record)
		return ok && x.Equal(y)
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equalValue(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// String renders the record for diagnostics, e.g. Dog{name: "Rex", age: 3}.
func (r *Record) String() string {
	if r.schema == nil {
		return "Record{}"
	}
	b := &strings.Builder{}
	b.WriteString(r.schema.name)
	b.WriteByte('{')
	n := 0
	for i, v := range r.values {
		if v == nil {
			continue
		}
		if n > 0 {
			b.WriteString(", ")
		}
		n++
		b.WriteString(r.schema.fields[i].Name)
		b.WriteString(": ")
		writeValue(b, v)
	}
	b.WriteByte('}')
	return b.String()
}

func writeValue(b *strings.Builder, v any) {
	switch t := v.(type) {
	case string:
		fmt.Fprintf(b, "%q", t)
	case time.Time:
		b.WriteString(codec.FormatTimestamp(t))
	case []any:
		b.WriteByte('[')
		for i := range t {
			if i > 0 {
				b.WriteString(", ")
			}
			writeValue(b, t[i])
		}
		b.WriteByte(']')
	default:
		fmt.Fprint(b, t)
	}
}
