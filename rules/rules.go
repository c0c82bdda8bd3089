package rules

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	sm "github.com/reoring/strictmodel"
)

// Check is a record-level check, the shape of strictmodel.Rule.Check.
type Check = func(*sm.Record) error

// Named wraps a check as a schema rule.
func Named(name string, c Check) sm.Rule { return sm.Rule{Name: name, Check: c} }

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional composes conditional execution of checks.
type Conditional struct {
	path string
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional that compares the value at path with want. The
// path is a JSON Pointer over field names and list indices, e.g. "/status"
// or "/owner/name". An absent value never satisfies the condition.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: normalizePath(path), op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Holds evaluates the conditional against r.
func (c Conditional) Holds(r *sm.Record) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Holds(r) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Holds(r) {
				return true
			}
		}
		return false
	}
	cur, ok := ValueAt(r, c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

// Then runs checks only when the condition holds.
func (c Conditional) Then(checks ...Check) Check {
	all := And(checks...)
	return func(r *sm.Record) error {
		if !c.Holds(r) {
			return nil
		}
		return all(r)
	}
}

// Present requires every named field to hold a value.
func Present(fields ...string) Check {
	return func(r *sm.Record) error {
		var out sm.Issues
		for _, f := range fields {
			if !r.Has(f) {
				out = append(out, sm.Issue{
					Path:    sm.Path{}.Field(f),
					Code:    sm.CodeRuleViolation,
					Message: f + " is required here",
				})
			}
		}
		return issuesOrNil(out)
	}
}

// AtLeastOne ensures the list at listPath has at least 1 element. An absent
// list is left to the field's own optionality.
func AtLeastOne(listPath string) Check {
	p := normalizePath(listPath)
	return func(r *sm.Record) error {
		val, ok := ValueAt(r, p)
		if !ok {
			return nil
		}
		if l, isList := val.([]any); isList && len(l) == 0 {
			return sm.Issues{{
				Path:     pointerPath(p),
				Code:     sm.CodeRuleViolation,
				Message:  "at least 1 item is required",
				Expected: "minItems 1",
				Actual:   "0",
			}}
		}
		return nil
	}
}

// UniqueBy ensures elements of the list at listPath have unique values at
// keyPath (relative to each element, e.g. "sku"). Keys compare by their
// printed form, so keep the key a single type.
func UniqueBy(listPath, keyPath string) Check {
	lp := normalizePath(listPath)
	kp := normalizePath(keyPath)
	return func(r *sm.Record) error {
		val, ok := ValueAt(r, lp)
		if !ok {
			return nil
		}
		l, isList := val.([]any)
		if !isList {
			return nil
		}
		seen := map[string]int{}
		var out sm.Issues
		for i, elem := range l {
			kv, ok := valueWithin(elem, kp)
			if !ok {
				continue
			}
			key := fmt.Sprint(kv)
			if j, dup := seen[key]; dup {
				out = append(out, sm.Issue{
					Path:    pointerPath(lp).Index(i).Join(pointerPath(kp)),
					Code:    sm.CodeRuleViolation,
					Message: fmt.Sprintf("duplicate value %q (first at index %d)", key, j),
				})
			} else {
				seen[key] = i
			}
		}
		return issuesOrNil(out)
	}
}

// And runs every check and concatenates their issues. Plain errors become
// rule_violation issues at the record root.
func And(checks ...Check) Check {
	return func(r *sm.Record) error {
		var out sm.Issues
		for _, c := range checks {
			if c == nil {
				continue
			}
			out = append(out, asIssues(c(r))...)
		}
		return issuesOrNil(out)
	}
}

// Or succeeds if any check passes. When all fail, the branch with the
// fewest issues is reported.
func Or(checks ...Check) Check {
	return func(r *sm.Record) error {
		var best sm.Issues
		for _, c := range checks {
			if c == nil {
				continue
			}
			iss := asIssues(c(r))
			if len(iss) == 0 {
				return nil
			}
			if best == nil || len(iss) < len(best) {
				best = iss
			}
		}
		return issuesOrNil(best)
	}
}

// ValueAt navigates r by JSON Pointer through nested records, lists and
// keyed maps.
func ValueAt(r *sm.Record, pointer string) (any, bool) {
	return valueWithin(r, normalizePath(pointer))
}

// ------- helpers -------

func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	if p[0] != '/' {
		return "/" + p
	}
	return p
}

func splitPointer(p string) []string {
	rel := strings.TrimPrefix(p, "/")
	if rel == "" {
		return nil
	}
	parts := strings.Split(rel, "/")
	for i, s := range parts {
		parts[i] = strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
	}
	return parts
}

func pointerPath(p string) sm.Path {
	out := sm.Path{}
	for _, s := range splitPointer(p) {
		out = out.Field(s)
	}
	return out
}

func valueWithin(v any, pointer string) (any, bool) {
	cur := v
	for _, seg := range splitPointer(pointer) {
		switch t := cur.(type) {
		case *sm.Record:
			if t == nil {
				return nil, false
			}
			next, ok := t.Get(seg)
			if !ok {
				return nil, false
			}
			cur = next
		case map[string]any:
			next, ok := t[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(t) {
				return nil, false
			}
			cur = t[idx]
		default:
			return nil, false
		}
	}
	return cur, cur != nil
}

func asIssues(err error) sm.Issues {
	if err == nil {
		return nil
	}
	if iss, ok := sm.AsIssues(err); ok {
		return iss
	}
	return sm.Issues{{Code: sm.CodeRuleViolation, Message: err.Error(), Cause: err}}
}

func issuesOrNil(iss sm.Issues) error {
	if len(iss) == 0 {
		return nil
	}
	return iss
}

func compare(cur any, op Op, want any) bool {
	if c, ok := order(cur, want); ok {
		switch op {
		case Eq:
			return c == 0
		case Ne:
			return c != 0
		case Lt:
			return c < 0
		case Le:
			return c <= 0
		case Gt:
			return c > 0
		case Ge:
			return c >= 0
		}
		return false
	}
	switch op {
	case Eq:
		return reflect.DeepEqual(cur, want)
	case Ne:
		return !reflect.DeepEqual(cur, want)
	}
	return false
}

// order compares numbers across Go numeric kinds, strings and timestamps.
func order(a, b any) (int, bool) {
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return ta.Compare(tb), true
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(sa, sb), true
	}
	fa, ok := toFloat64(a)
	if !ok {
		return 0, false
	}
	fb, ok := toFloat64(b)
	if !ok {
		return 0, false
	}
	switch {
	case fa < fb:
		return -1, true
	case fa > fb:
		return 1, true
	}
	return 0, true
}

func toFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
