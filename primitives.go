package strictmodel

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/reoring/strictmodel/codec"
)

// Coerce converts raw into the canonical representation of t:
//
//	string -> string, integer -> int64, float -> float64, boolean -> bool,
//	timestamp -> time.Time, list/tuple -> []any, record -> *Record,
//	optional -> nil when absent.
//
// Dynamic record types resolve through DefaultRegistry.
func Coerce(raw any, t Type, opts ...Options) (any, error) {
	c := newComposer(pickOptions(opts), nil)
	v, ok := c.value(raw, t, Path{}, 0)
	if !ok {
		return nil, c.issues
	}
	return v, nil
}

// coercePrimitive converts a leaf value. ok=false means a type mismatch.
func coercePrimitive(raw any, k Kind, o Options) (any, bool) {
	switch k {
	case KindString:
		return toString(raw)
	case KindInteger:
		return toInteger(raw, o)
	case KindFloat:
		return toFloat(raw, o)
	case KindBoolean:
		return toBoolean(raw, o)
	case KindTimestamp:
		return toTimestamp(raw, o)
	}
	return nil, false
}

func toString(raw any) (any, bool) {
	if _, isNum := raw.(json.Number); isNum {
		return nil, false
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return nil, false
}

// float64 bounds that convert to int64 without overflow
const (
	minIntFloat = -9.223372036854775808e18
	maxIntFloat = 9.223372036854775808e18
)

func floatToInt(f float64) (int64, bool) {
	if !finite(f) || f != math.Trunc(f) {
		return 0, false
	}
	if f < minIntFloat || f >= maxIntFloat {
		return 0, false
	}
	return int64(f), true
}

// maxNumberExponent bounds the exponent exactInteger will expand; no
// int64 needs more than a handful of digits beyond it.
const maxNumberExponent = 400

// exactInteger reads exponent or fraction forms such as 1e3 or 3.0 without
// going through float64, so integers above 2^53 are not rounded.
func exactInteger(s string) (int64, bool) {
	if s == "" || strings.Trim(s, "0123456789+-.eE") != "" {
		return 0, false
	}
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		e, err := strconv.Atoi(s[i+1:])
		if err != nil || e > maxNumberExponent || e < -maxNumberExponent {
			return 0, false
		}
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok || !r.IsInt() || !r.Num().IsInt64() {
		return 0, false
	}
	return r.Num().Int64(), true
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func toInteger(raw any, o Options) (any, bool) {
	switch v := raw.(type) {
	case json.Number:
		if n, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			return n, true
		}
		n, ok := exactInteger(string(v))
		return n, ok
	case string:
		if !o.stringCoercion() {
			return nil, false
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		n, ok := floatToInt(rv.Float())
		return n, ok
	}
	return nil, false
}

func toFloat(raw any, o Options) (any, bool) {
	switch v := raw.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil || !finite(f) {
			return nil, false
		}
		return f, true
	case string:
		if !o.stringCoercion() {
			return nil, false
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !finite(f) {
			return nil, false
		}
		return f, true
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		if f := rv.Float(); finite(f) {
			return f, true
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	}
	return nil, false
}

func toBoolean(raw any, o Options) (any, bool) {
	if s, ok := raw.(string); ok {
		if !o.stringCoercion() {
			return nil, false
		}
		switch {
		case strings.EqualFold(s, "true"):
			return true, true
		case strings.EqualFold(s, "false"):
			return false, true
		}
		return nil, false
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() == reflect.Bool {
		return rv.Bool(), true
	}
	return nil, false
}

func toTimestamp(raw any, o Options) (any, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return nil, false
		}
		return *v, true
	case string:
		if o.StrictMode {
			return nil, false
		}
		t, err := codec.ParseTimestamp(v)
		if err != nil {
			return nil, false
		}
		return t, true
	}
	return nil, false
}

// describe names the runtime kind of a raw input value for diagnostics.
func describe(raw any) string {
	switch v := raw.(type) {
	case nil:
		return "null"
	case json.Number:
		return "number"
	case time.Time, *time.Time:
		return "timestamp"
	case *Record:
		return "record<" + v.schema.Name() + ">"
	}
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Slice, reflect.Array:
		return "list"
	}
	return fmt.Sprintf("%T", raw)
}
