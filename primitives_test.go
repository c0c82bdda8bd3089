package strictmodel_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	sm "github.com/reoring/strictmodel"
)

type label string

func TestCoerce_Primitives(t *testing.T) {
	lenient := sm.Options{AllowStringCoercion: true}
	strict := sm.Options{AllowStringCoercion: true, StrictMode: true}
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	cases := []struct {
		name string
		raw  any
		typ  sm.Type
		opts sm.Options
		want any
		ok   bool
	}{
		{"string native", "x", sm.String(), sm.Options{}, "x", true},
		{"string named type", label("x"), sm.String(), sm.Options{}, "x", true},
		{"string rejects number", 1, sm.String(), lenient, nil, false},
		{"string rejects json.Number", json.Number("1"), sm.String(), sm.Options{}, nil, false},

		{"int native", 3, sm.Integer(), sm.Options{}, int64(3), true},
		{"int from uint8", uint8(7), sm.Integer(), sm.Options{}, int64(7), true},
		{"int from integral float", 3.0, sm.Integer(), sm.Options{}, int64(3), true},
		{"int rejects fraction", 3.5, sm.Integer(), sm.Options{}, nil, false},
		{"int from json.Number", json.Number("42"), sm.Integer(), sm.Options{}, int64(42), true},
		{"int from json.Number exponent", json.Number("1e3"), sm.Integer(), sm.Options{}, int64(1000), true},
		{"int from json.Number fraction", json.Number("3.0"), sm.Integer(), sm.Options{}, int64(3), true},
		{"int json.Number above 2^53 exact", json.Number("9007199254740993.0"), sm.Integer(), sm.Options{}, int64(9007199254740993), true},
		{"int json.Number max int64 exponent", json.Number("9.223372036854775807e18"), sm.Integer(), sm.Options{}, int64(math.MaxInt64), true},
		{"int json.Number beyond int64", json.Number("9.3e18"), sm.Integer(), sm.Options{}, nil, false},
		{"int json.Number fraction rejected", json.Number("9007199254740993.5"), sm.Integer(), sm.Options{}, nil, false},
		{"int json.Number huge exponent", json.Number("1e1000000"), sm.Integer(), sm.Options{}, nil, false},
		{"int rejects huge uint", uint64(math.MaxUint64), sm.Integer(), sm.Options{}, nil, false},
		{"int string off", "3", sm.Integer(), sm.Options{}, nil, false},
		{"int string on", "3", sm.Integer(), lenient, int64(3), true},
		{"int string garbage", "three", sm.Integer(), lenient, nil, false},
		{"int string strict", "3", sm.Integer(), strict, nil, false},
		{"int rejects bool", true, sm.Integer(), sm.Options{}, nil, false},

		{"float native", 1.5, sm.Float(), sm.Options{}, 1.5, true},
		{"float from int", 2, sm.Float(), sm.Options{}, 2.0, true},
		{"float string on", "2.25", sm.Float(), lenient, 2.25, true},
		{"float rejects NaN text", "NaN", sm.Float(), lenient, nil, false},
		{"float rejects Inf text", "+Inf", sm.Float(), lenient, nil, false},
		{"float rejects native NaN", math.NaN(), sm.Float(), sm.Options{}, nil, false},
		{"float rejects native +Inf", math.Inf(1), sm.Float(), sm.Options{}, nil, false},
		{"float rejects float32 -Inf", float32(math.Inf(-1)), sm.Float(), sm.Options{}, nil, false},
		{"float rejects json.Number NaN", json.Number("NaN"), sm.Float(), sm.Options{}, nil, false},
		{"float rejects json.Number overflow", json.Number("1e400"), sm.Float(), sm.Options{}, nil, false},

		{"bool native", false, sm.Boolean(), sm.Options{}, false, true},
		{"bool text any case", "TRUE", sm.Boolean(), lenient, true, true},
		{"bool text off", "true", sm.Boolean(), sm.Options{}, nil, false},
		{"bool rejects yes", "yes", sm.Boolean(), lenient, nil, false},
		{"bool rejects 1", 1, sm.Boolean(), lenient, nil, false},

		{"timestamp native", ts, sm.Timestamp(), sm.Options{}, ts, true},
		{"timestamp RFC 3339", "2025-01-02T03:04:05Z", sm.Timestamp(), sm.Options{}, ts, true},
		{"timestamp other layout", "2025/01/02", sm.Timestamp(), sm.Options{}, nil, false},
		{"timestamp date only", "2025-01-02", sm.Timestamp(), sm.Options{}, nil, false},
		{"timestamp string strict", "2025-01-02T03:04:05Z", sm.Timestamp(), sm.Options{StrictMode: true}, nil, false},
		{"timestamp rejects unix", 1735787045, sm.Timestamp(), sm.Options{}, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sm.Coerce(tc.raw, tc.typ, tc.opts)
			if !tc.ok {
				iss, _ := sm.AsIssues(err)
				if len(iss) != 1 || iss[0].Code != sm.CodeTypeMismatch {
					t.Fatalf("expected type_mismatch, got %#v, %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want, isTime := tc.want.(time.Time); isTime {
				if g, _ := got.(time.Time); !g.Equal(want) {
					t.Fatalf("got %v want %v", got, want)
				}
				return
			}
			if got != tc.want {
				t.Fatalf("got %#v want %#v", got, tc.want)
			}
		})
	}
}

func TestCoerce_Composite(t *testing.T) {
	got, err := sm.Coerce([]any{1, nil, 3}, sm.List(sm.Optional(sm.Integer())))
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	l := got.([]any)
	if len(l) != 3 || l[0] != int64(1) || l[1] != nil || l[2] != int64(3) {
		t.Fatalf("unexpected list: %#v", l)
	}

	got, err = sm.Coerce(nil, sm.Optional(sm.String()))
	if err != nil || got != nil {
		t.Fatalf("optional nil = %#v, %v", got, err)
	}
	if _, err := sm.Coerce(nil, sm.String()); !sm.HasCode(err, sm.CodeMissingRequiredField) {
		t.Fatalf("expected missing_required_field, got %v", err)
	}
	if _, err := sm.Coerce("x", sm.List(sm.String())); !sm.HasCode(err, sm.CodeStructureMismatch) {
		t.Fatalf("expected structure_mismatch, got %v", err)
	}
}
