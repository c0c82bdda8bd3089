package strictmodel_test

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	sm "github.com/reoring/strictmodel"
)

func dogSchema() *sm.Schema {
	return sm.MustSchema("Dog", []sm.Field{
		{Name: "name", Type: sm.String()},
		{Name: "age", Type: sm.Integer()},
	})
}

func issueSummary(err error) []string {
	iss, _ := sm.AsIssues(err)
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Code + " " + it.Path.Pointer()
	}
	return out
}

func TestCompose_Dog(t *testing.T) {
	r, err := sm.Compose(map[string]any{"name": "Rex", "age": 3}, dogSchema())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if got := r.String(); got != `Dog{name: "Rex", age: 3}` {
		t.Fatalf("String() = %s", got)
	}
}

func TestCompose_AgeAsWordIsTypeMismatch(t *testing.T) {
	_, err := sm.Compose(map[string]any{"name": "Rex", "age": "three"}, dogSchema(), sm.Options{AllowStringCoercion: false})
	iss, ok := sm.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got %v", err)
	}
	it := iss[0]
	if it.Code != sm.CodeTypeMismatch || !it.Path.Equal(sm.Path{}.Field("age")) {
		t.Fatalf("unexpected issue: %+v", it)
	}
	if it.Expected != "integer" || it.Actual != "string" {
		t.Fatalf("expected/actual = %q/%q", it.Expected, it.Actual)
	}
}

func TestCompose_UnknownFieldIsRejected(t *testing.T) {
	_, err := sm.Compose(map[string]any{"name": "Rex", "age": 3, "breed": "Lab"}, dogSchema())
	if diff := cmp.Diff([]string{"unknown_field /breed"}, issueSummary(err)); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestCompose_MissingRequiredField(t *testing.T) {
	_, err := sm.Compose(map[string]any{"name": "Rex"}, dogSchema())
	if diff := cmp.Diff([]string{"missing_required_field /age"}, issueSummary(err)); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}

	// explicit null is not a value for a required field
	_, err = sm.Compose(map[string]any{"name": "Rex", "age": nil}, dogSchema())
	if !sm.HasCode(err, sm.CodeMissingRequiredField) {
		t.Fatalf("expected missing_required_field for null, got %v", err)
	}
}

func TestCompose_CollectAllVersusFailFast(t *testing.T) {
	in := map[string]any{"name": 1, "zzz": true, "yyy": 2}

	_, err := sm.Compose(in, dogSchema(), sm.Options{CollectAllErrors: true})
	want := []string{
		"unknown_field /yyy",
		"unknown_field /zzz",
		"type_mismatch /name",
		"missing_required_field /age",
	}
	if diff := cmp.Diff(want, issueSummary(err)); diff != "" {
		t.Fatalf("collect-all mismatch (-want +got):\n%s", diff)
	}

	_, err = sm.Compose(in, dogSchema())
	if diff := cmp.Diff([]string{"unknown_field /yyy"}, issueSummary(err)); diff != "" {
		t.Fatalf("fail-fast mismatch (-want +got):\n%s", diff)
	}
}

func TestCompose_AllOptionalEmptyInput(t *testing.T) {
	s := sm.MustSchema("Prefs", []sm.Field{
		{Name: "theme", Type: sm.Optional(sm.String())},
		{Name: "size", Type: sm.Optional(sm.Integer())},
	})
	r, err := sm.Compose(map[string]any{}, s)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if len(r.Fields()) != 0 || r.Has("theme") || r.Presence("size") != 0 {
		t.Fatalf("all fields should be absent: %s", r)
	}
}

func TestCompose_ScalarIsStructureMismatch(t *testing.T) {
	for _, in := range []any{42, "dog", []any{1}, nil} {
		_, err := sm.Compose(in, dogSchema())
		iss, _ := sm.AsIssues(err)
		if len(iss) != 1 || iss[0].Code != sm.CodeStructureMismatch || len(iss[0].Path) != 0 {
			t.Fatalf("%v: expected structure_mismatch at root, got %v", in, err)
		}
	}
}

func TestCompose_NestedPaths(t *testing.T) {
	owner := sm.MustSchema("Owner", []sm.Field{{Name: "name", Type: sm.String()}})
	kennel := sm.MustSchema("Kennel", []sm.Field{
		{Name: "owner", Type: sm.Ref(owner)},
		{Name: "dogs", Type: sm.List(sm.Ref(dogSchema()))},
	})
	in := map[string]any{
		"owner": map[string]any{"name": 7},
		"dogs": []any{
			map[string]any{"name": "Rex", "age": 3},
			map[string]any{"name": "Fido", "age": 2.5},
			"not a dog",
		},
	}
	_, err := sm.Compose(in, kennel, sm.Options{CollectAllErrors: true})
	want := []string{
		"type_mismatch /owner/name",
		"type_mismatch /dogs/1/age",
		"structure_mismatch /dogs/2",
	}
	if diff := cmp.Diff(want, issueSummary(err)); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestCompose_NestedRecordsAreTyped(t *testing.T) {
	owner := sm.MustSchema("Owner", []sm.Field{{Name: "name", Type: sm.String()}})
	s := sm.MustSchema("Pet", []sm.Field{{Name: "owner", Type: sm.Ref(owner)}})
	r, err := sm.Compose(map[string]any{"owner": map[string]any{"name": "Ann"}}, s)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	o, ok := r.GetRecord("owner")
	if !ok || o.Schema() != owner {
		t.Fatalf("owner should be a record of Owner, got %v", o)
	}
}

func TestCompose_UnionFirstMatch(t *testing.T) {
	s := sm.MustSchema("Item", []sm.Field{
		{Name: "id", Type: sm.Union(sm.Integer(), sm.String())},
		{Name: "score", Type: sm.Union(sm.Integer(), sm.Float())},
	})
	r, err := sm.Compose(map[string]any{"id": "abc", "score": 2.0}, s)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	id, _ := r.Get("id")
	score, _ := r.Get("score")
	if id != "abc" {
		t.Fatalf("id = %#v", id)
	}
	// integral float matches the first alternative
	if score != int64(2) {
		t.Fatalf("score = %#v, want int64(2)", score)
	}

	_, err = sm.Compose(map[string]any{"id": true, "score": 1}, s)
	iss, _ := sm.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != sm.CodeTypeMismatch {
		t.Fatalf("expected type_mismatch, got %v", err)
	}
	if diff := cmp.Diff([]string{"integer", "string"}, iss[0].Alternatives); diff != "" {
		t.Fatalf("alternatives mismatch:\n%s", diff)
	}
}

func TestCompose_UnionOfRecords(t *testing.T) {
	cat := sm.MustSchema("Cat", []sm.Field{{Name: "lives", Type: sm.Integer()}})
	s := sm.MustSchema("Home", []sm.Field{{Name: "pet", Type: sm.Union(sm.Ref(dogSchema()), sm.Ref(cat))}})
	r, err := sm.Compose(map[string]any{"pet": map[string]any{"lives": 9}}, s)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	pet, _ := r.GetRecord("pet")
	if pet.Schema().Name() != "Cat" {
		t.Fatalf("expected Cat, got %s", pet.Schema().Name())
	}
}

func TestCompose_OptionalAndNull(t *testing.T) {
	s := sm.MustSchema("P", []sm.Field{
		{Name: "nick", Type: sm.Optional(sm.String())},
		{Name: "ids", Type: sm.List(sm.Optional(sm.Integer()))},
	})
	r, err := sm.Compose(map[string]any{"nick": nil, "ids": []any{1, nil}}, s)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if r.Has("nick") {
		t.Fatal("null optional should be absent")
	}
	if p := r.Presence("nick"); !p.Has(sm.PresenceSeen | sm.PresenceWasNull) {
		t.Fatalf("presence = %s", p)
	}
	ids, _ := r.GetList("ids")
	if diff := cmp.Diff([]any{int64(1), nil}, ids); diff != "" {
		t.Fatalf("ids mismatch:\n%s", diff)
	}

	s2 := sm.MustSchema("Q", []sm.Field{{Name: "ids", Type: sm.List(sm.Integer())}})
	_, err = sm.Compose(map[string]any{"ids": []any{1, nil}}, s2)
	if diff := cmp.Diff([]string{"missing_required_field /ids/1"}, issueSummary(err)); diff != "" {
		t.Fatalf("issues mismatch:\n%s", diff)
	}
}

func TestCompose_TupleArity(t *testing.T) {
	s := sm.MustSchema("Point", []sm.Field{{Name: "xy", Type: sm.Tuple(sm.Float(), sm.Float())}})
	if _, err := sm.Compose(map[string]any{"xy": []any{1, 2.5}}, s); err != nil {
		t.Fatalf("compose: %v", err)
	}
	for _, in := range [][]any{{1}, {1, 2, 3}} {
		_, err := sm.Compose(map[string]any{"xy": in}, s)
		iss, _ := sm.AsIssues(err)
		if len(iss) != 1 || iss[0].Code != sm.CodeArityMismatch || iss[0].Expected != "2" {
			t.Fatalf("%v: expected arity_mismatch, got %v", in, err)
		}
	}
}

func TestCompose_AcceptsTypedGoValues(t *testing.T) {
	s := sm.MustSchema("T", []sm.Field{
		{Name: "tags", Type: sm.List(sm.String())},
		{Name: "meta", Type: sm.Ref(sm.MustSchema("Meta", []sm.Field{{Name: "n", Type: sm.Integer()}}))},
		{Name: "at", Type: sm.Timestamp()},
	})
	at := time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC)
	in := map[string]any{
		"tags": []string{"a", "b"},
		"meta": map[string]int{"n": 4},
		"at":   at,
	}
	r, err := sm.Compose(in, s)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if got, _ := r.GetTime("at"); !got.Equal(at) {
		t.Fatalf("at = %v", got)
	}
}

func TestCompose_LazyRecursion(t *testing.T) {
	var node *sm.Schema
	node = sm.MustSchema("Node", []sm.Field{
		{Name: "value", Type: sm.Integer()},
		{Name: "next", Type: sm.Optional(sm.Lazy(func() *sm.Schema { return node }))},
	})
	in := map[string]any{"value": 1, "next": map[string]any{"value": 2, "next": map[string]any{"value": "x"}}}
	_, err := sm.Compose(in, node)
	if diff := cmp.Diff([]string{"type_mismatch /next/next/value"}, issueSummary(err)); diff != "" {
		t.Fatalf("issues mismatch:\n%s", diff)
	}
}

func TestCompose_MaxDepth(t *testing.T) {
	var node *sm.Schema
	node = sm.MustSchema("Node", []sm.Field{
		{Name: "next", Type: sm.Optional(sm.Lazy(func() *sm.Schema { return node }))},
	})
	deep := map[string]any{}
	for i := 0; i < 10; i++ {
		deep = map[string]any{"next": deep}
	}
	if _, err := sm.Compose(deep, node); err != nil {
		t.Fatalf("unbounded compose: %v", err)
	}
	_, err := sm.Compose(deep, node, sm.Options{MaxDepth: 4})
	if !sm.HasCode(err, sm.CodeStructureMismatch) {
		t.Fatalf("expected structure_mismatch past MaxDepth, got %v", err)
	}
}

func TestCompose_ExistingRecordIsRevalidated(t *testing.T) {
	r, err := sm.Compose(map[string]any{"name": "Rex", "age": 3}, dogSchema())
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	again, err := sm.Compose(r, r.Schema())
	if err != nil {
		t.Fatalf("recompose: %v", err)
	}
	if !again.Equal(r) {
		t.Fatalf("records differ: %s vs %s", again, r)
	}
}

func TestCompose_NonFiniteFloatIsTypeMismatch(t *testing.T) {
	s := sm.MustSchema("Reading", []sm.Field{{Name: "x", Type: sm.Float()}})
	for _, x := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := sm.Compose(map[string]any{"x": x}, s)
		if diff := cmp.Diff([]string{"type_mismatch /x"}, issueSummary(err)); diff != "" {
			t.Fatalf("x=%v issues mismatch:\n%s", x, diff)
		}
	}

	r, err := sm.Compose(map[string]any{"x": 1.5}, s)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	again, err := sm.Compose(r.ToMap(), s)
	if err != nil || !r.Equal(again) {
		t.Fatalf("rebuild from ToMap: equal=%v err=%v", r.Equal(again), err)
	}
	if _, err := r.MarshalJSON(); err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
}
