package rules_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	sm "github.com/reoring/strictmodel"
	"github.com/reoring/strictmodel/dsl"
	"github.com/reoring/strictmodel/rules"
)

func orderSchema(checks ...sm.Rule) *sm.Schema {
	item := dsl.Object("Item").
		Field("sku", sm.String()).
		Field("qty", sm.Integer()).
		MustBuild()
	b := dsl.Object("Order").
		Field("status", sm.String()).
		Field("total", sm.Float()).
		Field("tracking", sm.String()).Optional().
		Field("items", sm.List(sm.Ref(item)))
	for _, c := range checks {
		b.Rule(c.Name, c.Check)
	}
	return b.MustBuild()
}

func issuePaths(err error) []string {
	iss, _ := sm.AsIssues(err)
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Rule + " " + it.Path.Pointer()
	}
	return out
}

func items(skus ...string) []any {
	out := make([]any, len(skus))
	for i, s := range skus {
		out[i] = map[string]any{"sku": s, "qty": 1}
	}
	return out
}

func TestIfThen(t *testing.T) {
	s := orderSchema(rules.Named("shipped_needs_tracking",
		rules.If("status", rules.Eq, "shipped").Then(rules.Present("tracking"))))

	if _, err := sm.Compose(map[string]any{"status": "new", "total": 1, "items": items("a")}, s); err != nil {
		t.Fatalf("condition false: %v", err)
	}
	_, err := sm.Compose(map[string]any{"status": "shipped", "total": 1, "items": items("a")}, s)
	if diff := cmp.Diff([]string{"shipped_needs_tracking /tracking"}, issuePaths(err)); diff != "" {
		t.Fatalf("issues mismatch:\n%s", diff)
	}
}

func TestAtLeastOneAndUniqueBy(t *testing.T) {
	s := orderSchema(
		rules.Named("non_empty", rules.AtLeastOne("/items")),
		rules.Named("unique_sku", rules.UniqueBy("/items", "sku")),
	)
	opts := sm.Options{CollectAllErrors: true}

	_, err := sm.Compose(map[string]any{"status": "new", "total": 0, "items": []any{}}, s, opts)
	if diff := cmp.Diff([]string{"non_empty /items"}, issuePaths(err)); diff != "" {
		t.Fatalf("issues mismatch:\n%s", diff)
	}

	_, err = sm.Compose(map[string]any{"status": "new", "total": 0, "items": items("a", "b", "a", "a")}, s, opts)
	want := []string{"unique_sku /items/2/sku", "unique_sku /items/3/sku"}
	if diff := cmp.Diff(want, issuePaths(err)); diff != "" {
		t.Fatalf("issues mismatch:\n%s", diff)
	}
}

func TestNumericComparisonAcrossKinds(t *testing.T) {
	big := rules.If("/total", rules.Ge, 100).And(rules.If("status", rules.Ne, "draft"))
	s := orderSchema(rules.Named("big_orders_tracked", big.Then(rules.Present("tracking"))))

	_, err := sm.Compose(map[string]any{"status": "new", "total": 150.5, "items": items("a")}, s)
	if !sm.HasCode(err, sm.CodeRuleViolation) {
		t.Fatalf("expected rule_violation, got %v", err)
	}
	if _, err := sm.Compose(map[string]any{"status": "draft", "total": 150.5, "items": items("a")}, s); err != nil {
		t.Fatalf("draft orders are exempt: %v", err)
	}
	if _, err := sm.Compose(map[string]any{"status": "new", "total": 99, "items": items("a")}, s); err != nil {
		t.Fatalf("small orders are exempt: %v", err)
	}
}

func TestOrReportsSmallestBranch(t *testing.T) {
	errA := errors.New("a")
	fail := func(n int) rules.Check {
		return func(*sm.Record) error {
			iss := make(sm.Issues, n)
			for i := range iss {
				iss[i] = sm.Issue{Code: sm.CodeRuleViolation, Message: "x"}
			}
			return iss
		}
	}
	s := orderSchema(rules.Named("either", rules.Or(fail(3), fail(1), func(*sm.Record) error { return errA })))
	_, err := sm.Compose(map[string]any{"status": "new", "total": 1, "items": items("a")}, s)
	iss, _ := sm.AsIssues(err)
	if len(iss) != 1 {
		t.Fatalf("expected the single-issue branch, got %v", err)
	}

	pass := orderSchema(rules.Named("either", rules.Or(fail(2), func(*sm.Record) error { return nil })))
	if _, err := sm.Compose(map[string]any{"status": "new", "total": 1, "items": items("a")}, pass); err != nil {
		t.Fatalf("Or with a passing branch: %v", err)
	}
}

func TestValueAt(t *testing.T) {
	s := orderSchema()
	r, err := sm.Compose(map[string]any{"status": "new", "total": 1, "items": items("a", "b")}, s)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if v, ok := rules.ValueAt(r, "/items/1/sku"); !ok || v != "b" {
		t.Fatalf("ValueAt = %v, %v", v, ok)
	}
	if _, ok := rules.ValueAt(r, "/items/5/sku"); ok {
		t.Fatal("out of range index should not resolve")
	}
	if _, ok := rules.ValueAt(r, "tracking"); ok {
		t.Fatal("absent field should not resolve")
	}
}
