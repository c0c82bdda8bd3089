package dsl_test

import (
	"testing"

	sm "github.com/reoring/strictmodel"
	"github.com/reoring/strictmodel/dsl"
)

func TestExpr_PassAndFail(t *testing.T) {
	s := dsl.Object("Account").
		Field("email", sm.String()).
		Field("confirm", sm.String()).
		Field("age", sm.Integer()).
		Expr("confirm_matches", `email == confirm`).
		Expr("adult", `age >= 18`).
		MustBuild()

	if got := s.Rules(); len(got) != 2 || got[0] != "confirm_matches" || got[1] != "adult" {
		t.Fatalf("unexpected rules: %v", got)
	}

	ok := map[string]any{"email": "a@x", "confirm": "a@x", "age": 20}
	if _, err := sm.Compose(ok, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := map[string]any{"email": "a@x", "confirm": "b@x", "age": 10}
	_, err := sm.Compose(bad, s, sm.Options{CollectAllErrors: true})
	iss, _ := sm.AsIssues(err)
	if len(iss) != 2 {
		t.Fatalf("expected both rules to fail, got %v", err)
	}
	if iss[0].Rule != "confirm_matches" || iss[1].Rule != "adult" {
		t.Fatalf("unexpected rule order: %+v", iss)
	}
	for _, it := range iss {
		if it.Code != sm.CodeRuleViolation {
			t.Fatalf("expected rule_violation, got %s", it.Code)
		}
	}

	// fail-fast stops at the first failing rule
	_, err = sm.Compose(bad, s)
	iss, _ = sm.AsIssues(err)
	if len(iss) != 1 {
		t.Fatalf("fail-fast should report one rule issue, got %v", err)
	}
}

func TestExpr_SetRevertsOnRuleFailure(t *testing.T) {
	s := dsl.Object("Counter").
		Field("n", sm.Integer()).
		Expr("bounded", `n < 10`).
		MustBuild()

	r, err := sm.Compose(map[string]any{"n": 1}, s)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if err := r.Set("n", 42); !sm.HasCode(err, sm.CodeRuleViolation) {
		t.Fatalf("expected rule_violation, got %v", err)
	}
	if n, _ := r.GetInt("n"); n != 1 {
		t.Fatalf("value should be restored, got %d", n)
	}
}

func TestExpr_CompileErrorSurfacesFromBuild(t *testing.T) {
	_, err := dsl.Object("Broken").
		Field("n", sm.Integer()).
		Expr("syntax", `n >=`).
		Build()
	iss, ok := sm.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got %v", err)
	}
	if iss[0].Code != sm.CodeInvalidSchema || iss[0].Rule != "syntax" {
		t.Fatalf("unexpected issue: %+v", iss[0])
	}
}
