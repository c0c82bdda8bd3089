package dsl

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	sm "github.com/reoring/strictmodel"
)

// Expr adds a record-level rule written as a boolean expr-lang expression
// over the record's field names, e.g. `age >= 0 && len(name) > 0`. Absent
// fields evaluate to nil. The expression is compiled once here; a compile
// error surfaces from Build as invalid_schema.
func (b *ObjectBuilder) Expr(name, src string) *ObjectBuilder {
	program, err := compileExpr(src)
	if err != nil {
		b.errs = append(b.errs, sm.Issue{
			Code:    sm.CodeInvalidSchema,
			Message: fmt.Sprintf("rule %s: %v", name, err),
			Rule:    name,
			Cause:   err,
		})
		return b
	}
	return b.Rule(name, func(r *sm.Record) error { return runExpr(program, src, r) })
}

func compileExpr(src string) (*vm.Program, error) {
	return expr.Compile(src, expr.AsBool(), expr.AllowUndefinedVariables())
}

func runExpr(program *vm.Program, src string, r *sm.Record) error {
	out, err := expr.Run(program, r.ToMap())
	if err != nil {
		return fmt.Errorf("evaluating %q: %w", src, err)
	}
	if ok, _ := out.(bool); !ok {
		return fmt.Errorf("%q is false", src)
	}
	return nil
}
