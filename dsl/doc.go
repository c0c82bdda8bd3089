// Package dsl provides a fluent declaration layer for strictmodel schemas.
//
// Overview
//   - Builder API: declare record schemas with Object()/Field()/Required()/Optional()/Build().
//   - Rules: attach record-level checks with Rule(fn) or Expr(src) (expr-lang expressions).
//   - Discriminated families: Discriminated(field).OneOf(Variant(...)) builds a sealed Registry.
//   - Typed binding: Bind[T](schema) projects records onto Go structs and back.
//
// Entry points
//   - Object(name): create an object builder; chain Field/Required/Optional/Rule/Expr then Build()/MustBuild().
//   - Discriminated(field): declare the variants of a tagged family.
//   - Bind[T](s): check struct T against s once; then Decode/FromRecord/Encode.
//
// Example
//
//	dog := dsl.Object("Dog").
//	    Field("name", sm.String()).
//	    Field("age", sm.Integer()).
//	    Field("breed", sm.String()).Optional().
//	    Expr("age_non_negative", `age >= 0`).
//	    MustBuild()
//
//	reg := dsl.Discriminated("kind").
//	    OneOf(dsl.Variant("dog", dog)).
//	    MustBuild()
//
//	rec, err := sm.NewFactory(reg).Build(map[string]any{"kind": "dog", "name": "Rex", "age": 3})
//
// Typed binding
//
//	type Dog struct {
//	    Name  string  `json:"name"`
//	    Age   int     `json:"age"`
//	    Breed *string `json:"breed"`
//	}
//	b := dsl.MustBind[Dog](dog)
//	d, err := b.FromRecord(rec)
//
// Struct keys follow strictmodel.ResolveStructKey: a strictmodel:"name=..."
// tag wins over the json tag, which wins over the Go field name.
package dsl
