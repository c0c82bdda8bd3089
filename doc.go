// Package strictmodel turns loosely typed input (maps, slices, scalars,
// decoded JSON or YAML) into trees of strictly validated records.
//
// The pieces, leaf first:
//
//   - Primitive coercion (Coerce): string, integer, float, boolean and
//     timestamp leaves; optional, union (first match), list and tuple wrappers.
//   - Records (Record): closed-world instances of one Schema. Unknown keys fail
//     with unknown_field, absent required fields with missing_required_field.
//     Set re-validates every assignment; frozen records reject it.
//   - Registry: key -> schema table used for discriminator-based dispatch.
//   - Composer (Compose): recursive walk over a schema's declared fields.
//   - Factory (Build): the entry point. Its results are *Record or []*Record,
//     never generic maps.
//
// Errors are Issues: every entry carries a Path from the root, a stable code
// and a translated message. Composition stops at the first issue unless
// Options.CollectAllErrors is set.
//
// Design policy:
//   - Keep the core in the root package; put builders under dsl/, reusable
//     record rules under rules/, input adapters under source/, and wire
//     formats under codec/.
//   - The core performs no I/O. Registration happens at startup; Seal the
//     registry before serving concurrent resolutions.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	dog := strictmodel.MustSchema("Dog", []strictmodel.Field{
//	    {Name: "name", Type: strictmodel.String()},
//	    {Name: "age", Type: strictmodel.Integer()},
//	})
//	reg := strictmodel.NewRegistry(strictmodel.Options{DiscriminatorField: "kind"})
//	reg.MustRegister("dog", dog)
//	reg.Seal()
//
//	f := strictmodel.NewFactory(reg)
//	rec, err := f.Build(map[string]any{"kind": "dog", "name": "Rex", "age": 3})
package strictmodel
