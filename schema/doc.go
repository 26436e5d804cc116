// Package schema provides a declarative, tree-structured validation and
// rendering engine for resource payloads.
//
// # Overview
//
// Schemas are declared once at startup through a builder-style DSL and are
// immutable afterwards, making them safe for concurrent Validate/Render calls:
//
//	person := schema.DefineResource("Person", func(o *schema.Object) {
//	    o.Text("name", schema.Required())
//	    o.Integer("age")
//	    o.Object("address", func(a *schema.Object) {
//	        a.String("postcode", 16)
//	    })
//	})
//
//	errs := person.Validate(payload)
//	if errs.HasErrors() {
//	    // all problems reported at once, never raised
//	}
//	rendered := person.Render(payload)
//
// # Validation Semantics
//
// Validation accumulates every problem into an Errors collection rather than
// stopping at the first failure. The single exception is the required-field
// check: a nil or absent value on a required field reports exactly
// generic.required_field_missing and suppresses any further type checks for
// that field.
//
// Error codes are stable strings (generic.required_field_missing,
// generic.invalid_integer, ...) and every error carries a human message that
// includes the dotted/bracketed path to the offending field, plus the path as
// a machine reference.
//
// # Rendering Semantics
//
// Rendering never fails. A field with a declared default renders that default
// only when the key is absent from the input; an explicit null in the input
// always renders as null. Keys that are absent and have no default are
// omitted. Input that does not match the expected container shape degrades to
// nil at that position.
//
// # Composition
//
// Named Type and Resource definitions are stored as replayable builder
// functions. Another schema can splice them in with Object.Type or
// Object.Resource, which replays the stored definition against the current
// node. Internationalisation is a boolean taint that propagates upward from
// any nested field or included type at declaration time.
package schema
