package schema

import "fmt"

// Path is the dotted/bracketed location of a field within a payload, used in
// error messages and machine references (for example "addresses[0].postcode").
// The zero value is the payload root.
type Path string

// Field appends a named child segment to the path.
func (p Path) Field(name string) Path {
	if p == "" {
		return Path(name)
	}
	return p + "." + Path(name)
}

// Index appends an array index segment to the path.
func (p Path) Index(i int) Path {
	return Path(fmt.Sprintf("%s[%d]", string(p), i))
}

// String returns the path as a plain string.
func (p Path) String() string {
	return string(p)
}

// Field is a single typed node in a schema tree. Implementations are created
// through the DSL at definition time and are immutable afterwards, so a
// schema may be used for concurrent Validate and Render calls.
//
// Validate receives the raw value for this field, whether the key was present
// in the input at all (a present nil and an absent key behave differently for
// rendering but identically for the required check), the field's effective
// path, and the collection to accumulate problems into. It never panics on
// bad data.
//
// Render projects a present, non-nil value into its output representation.
// Render never fails; input that does not match the expected shape degrades
// to nil.
type Field interface {
	Name() string
	Required() bool
	HasDefault() bool
	DefaultValue() any

	Validate(value any, present bool, path Path, errs *Errors)
	Render(value any) any
	Walk(fn func(Field))
}

// Option configures a field at declaration time.
type Option func(*baseField)

// Required marks the field as mandatory: validating a nil or absent value
// reports generic.required_field_missing and suppresses further type checks.
func Required() Option {
	return func(f *baseField) { f.required = true }
}

// Default declares a rendering default. The default appears in rendered
// output only when the key is absent from the input; an explicit null in the
// input always renders as null.
func Default(value any) Option {
	return func(f *baseField) {
		f.def = value
		f.hasDefault = true
	}
}

// baseField carries the attributes shared by every field kind and implements
// the required/default bookkeeping.
type baseField struct {
	name       string
	required   bool
	def        any
	hasDefault bool
}

func newBase(name string, opts ...Option) baseField {
	f := baseField{name: name}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

func (f *baseField) Name() string       { return f.name }
func (f *baseField) Required() bool     { return f.required }
func (f *baseField) HasDefault() bool   { return f.hasDefault }
func (f *baseField) DefaultValue() any  { return f.def }

// checkRequired performs the common nil/absent handling. It returns true when
// validation of this field should stop: the value was nil or absent, and the
// only possible report (required_field_missing) has been made if applicable.
func (f *baseField) checkRequired(value any, present bool, path Path, errs *Errors) bool {
	if value == nil || !present {
		if f.required {
			errs.Add(CodeRequiredFieldMissing,
				fmt.Sprintf("Field `%s` is required", path), path.String())
		}
		return true
	}
	return false
}

// addInvalid reports a type-mismatch error for this field.
func addInvalid(errs *Errors, code, kind string, path Path) {
	errs.Add(code, fmt.Sprintf("Field `%s` is an invalid %s", path, kind), path.String())
}

// definitionError panics with a schema-definition problem. DSL misuse is a
// programmer error and fails fast at startup rather than surfacing at
// validation time.
func definitionError(format string, args ...any) {
	panic(fmt.Sprintf("schema: "+format, args...))
}
