package schema

import (
	"fmt"
	"sort"
	"strings"
)

// internationalisable is implemented by composite fields that can carry the
// internationalisation taint.
type internationalisable interface {
	isInternationalised() bool
}

// anyField accepts any value. It backs hash keys declared without a value
// schema, where the value passes through verbatim.
type anyField struct {
	baseField
}

func (f *anyField) Validate(value any, present bool, path Path, errs *Errors) {
	f.checkRequired(value, present, path, errs)
}

func (f *anyField) Render(value any) any { return value }
func (f *anyField) Walk(fn func(Field))  { fn(f) }

// Object is a composite field with named, typed properties. It is also the
// DSL surface: schema definitions call its builder methods to declare child
// fields, and nested blocks recurse naturally into child Objects.
type Object struct {
	baseField
	names             []string
	properties        map[string]Field
	internationalised bool
}

// NewObject returns an empty root object for standalone use. Most callers
// define schemas through DefineType or DefineResource instead.
func NewObject() *Object {
	return &Object{properties: make(map[string]Field)}
}

func newObject(name string, opts ...Option) *Object {
	return &Object{baseField: newBase(name, opts...), properties: make(map[string]Field)}
}

func (o *Object) isInternationalised() bool { return o.internationalised }

// addField registers a child field, preserving insertion order. Redeclaring
// an existing name replaces the field in place, which is what makes Type
// inclusion followed by a local override work.
func (o *Object) addField(f Field) {
	if o.properties == nil {
		o.properties = make(map[string]Field)
	}
	if _, exists := o.properties[f.Name()]; !exists {
		o.names = append(o.names, f.Name())
	}
	o.properties[f.Name()] = f
}

// Properties returns the child fields in declaration order.
func (o *Object) Properties() []Field {
	out := make([]Field, 0, len(o.names))
	for _, name := range o.names {
		out = append(out, o.properties[name])
	}
	return out
}

// Property returns the named child field, or nil.
func (o *Object) Property(name string) Field {
	return o.properties[name]
}

// Validate checks the value is an object and recurses into every declared
// property, passing each the same-named key from the input or an absent
// marker. All problems accumulate into errs.
func (o *Object) Validate(value any, present bool, path Path, errs *Errors) {
	if o.checkRequired(value, present, path, errs) {
		return
	}
	m, ok := value.(map[string]any)
	if !ok {
		addInvalid(errs, CodeInvalidObject, "object", path)
		return
	}
	for _, name := range o.names {
		raw, has := m[name]
		o.properties[name].Validate(raw, has, path.Field(name), errs)
	}
}

// Render projects the input into a new map honoring declaration order,
// defaults-only-on-absence and explicit-null passthrough. Non-map input
// renders as nil.
func (o *Object) Render(value any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]any)
	for _, name := range o.names {
		field := o.properties[name]
		raw, has := m[name]
		switch {
		case !has:
			if field.HasDefault() {
				out[name] = field.DefaultValue()
			}
		case raw == nil:
			out[name] = nil
		default:
			out[name] = field.Render(raw)
		}
	}
	return out
}

// Walk visits this field then every child, depth first.
func (o *Object) Walk(fn func(Field)) {
	fn(o)
	o.walkChildren(fn)
}

func (o *Object) walkChildren(fn func(Field)) {
	for _, name := range o.names {
		o.properties[name].Walk(fn)
	}
}

// Internationalised marks this object, and transitively every enclosing
// composite, as internationalised.
func (o *Object) Internationalised() {
	o.internationalised = true
}

// Boolean declares a true/false field.
func (o *Object) Boolean(name string, opts ...Option) {
	o.addField(&booleanField{newBase(name, opts...)})
}

// Integer declares a whole-number field.
func (o *Object) Integer(name string, opts ...Option) {
	o.addField(&integerField{newBase(name, opts...)})
}

// Float declares a floating-point field.
func (o *Object) Float(name string, opts ...Option) {
	o.addField(&floatField{newBase(name, opts...)})
}

// Decimal declares an arbitrary-precision decimal field. The precision is
// mandatory; a non-positive precision is a definition error.
func (o *Object) Decimal(name string, precision int, opts ...Option) {
	if precision <= 0 {
		definitionError("decimal field %q requires a positive precision", name)
	}
	o.addField(&decimalField{newBase(name, opts...), precision})
}

// String declares a length-constrained string field. The maximum length is
// mandatory; a non-positive length is a definition error.
func (o *Object) String(name string, length int, opts ...Option) {
	if length <= 0 {
		definitionError("string field %q requires a positive maximum length", name)
	}
	o.addField(&stringField{newBase(name, opts...), length})
}

// Text declares an unconstrained-length string field.
func (o *Object) Text(name string, opts ...Option) {
	o.addField(&textField{newBase(name, opts...)})
}

// Tags declares a tag-list field.
func (o *Object) Tags(name string, opts ...Option) {
	o.addField(&tagsField{newBase(name, opts...)})
}

// Enum declares a field constrained to a non-empty allow-list. An empty
// allow-list is a definition error.
func (o *Object) Enum(name string, from []string, opts ...Option) {
	if len(from) == 0 {
		definitionError("enum field %q requires a non-empty allow-list", name)
	}
	normalized := make([]string, len(from))
	copy(normalized, from)
	o.addField(&enumField{newBase(name, opts...), normalized})
}

// Date declares an ISO-8601 calendar date field.
func (o *Object) Date(name string, opts ...Option) {
	o.addField(&dateField{newBase(name, opts...)})
}

// DateTime declares an RFC3339 timestamp field.
func (o *Object) DateTime(name string, opts ...Option) {
	o.addField(&dateTimeField{newBase(name, opts...)})
}

// UUID declares a UUID field.
func (o *Object) UUID(name string, opts ...Option) {
	o.addField(&uuidField{baseField: newBase(name, opts...)})
}

// UUIDFor declares a UUID field annotated with the resource it references.
// The association is metadata only; values are not checked against the
// target resource.
func (o *Object) UUIDFor(name, resource string, opts ...Option) {
	o.addField(&uuidField{baseField: newBase(name, opts...), resource: resource})
}

// Object declares a nested object field. The block is mandatory and is
// evaluated against the new child so syntactic nesting mirrors tree nesting.
func (o *Object) Object(name string, fn func(*Object), opts ...Option) {
	if fn == nil {
		definitionError("object field %q requires a definition block", name)
	}
	child := newObject(name, opts...)
	fn(child)
	o.addField(child)
	if child.internationalised {
		o.internationalised = true
	}
}

// Array declares an array field. A non-nil block declares the schema each
// item is validated against; with a nil block only top-level array-ness is
// checked and items pass through rendering verbatim.
func (o *Object) Array(name string, fn func(*Object), opts ...Option) {
	child := &Array{baseField: newBase(name, opts...)}
	if fn != nil {
		child.item = newObject("")
		fn(child.item)
		if child.item.internationalised {
			child.internationalised = true
		}
	}
	o.addField(child)
	if child.internationalised {
		o.internationalised = true
	}
}

// Hash declares a hash field. The block declares either specific keys (Key)
// or wildcard keys (Keys); with a nil block any content is accepted and
// passes through verbatim.
func (o *Object) Hash(name string, fn func(*Hash), opts ...Option) {
	child := &Hash{baseField: newBase(name, opts...)}
	if fn != nil {
		fn(child)
	}
	o.addField(child)
	if child.internationalised {
		o.internationalised = true
	}
}

// Type replays the named Type definition against this node, splicing its
// fields in place. An unknown name is a definition error.
func (o *Object) Type(name string) {
	o.include(name, KindType)
}

// Resource replays the named Resource definition against this node. An
// unknown name is a definition error.
func (o *Object) Resource(name string) {
	o.include(name, KindResource)
}

func (o *Object) include(name string, kind Kind) {
	p := lookup(name, kind)
	if p == nil {
		definitionError("unknown %s %q referenced in schema definition", kind, name)
	}
	p.definition(o)
	if p.internationalised {
		o.internationalised = true
	}
}

// Array is a composite field validating every item against an optional
// per-item schema.
type Array struct {
	baseField
	item              *Object
	internationalised bool
}

func (a *Array) isInternationalised() bool { return a.internationalised }

// Validate checks array-ness and, when a per-item schema was declared,
// validates every item with its index appended to the error path.
func (a *Array) Validate(value any, present bool, path Path, errs *Errors) {
	if a.checkRequired(value, present, path, errs) {
		return
	}
	arr, ok := value.([]any)
	if !ok {
		addInvalid(errs, CodeInvalidArray, "array", path)
		return
	}
	if a.item == nil {
		return
	}
	for i, entry := range arr {
		a.item.Validate(entry, true, path.Index(i), errs)
	}
}

// Render substitutes each item through the per-item schema, or passes items
// through verbatim when no schema was declared. Non-array input renders as
// nil.
func (a *Array) Render(value any) any {
	arr, ok := value.([]any)
	if !ok {
		return nil
	}
	if a.item == nil {
		return value
	}
	out := make([]any, 0, len(arr))
	for _, entry := range arr {
		if entry == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, a.item.Render(entry))
	}
	return out
}

// Walk visits this field then the per-item schema's fields.
func (a *Array) Walk(fn func(Field)) {
	fn(a)
	if a.item != nil {
		a.item.walkChildren(fn)
	}
}

// Hash is a composite field with one of two mutually exclusive shapes:
// specific named keys, each independently required or defaulted, or wildcard
// keys where arbitrary key names are validated against a key constraint and
// every value against one shared schema. A definition may never mix the two.
type Hash struct {
	baseField
	specificNames     []string
	specific          map[string]Field
	keyField          Field
	valueField        *Object
	wildcard          bool
	internationalised bool
}

func (h *Hash) isInternationalised() bool { return h.internationalised }

// Key declares one specific hash key. A non-nil block declares the schema
// the key's value is validated against; with a nil block the value passes
// through verbatim. Mixing Key with Keys is a definition error.
func (h *Hash) Key(name string, fn func(*Object), opts ...Option) {
	if h.wildcard {
		definitionError("hash %q mixes specific keys with wildcard keys", h.name)
	}
	var field Field
	if fn != nil {
		child := newObject(name, opts...)
		fn(child)
		field = child
		if child.internationalised {
			h.internationalised = true
		}
	} else {
		field = &anyField{newBase(name, opts...)}
	}
	if h.specific == nil {
		h.specific = make(map[string]Field)
	}
	if _, exists := h.specific[name]; !exists {
		h.specificNames = append(h.specificNames, name)
	}
	h.specific[name] = field
}

// Keys switches the hash to wildcard mode: arbitrary key names validated
// against an optional maximum length, each value validated against the
// block's schema (or passed through verbatim with a nil block). Mixing Keys
// with Key is a definition error, as is calling Keys twice.
func (h *Hash) Keys(maxLength int, fn func(*Object), opts ...Option) {
	if len(h.specific) > 0 {
		definitionError("hash %q mixes wildcard keys with specific keys", h.name)
	}
	if h.wildcard {
		definitionError("hash %q declares wildcard keys twice", h.name)
	}
	h.wildcard = true
	if maxLength > 0 {
		h.keyField = &stringField{newBase(h.name, opts...), maxLength}
	} else {
		h.keyField = &textField{newBase(h.name, opts...)}
	}
	if fn != nil {
		h.valueField = newObject("")
		fn(h.valueField)
		if h.valueField.internationalised {
			h.internationalised = true
		}
	}
}

// Validate checks hash-ness then applies the mode-specific rules. In
// specific-keys mode unrecognized input keys report a single invalid_hash
// error naming them; in wildcard mode each key name and value are validated
// with the real key name in the error path.
func (h *Hash) Validate(value any, present bool, path Path, errs *Errors) {
	if h.checkRequired(value, present, path, errs) {
		return
	}
	m, ok := value.(map[string]any)
	if !ok {
		addInvalid(errs, CodeInvalidHash, "hash", path)
		return
	}
	if h.wildcard {
		h.validateWildcard(m, path, errs)
		return
	}
	h.validateSpecific(m, path, errs)
}

func (h *Hash) validateSpecific(m map[string]any, path Path, errs *Errors) {
	var unrecognized []string
	for key := range m {
		if _, known := h.specific[key]; !known {
			unrecognized = append(unrecognized, key)
		}
	}
	if len(unrecognized) > 0 {
		sort.Strings(unrecognized)
		errs.Add(CodeInvalidHash,
			fmt.Sprintf("Field `%s` is an invalid hash due to unrecognised keys `%s`",
				path, strings.Join(unrecognized, ", ")),
			path.String())
	}
	for _, name := range h.specificNames {
		raw, has := m[name]
		h.specific[name].Validate(raw, has, path.Field(name), errs)
	}
}

func (h *Hash) validateWildcard(m map[string]any, path Path, errs *Errors) {
	if h.keyField.Required() && len(m) == 0 {
		errs.Add(CodeRequiredFieldMissing,
			fmt.Sprintf("Field `%s` is required (non-empty hash)", path), path.String())
		return
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		// The effective key name travels in the path parameter, so error
		// paths show the caller's actual key without mutating any field.
		h.keyField.Validate(key, true, path.Field(key), errs)
		if h.valueField != nil {
			h.valueField.Validate(m[key], true, path.Field(key), errs)
		}
	}
}

// Render projects the hash through its declared shape. Declared keys honor
// the defaults-on-absence and explicit-null rules; wildcard values render
// through the shared value schema or pass through verbatim when none was
// declared. Non-hash input renders as nil.
func (h *Hash) Render(value any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]any)
	if h.wildcard {
		keys := make([]string, 0, len(m))
		for key := range m {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			raw := m[key]
			switch {
			case raw == nil:
				out[key] = nil
			case h.valueField == nil:
				out[key] = raw
			default:
				out[key] = h.valueField.Render(raw)
			}
		}
		return out
	}
	for _, name := range h.specificNames {
		field := h.specific[name]
		raw, has := m[name]
		switch {
		case !has:
			if field.HasDefault() {
				out[name] = field.DefaultValue()
			}
		case raw == nil:
			out[name] = nil
		default:
			out[name] = field.Render(raw)
		}
	}
	return out
}

// Walk visits this field then its children. In wildcard mode only the value
// schema's children are walked, never the key constraint.
func (h *Hash) Walk(fn func(Field)) {
	fn(h)
	if h.wildcard {
		if h.valueField != nil {
			h.valueField.walkChildren(fn)
		}
		return
	}
	for _, name := range h.specificNames {
		h.specific[name].Walk(fn)
	}
}
