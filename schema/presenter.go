package schema

import (
	"sync"
	"time"
)

// Kind distinguishes reusable Type fragments from remotely-callable Resource
// schemas.
type Kind string

const (
	// KindType is a reusable structural fragment embedded into other schemas.
	KindType Kind = "type"
	// KindResource is a top-level, versioned API resource schema.
	KindResource Kind = "resource"
)

// Presenter is a named, top-level schema: a replayable definition function
// paired with the field tree it materializes. The definition is kept so other
// schemas can splice it into their own trees via Object.Type and
// Object.Resource.
type Presenter struct {
	name              string
	kind              Kind
	definition        func(*Object)
	root              *Object
	internationalised bool
}

var (
	registryMu sync.RWMutex
	registry   = make(map[Kind]map[string]*Presenter)
)

func define(name string, kind Kind, fn func(*Object)) *Presenter {
	if fn == nil {
		definitionError("%s %q requires a definition block", kind, name)
	}
	root := NewObject()
	fn(root)
	p := &Presenter{
		name:              name,
		kind:              kind,
		definition:        fn,
		root:              root,
		internationalised: root.internationalised,
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if registry[kind] == nil {
		registry[kind] = make(map[string]*Presenter)
	}
	if _, exists := registry[kind][name]; exists {
		definitionError("%s %q is already defined", kind, name)
	}
	registry[kind][name] = p
	return p
}

func lookup(name string, kind Kind) *Presenter {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[kind][name]
}

// DefineType registers a named reusable Type schema. Definition-time misuse
// (nil block, duplicate name, invalid field options) panics: these are
// programmer errors that should stop service startup.
func DefineType(name string, fn func(*Object)) *Presenter {
	return define(name, KindType, fn)
}

// DefineResource registers a named Resource schema.
func DefineResource(name string, fn func(*Object)) *Presenter {
	return define(name, KindResource, fn)
}

// Type returns the named Type presenter, or nil.
func Type(name string) *Presenter {
	return lookup(name, KindType)
}

// Resource returns the named Resource presenter, or nil.
func Resource(name string) *Presenter {
	return lookup(name, KindResource)
}

// Name returns the presenter's registered name.
func (p *Presenter) Name() string { return p.name }

// Kind returns whether the presenter is a Type or a Resource.
func (p *Presenter) Kind() Kind { return p.kind }

// Internationalised reports whether any nested field or included schema
// declared itself internationalised.
func (p *Presenter) Internationalised() bool { return p.internationalised }

// Root returns the materialized root object of the schema tree.
func (p *Presenter) Root() *Object { return p.root }

// Walk traverses the schema tree depth first.
func (p *Presenter) Walk(fn func(Field)) {
	p.root.Walk(fn)
}

// Validate checks data against the schema, returning every problem found as
// an accumulated collection. Validation never panics on bad data.
func (p *Presenter) Validate(data map[string]any) *Errors {
	errs := NewErrors()
	var value any
	if data != nil {
		value = data
	}
	p.root.Validate(value, data != nil, "", errs)
	return errs
}

// Render projects data through the schema without any resource envelope.
func (p *Presenter) Render(data map[string]any) map[string]any {
	rendered, _ := p.root.Render(data).(map[string]any)
	return rendered
}

// RenderOptions carries the envelope values used when rendering a Resource
// representation.
type RenderOptions struct {
	UUID      string
	CreatedAt time.Time
	Language  string
}

// RenderResource projects data through the schema and, for Resource
// presenters, adds the conventional envelope fields: id, kind, created_at
// and, for internationalised resources only, language. Type presenters
// render without an envelope regardless of options.
func (p *Presenter) RenderResource(data map[string]any, opts RenderOptions) map[string]any {
	rendered := p.Render(data)
	if p.kind != KindResource {
		return rendered
	}
	if rendered == nil {
		rendered = make(map[string]any)
	}
	if opts.UUID != "" {
		rendered["id"] = opts.UUID
	}
	rendered["kind"] = p.name
	if !opts.CreatedAt.IsZero() {
		rendered["created_at"] = opts.CreatedAt.UTC().Format(time.RFC3339)
	}
	if p.internationalised {
		language := opts.Language
		if language == "" {
			language = DefaultLanguage
		}
		rendered["language"] = language
	}
	return rendered
}

// ValidatedRender validates data and, only when it is clean, renders it.
// On validation failure the render result is nil and the error collection
// is returned.
func (p *Presenter) ValidatedRender(data map[string]any) (map[string]any, *Errors) {
	errs := p.Validate(data)
	if errs.HasErrors() {
		return nil, errs
	}
	return p.Render(data), nil
}

// DefaultLanguage is the language rendered for internationalised resources
// when the caller supplies none.
const DefaultLanguage = "en-nz"
