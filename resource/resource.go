package resource

import (
	"context"

	"github.com/c360/resourcekit/schema"
)

// Action is one of the five standard operations a resource supports.
type Action string

// The standard resource actions.
const (
	ActionList   Action = "list"
	ActionShow   Action = "show"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Payload is a structured resource representation, shaped by a schema
// presenter.
type Payload map[string]any

// Query carries list-action parameters. The zero value asks for the first
// page with default sizing.
type Query struct {
	Offset    int
	Limit     int
	Sort      string
	Direction string

	// Search and Filter are serialized as nested sub-hashes on the wire
	// (search.name=..., filter.state=...).
	Search map[string]string
	Filter map[string]string

	// Embeds and References name associated resources to in-line or
	// reference; serialized as _embed and _reference.
	Embeds     []string
	References []string
}

// DefaultPageSize is the list page size used when a query gives none.
const DefaultPageSize = 50

// PageSize returns the effective page size for the query.
func (q *Query) PageSize() int {
	if q == nil || q.Limit <= 0 {
		return DefaultPageSize
	}
	return q.Limit
}

// Request is the action-specific request a Handler receives. Fields not
// relevant to the action are zero: only show/update/delete carry Ident,
// only create/update carry Body, only list carries Query.
type Request struct {
	Action        Action
	Ident         string
	Body          Payload
	Query         *Query
	SessionID     string
	Language      string
	InteractionID string
}

// Response is the outcome of one action: either resource data or an error
// collection, never both. List responses carry Resources plus the total
// dataset size; other actions carry a single Resource.
type Response struct {
	Status      int
	Resource    Payload
	Resources   []Payload
	DatasetSize int
	Errors      *schema.Errors
}

// OK returns a single-resource success response.
func OK(payload Payload) *Response {
	return &Response{Status: 200, Resource: payload}
}

// OKList returns a list success response annotated with the total dataset
// size.
func OKList(payloads []Payload, datasetSize int) *Response {
	return &Response{Status: 200, Resources: payloads, DatasetSize: datasetSize}
}

// Failed returns an error response carrying the collection's status.
func Failed(errs *schema.Errors) *Response {
	return &Response{Status: errs.Status(), Errors: errs}
}

// NotFound returns the standard not-found error response for an identifier.
func NotFound(ident string) *Response {
	errs := schema.NewErrors()
	errs.Add(schema.CodeNotFound, "Resource not found", ident)
	return Failed(errs)
}

// IsError reports whether the response carries an error collection.
func (r *Response) IsError() bool {
	return r != nil && r.Errors.HasErrors()
}

// HasErrorCode reports whether the response carries an error with the given
// code.
func (r *Response) HasErrorCode(code string) bool {
	if !r.IsError() {
		return false
	}
	for _, e := range r.Errors.Errors() {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Handler is an in-process resource implementation. Recoverable problems are
// reported through the Response's error collection, never as panics; the
// dispatch core treats a nil Response as an internal fault.
type Handler interface {
	List(ctx context.Context, req *Request) *Response
	Show(ctx context.Context, req *Request) *Response
	Create(ctx context.Context, req *Request) *Response
	Update(ctx context.Context, req *Request) *Response
	Delete(ctx context.Context, req *Request) *Response
}
