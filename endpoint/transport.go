package endpoint

import (
	"context"
	"fmt"

	"github.com/c360/resourcekit/resource"
	"github.com/c360/resourcekit/schema"
)

// Transport carries one specialized request to a resource implementation and
// returns the normalized response. Implementations return a Go error only
// for programmer-level misuse; every runtime condition, including network
// failure, comes back as a response carrying an error collection.
type Transport interface {
	Do(ctx context.Context, req *Request) *resource.Response
	Name() string
}

// notFoundTransport serves resources discovery has already determined do not
// exist. Every action synthesizes a 404-equivalent response without any I/O,
// sparing the caller a pointless network attempt.
type notFoundTransport struct{}

func (notFoundTransport) Name() string { return "not_found" }

func (notFoundTransport) Do(_ context.Context, req *Request) *resource.Response {
	reference := req.Ident
	if reference == "" {
		reference = fmt.Sprintf("%s/v%d", req.Name, req.Version)
	}
	return resource.NotFound(reference)
}

// localTransport calls an in-process handler directly, with no serialization
// or network hop.
type localTransport struct {
	handler resource.Handler
}

func (localTransport) Name() string { return "local" }

func (t localTransport) Do(ctx context.Context, req *Request) *resource.Response {
	inner := &resource.Request{
		Action:        req.Action,
		Ident:         req.Ident,
		Body:          req.Body,
		Query:         req.Query,
		SessionID:     req.SessionID,
		Language:      req.Language,
		InteractionID: req.InteractionID,
	}

	var resp *resource.Response
	switch req.Action {
	case resource.ActionList:
		resp = t.handler.List(ctx, inner)
	case resource.ActionShow:
		resp = t.handler.Show(ctx, inner)
	case resource.ActionCreate:
		resp = t.handler.Create(ctx, inner)
	case resource.ActionUpdate:
		resp = t.handler.Update(ctx, inner)
	case resource.ActionDelete:
		resp = t.handler.Delete(ctx, inner)
	default:
		return faultResponse(fmt.Sprintf("unknown action %q", req.Action))
	}

	if resp == nil {
		return faultResponse(fmt.Sprintf("handler for %s returned no response", req.Name))
	}
	if resp.IsError() && resp.Status == 0 {
		resp.Status = resp.Errors.Status()
	}
	return resp
}

// timeoutResponse is shared by the remote transports when a context deadline
// expires mid-call.
func timeoutResponse() *resource.Response {
	errs := schema.NewErrors()
	errs.Add(schema.CodeTimeout, "Inter-resource call timed out", "")
	return resource.Failed(errs)
}
