package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"syscall"

	"github.com/c360/resourcekit/resource"
	"github.com/c360/resourcekit/schema"
)

// httpTransport reaches a remote resource over plain HTTP. The location's
// base URI already includes the version and resource path; actions append
// the identifier and query string.
type httpTransport struct {
	client  *http.Client
	baseURI string
}

func (httpTransport) Name() string { return "http" }

// verbFor maps actions onto HTTP verbs.
func verbFor(action resource.Action) string {
	switch action {
	case resource.ActionCreate:
		return http.MethodPost
	case resource.ActionUpdate:
		return http.MethodPatch
	case resource.ActionDelete:
		return http.MethodDelete
	default:
		return http.MethodGet
	}
}

func (t httpTransport) Do(ctx context.Context, req *Request) *resource.Response {
	uri := strings.TrimRight(t.baseURI, "/")
	if req.Ident != "" {
		uri += "/" + req.Ident
	}
	if query := queryValues(req.Query).Encode(); query != "" {
		uri += "?" + query
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return faultResponse("could not serialize request body: " + err.Error())
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, verbFor(req.Action), uri, body)
	if err != nil {
		return faultResponse("could not build request: " + err.Error())
	}
	setHeaders(httpReq.Header, req)

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return transportErrorResponse(ctx, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return faultResponse("could not read response body: " + err.Error())
	}
	return parseRawResponse(httpResp.StatusCode, raw)
}

func setHeaders(h http.Header, req *Request) {
	h.Set("Content-Type", "application/json; charset=utf-8")
	if req.Language != "" {
		h.Set("Content-Language", req.Language)
		h.Set("Accept-Language", req.Language)
	}
	if req.SessionID != "" {
		h.Set("X-Session-ID", req.SessionID)
	}
	if req.InteractionID != "" {
		h.Set("X-Interaction-ID", req.InteractionID)
	}
}

// transportErrorResponse converts a client-level failure into a response
// value. A refused connection reads as "nothing is there": it degrades to the
// same 404-equivalent shape a not-found resource produces, so callers handle
// a down service and a missing resource identically. Deadline expiry maps to
// a timeout; anything else is a fault.
func transportErrorResponse(ctx context.Context, err error) *resource.Response {
	switch {
	case stderrors.Is(err, syscall.ECONNREFUSED):
		errs := schema.NewErrors()
		errs.Add(schema.CodeNotFound, "Inter-resource connection refused", "")
		return resource.Failed(errs)
	case stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil:
		return timeoutResponse()
	default:
		return faultResponse("inter-resource call failed: " + err.Error())
	}
}
