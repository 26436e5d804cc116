package endpoint

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/resourcekit/discovery"
	"github.com/c360/resourcekit/resource"
	"github.com/c360/resourcekit/schema"
)

// itemsHandler serves a fixed dataset for list paging tests and records the
// requests it receives. errorAtOffset, when non-negative, turns the page
// starting there into an error page.
type itemsHandler struct {
	items         []resource.Payload
	errorAtOffset int
	requests      []*resource.Request
}

func newItemsHandler(n int) *itemsHandler {
	h := &itemsHandler{errorAtOffset: -1}
	for i := 0; i < n; i++ {
		h.items = append(h.items, resource.Payload{"id": fmt.Sprintf("item-%03d", i)})
	}
	return h
}

func (h *itemsHandler) List(_ context.Context, req *resource.Request) *resource.Response {
	h.requests = append(h.requests, req)

	offset, limit := 0, resource.DefaultPageSize
	if req.Query != nil {
		offset = req.Query.Offset
		limit = req.Query.PageSize()
	}

	if h.errorAtOffset >= 0 && offset >= h.errorAtOffset {
		errs := schema.NewErrors()
		errs.Add(schema.CodeFault, "Backing store unavailable", "")
		return resource.Failed(errs)
	}

	end := offset + limit
	if end > len(h.items) {
		end = len(h.items)
	}
	if offset > len(h.items) {
		offset = len(h.items)
	}
	return resource.OKList(h.items[offset:end], len(h.items))
}

func (h *itemsHandler) Show(_ context.Context, req *resource.Request) *resource.Response {
	h.requests = append(h.requests, req)
	for _, item := range h.items {
		if item["id"] == req.Ident {
			return resource.OK(item)
		}
	}
	return resource.NotFound(req.Ident)
}

func (h *itemsHandler) Create(_ context.Context, req *resource.Request) *resource.Response {
	h.requests = append(h.requests, req)
	return resource.OK(req.Body)
}

func (h *itemsHandler) Update(_ context.Context, req *resource.Request) *resource.Response {
	h.requests = append(h.requests, req)
	return resource.OK(req.Body)
}

func (h *itemsHandler) Delete(_ context.Context, req *resource.Request) *resource.Response {
	h.requests = append(h.requests, req)
	return resource.OK(nil)
}

func localEndpoint(t *testing.T, handler resource.Handler, opts ...Option) *Endpoint {
	t.Helper()

	reg := resource.NewRegistry()
	require.NoError(t, reg.Register("Item", 1, handler))

	ep, err := New(context.Background(),
		Dependencies{Discoverer: discovery.NewStatic(discovery.WithRegistry(reg))},
		"Item", 1, opts...)
	require.NoError(t, err)
	return ep
}

func TestLocalDispatch(t *testing.T) {
	handler := newItemsHandler(3)
	ep := localEndpoint(t, handler)
	ctx := context.Background()

	resp := ep.Show(ctx, "item-001")
	require.False(t, resp.IsError())
	assert.Equal(t, "item-001", resp.Resource["id"])

	resp = ep.Show(ctx, "missing")
	require.True(t, resp.IsError())
	assert.Equal(t, 404, resp.Status)

	resp = ep.Create(ctx, resource.Payload{"id": "new"})
	require.False(t, resp.IsError())
	assert.Equal(t, "new", resp.Resource["id"])
}

func TestDispatchGeneratesInteractionID(t *testing.T) {
	handler := newItemsHandler(1)
	ep := localEndpoint(t, handler)

	ep.Show(context.Background(), "item-000")
	require.Len(t, handler.requests, 1)
	assert.NotEmpty(t, handler.requests[0].InteractionID)
}

func TestDispatchPropagatesContext(t *testing.T) {
	handler := newItemsHandler(1)
	ep := localEndpoint(t, handler,
		WithSession("session-1"), WithLanguage("fr"), WithInteractionID("int-1"))

	ep.Show(context.Background(), "item-000")
	require.Len(t, handler.requests, 1)
	req := handler.requests[0]
	assert.Equal(t, "session-1", req.SessionID)
	assert.Equal(t, "fr", req.Language)
	assert.Equal(t, "int-1", req.InteractionID)
}

func TestNotFoundEndpointNeverCalls(t *testing.T) {
	ep, err := New(context.Background(),
		Dependencies{Discoverer: discovery.NewStatic()}, "Ghost", 1)
	require.NoError(t, err)

	resp := ep.Show(context.Background(), "anything")
	require.True(t, resp.IsError())
	assert.Equal(t, 404, resp.Status)
	assert.True(t, resp.HasErrorCode(schema.CodeNotFound))
}

func TestHTTPDispatch(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotSession, gotLanguage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotSession = r.Header.Get("X-Session-ID")
		gotLanguage = r.Header.Get("Accept-Language")
		fmt.Fprint(w, `{"id":"p1","amount":12}`)
	}))
	defer server.Close()

	disc := discovery.NewStatic()
	require.NoError(t, disc.Announce(context.Background(),
		discovery.HTTP("Purchase", 1, server.URL+"/v1/purchases")))

	ep, err := New(context.Background(), Dependencies{Discoverer: disc},
		"Purchase", 1, WithSession("session-9"), WithLanguage("de"))
	require.NoError(t, err)

	resp := ep.List(context.Background(), &resource.Query{
		Limit:  25,
		Search: map[string]string{"state": "paid"},
		Embeds: []string{"items"},
	})
	require.False(t, resp.IsError())
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/v1/purchases", gotPath)
	assert.Contains(t, gotQuery, "limit=25")
	assert.Contains(t, gotQuery, "search.state=paid")
	assert.Contains(t, gotQuery, "_embed=items")
	assert.Equal(t, "session-9", gotSession)
	assert.Equal(t, "de", gotLanguage)

	resp = ep.Update(context.Background(), "p1", resource.Payload{"amount": 13})
	require.False(t, resp.IsError())
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/v1/purchases/p1", gotPath)

	resp = ep.Delete(context.Background(), "p1")
	require.False(t, resp.IsError())
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestHTTPConnectionRefusedBecomesNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	base := server.URL
	server.Close() // nothing is listening any more

	disc := discovery.NewStatic()
	require.NoError(t, disc.Announce(context.Background(),
		discovery.HTTP("Purchase", 1, base+"/v1/purchases")))

	ep, err := New(context.Background(), Dependencies{Discoverer: disc}, "Purchase", 1)
	require.NoError(t, err)

	resp := ep.Show(context.Background(), "p1")
	require.True(t, resp.IsError())
	assert.Equal(t, 404, resp.Status)
	assert.True(t, resp.HasErrorCode(schema.CodeNotFound))
}

func TestVerbMapping(t *testing.T) {
	assert.Equal(t, http.MethodPost, verbFor(resource.ActionCreate))
	assert.Equal(t, http.MethodPatch, verbFor(resource.ActionUpdate))
	assert.Equal(t, http.MethodDelete, verbFor(resource.ActionDelete))
	assert.Equal(t, http.MethodGet, verbFor(resource.ActionList))
	assert.Equal(t, http.MethodGet, verbFor(resource.ActionShow))
}

func TestEnumerateAllWalksEveryPage(t *testing.T) {
	handler := newItemsHandler(120)
	ep := localEndpoint(t, handler)

	var seen []string
	ep.EnumerateAll(context.Background(), nil, func(item resource.Payload, errs *schema.Errors) bool {
		require.Nil(t, errs)
		seen = append(seen, item["id"].(string))
		return true
	})

	require.Len(t, seen, 120)
	assert.Equal(t, "item-000", seen[0])
	assert.Equal(t, "item-119", seen[119])
	// 50, 50, 20: three pages.
	assert.Len(t, handler.requests, 3)
}

func TestEnumerateAllStopsAtFirstErrorPage(t *testing.T) {
	handler := newItemsHandler(200)
	handler.errorAtOffset = 100
	ep := localEndpoint(t, handler)

	var seen int
	var gotErrs *schema.Errors
	ep.EnumerateAll(context.Background(), nil, func(item resource.Payload, errs *schema.Errors) bool {
		if errs != nil {
			gotErrs = errs
			return true
		}
		seen++
		return true
	})

	assert.Equal(t, 100, seen)
	require.NotNil(t, gotErrs)
	assert.Equal(t, schema.CodeFault, gotErrs.Errors()[0].Code)
}

func TestEnumerateAllEarlyStop(t *testing.T) {
	handler := newItemsHandler(200)
	ep := localEndpoint(t, handler)

	var seen int
	ep.EnumerateAll(context.Background(), nil, func(item resource.Payload, errs *schema.Errors) bool {
		seen++
		return seen < 10
	})

	assert.Equal(t, 10, seen)
	// Stopping inside the first page must not fetch a second one.
	assert.Len(t, handler.requests, 1)
}

func TestEnumerateAllHonorsPageSize(t *testing.T) {
	handler := newItemsHandler(25)
	ep := localEndpoint(t, handler)

	var seen int
	ep.EnumerateAll(context.Background(), &resource.Query{Limit: 10}, func(item resource.Payload, errs *schema.Errors) bool {
		require.Nil(t, errs)
		seen++
		return true
	})

	assert.Equal(t, 25, seen)
	assert.Len(t, handler.requests, 3) // 10, 10, 5
}
