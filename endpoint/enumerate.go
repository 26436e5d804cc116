package endpoint

import (
	"context"

	"github.com/c360/resourcekit/resource"
	"github.com/c360/resourcekit/schema"
)

// EnumerateAll iterates lazily over every instance of the resource, fetching
// pages on demand. The callback receives either an item or an error
// collection, never both; returning false stops the enumeration. The first
// error page ends the iteration immediately — nothing from that page is
// yielded, even entries the transport delivered before the error.
//
// The starting offset, page size, sort order and search terms of q are
// honored; q itself is never modified.
func (e *Endpoint) EnumerateAll(ctx context.Context, q *resource.Query, fn func(item resource.Payload, errs *schema.Errors) bool) {
	var page resource.Query
	if q != nil {
		page = *q
	}
	pageSize := page.PageSize()
	page.Limit = pageSize

	for {
		resp := e.List(ctx, &page)
		if resp.IsError() {
			fn(nil, resp.Errors)
			return
		}

		for _, item := range resp.Resources {
			if !fn(item, nil) {
				return
			}
		}

		if len(resp.Resources) < pageSize {
			return
		}
		page.Offset += pageSize
	}
}
