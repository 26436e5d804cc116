package endpoint

import (
	"net/url"
	"sort"
	"strconv"

	"github.com/c360/resourcekit/resource"
)

// Request is the transport-agnostic description of one inter-resource call.
// Endpoints hold a base Request carrying session and locale context; each
// action works on a specialized copy, never the base itself.
type Request struct {
	Action  resource.Action
	Name    string
	Version int

	// Ident is set for show, update and delete.
	Ident string

	// Body is set for create and update.
	Body resource.Payload

	// Query is set for list.
	Query *resource.Query

	SessionID     string
	Language      string
	InteractionID string
}

// clone returns a shallow copy safe to specialize for one action. Body and
// Query are owned by the single call that sets them, so sharing the pointers
// is fine.
func (r *Request) clone() *Request {
	out := *r
	return &out
}

// queryValues serializes list parameters for the HTTP and queue transports.
// Search and filter maps flatten to dotted sub-keys (search.name=...);
// embeds and references repeat under _embed and _reference.
func queryValues(q *resource.Query) url.Values {
	values := url.Values{}
	if q == nil {
		return values
	}

	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Sort != "" {
		values.Set("sort", q.Sort)
	}
	if q.Direction != "" {
		values.Set("direction", q.Direction)
	}

	for _, key := range sortedKeys(q.Search) {
		values.Set("search."+key, q.Search[key])
	}
	for _, key := range sortedKeys(q.Filter) {
		values.Set("filter."+key, q.Filter[key])
	}

	for _, embed := range q.Embeds {
		values.Add("_embed", embed)
	}
	for _, ref := range q.References {
		values.Add("_reference", ref)
	}

	return values
}

// sortedKeys keeps serialized query strings deterministic.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
