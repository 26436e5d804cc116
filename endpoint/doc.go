// Package endpoint is the dispatch core: it turns a resolved resource
// location into a callable endpoint offering the five standard actions.
//
// An Endpoint is built from a discovery result and never mutated afterwards.
// Each action clones the endpoint's base request description and specializes
// the copy with the action, identifier, body or query, so one endpoint can
// serve concurrent calls safely. The specialized request is handed to a
// transport chosen by the location kind:
//
//   - localTransport calls an in-process handler directly.
//   - httpTransport issues a real HTTP request, mapping create to POST,
//     update to PATCH, delete to DELETE and everything else to GET. A refused
//     connection degrades to a 404-equivalent error collection rather than an
//     exception.
//   - queueTransport emulates the same HTTP semantics over NATS
//     request/reply.
//   - notFoundTransport synthesizes a 404-equivalent response for every
//     action without any I/O.
//   - SessionTransport decorates any of the above with automatic session
//     acquisition and exactly one retry when a call reports an invalid
//     session.
//
// Recoverable conditions — validation failures, not-found, timeouts, refused
// connections — are always returned as response values carrying an error
// collection, never as Go errors or panics.
package endpoint
