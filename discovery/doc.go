// Package discovery resolves a resource name and version to a location the
// dispatch core can call.
//
// A resolution produces exactly one of four location kinds:
//
//   - Local: an in-process handler, called directly with no serialization.
//   - HTTP: a remote service reachable at a base URI.
//   - Queue: a remote service reachable over NATS request/reply at a queue
//     name plus path.
//   - NotFound: nothing owns the resource; the dispatch core synthesizes a
//     404-equivalent response without any I/O.
//
// The Discoverer interface is injected into the dispatch core at
// construction. Three implementations are provided: Static (an in-memory
// table, consulted after any attached local registry), ByConvention (derives
// an HTTP base URI from the resource name), and KV (a shared JetStream
// key-value bucket services announce into and look up from).
package discovery
