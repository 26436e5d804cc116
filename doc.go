// Package resourcekit is a middleware toolkit for services that expose and
// consume named, versioned resources.
//
// It provides three cooperating subsystems:
//
//   - schema: a declarative field-tree DSL with accumulating validation,
//     defaults-only-on-absence rendering and composable Type/Resource
//     definitions.
//   - communicator: an observer pool that fans payloads out to fast inline
//     consumers and slow queued ones, dropping rather than blocking when a
//     slow consumer falls behind.
//   - endpoint + discovery: a dispatch core that resolves a resource to a
//     local handler, a remote HTTP service or a NATS queue, and offers the
//     five standard actions over whichever transport applies.
//
// Supporting packages carry the ambient concerns: errors (classified error
// wrapping), logging (the structured report sink), metric (Prometheus
// instrumentation), natsclient (the shared NATS connection) and config
// (file plus environment configuration).
package resourcekit
