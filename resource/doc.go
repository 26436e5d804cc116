// Package resource defines the types shared between local resource
// implementations and the dispatch core: the five standard actions, the
// request and response shapes they exchange, and a thread-safe registry of
// in-process handlers.
//
// A service hosting resources implements Handler for each resource it owns
// and registers it:
//
//	registry := resource.NewRegistry()
//	err := registry.Register("Purchase", 1, purchaseHandler)
//
// The dispatch core consults the registry (via discovery) so callers on the
// same process reach the handler directly, with no serialization or network
// hop, while callers elsewhere go through a remote transport.
package resource
