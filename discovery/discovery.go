package discovery

import (
	"context"
	"fmt"

	"github.com/c360/resourcekit/resource"
)

// Kind tags a resolved location. Exactly one kind applies to any Location.
type Kind string

// The four resolution outcomes.
const (
	KindLocal    Kind = "local"
	KindHTTP     Kind = "http"
	KindQueue    Kind = "queue"
	KindNotFound Kind = "not_found"
)

// Location is the tagged result of resolving a resource. Only the fields of
// the active Kind are meaningful; a Location is never mutated after
// construction.
type Location struct {
	Kind    Kind
	Name    string
	Version int

	// Local
	Handler resource.Handler

	// HTTP: fully-formed endpoint URI for the resource.
	BaseURI string

	// Queue: NATS subject plus the resource path used inside the payload.
	QueueName string
	Path      string
}

// Local builds an in-process location for the handler.
func Local(name string, version int, handler resource.Handler) Location {
	return Location{Kind: KindLocal, Name: name, Version: version, Handler: handler}
}

// HTTP builds a remote HTTP location.
func HTTP(name string, version int, baseURI string) Location {
	return Location{Kind: KindHTTP, Name: name, Version: version, BaseURI: baseURI}
}

// Queue builds a remote queue location.
func Queue(name string, version int, queueName, path string) Location {
	return Location{Kind: KindQueue, Name: name, Version: version, QueueName: queueName, Path: path}
}

// NotFound builds the sentinel location for an unowned resource.
func NotFound(name string, version int) Location {
	return Location{Kind: KindNotFound, Name: name, Version: version}
}

// String returns a short form for logs.
func (l Location) String() string {
	switch l.Kind {
	case KindHTTP:
		return fmt.Sprintf("%s/v%d@%s", l.Name, l.Version, l.BaseURI)
	case KindQueue:
		return fmt.Sprintf("%s/v%d@%s%s", l.Name, l.Version, l.QueueName, l.Path)
	default:
		return fmt.Sprintf("%s/v%d (%s)", l.Name, l.Version, l.Kind)
	}
}

// Discoverer resolves resources to locations. Implementations must be safe
// for concurrent use and cheap to call repeatedly; the dispatch core resolves
// on every endpoint construction. An unknown resource resolves to a NotFound
// location, not an error — errors are reserved for infrastructure failures
// (lost connections, malformed registry entries).
type Discoverer interface {
	// Announce records that this process serves the resource at the given
	// location, making it discoverable by peers where the implementation
	// supports that.
	Announce(ctx context.Context, loc Location) error

	// Discover resolves the named resource version.
	Discover(ctx context.Context, name string, version int) (Location, error)
}
