package discovery

import (
	"context"
	"sync"

	"github.com/c360/resourcekit/metric"
	"github.com/c360/resourcekit/resource"
)

// Static is an in-memory discoverer backed by an explicit table, suitable for
// tests and single-process deployments. When a local handler registry is
// attached it is consulted first, so in-process resources always win over
// announced remote locations.
type Static struct {
	mu       sync.RWMutex
	table    map[resource.Key]Location
	registry *resource.Registry
	metrics  *metric.Metrics
}

// StaticOption configures a Static discoverer.
type StaticOption func(*Static)

// WithRegistry attaches a local handler registry consulted before the table.
func WithRegistry(reg *resource.Registry) StaticOption {
	return func(s *Static) { s.registry = reg }
}

// WithMetrics enables lookup counting.
func WithMetrics(m *metric.Metrics) StaticOption {
	return func(s *Static) { s.metrics = m }
}

// NewStatic creates an empty static discoverer.
func NewStatic(opts ...StaticOption) *Static {
	s := &Static{table: make(map[resource.Key]Location)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Announce records the location in the table, replacing any previous entry
// for the same resource version.
func (s *Static) Announce(_ context.Context, loc Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table[resource.Key{Name: loc.Name, Version: loc.Version}] = loc
	return nil
}

// Discover resolves from the attached registry first, then the table.
func (s *Static) Discover(_ context.Context, name string, version int) (Location, error) {
	if s.registry != nil {
		if handler := s.registry.Find(name, version); handler != nil {
			return s.resolved(Local(name, version, handler)), nil
		}
	}

	s.mu.RLock()
	loc, ok := s.table[resource.Key{Name: name, Version: version}]
	s.mu.RUnlock()

	if !ok {
		return s.resolved(NotFound(name, version)), nil
	}
	return s.resolved(loc), nil
}

func (s *Static) resolved(loc Location) Location {
	if s.metrics != nil {
		s.metrics.DiscoveryLookups.WithLabelValues(string(loc.Kind)).Inc()
	}
	return loc
}
