package discovery

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/resourcekit/errors"
	"github.com/c360/resourcekit/metric"
	"github.com/c360/resourcekit/natsclient"
)

// DefaultBucket is the JetStream KV bucket shared by announcing services.
const DefaultBucket = "resource-locations"

// kvEntry is the serialized form of a remote location. Local locations are
// never announced through KV: a handler reference has no wire form.
type kvEntry struct {
	Kind      Kind   `json:"kind"`
	BaseURI   string `json:"base_uri,omitempty"`
	QueueName string `json:"queue_name,omitempty"`
	Path      string `json:"path,omitempty"`
}

// KV is a discoverer backed by a shared JetStream key-value bucket. Services
// announce their HTTP or queue locations on startup; peers resolve by key
// lookup. A missing key resolves to NotFound.
type KV struct {
	client  *natsclient.Client
	bucket  string
	logger  *slog.Logger
	metrics *metric.Metrics
}

// KVOption configures a KV discoverer.
type KVOption func(*KV)

// WithBucket overrides the bucket name.
func WithBucket(name string) KVOption {
	return func(k *KV) { k.bucket = name }
}

// WithKVMetrics enables lookup counting.
func WithKVMetrics(m *metric.Metrics) KVOption {
	return func(k *KV) { k.metrics = m }
}

// NewKV creates a KV discoverer over an already-connected client.
func NewKV(client *natsclient.Client, logger *slog.Logger, opts ...KVOption) *KV {
	k := &KV{client: client, bucket: DefaultBucket, logger: logger}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// kvKey builds the bucket key for a resource version. Dots, not slashes:
// KV keys share the subject token syntax.
func kvKey(name string, version int) string {
	return fmt.Sprintf("%s.v%d", name, version)
}

// Announce publishes the location into the bucket. Local locations are
// rejected: they cannot be serialized for peers.
func (k *KV) Announce(ctx context.Context, loc Location) error {
	if loc.Kind != KindHTTP && loc.Kind != KindQueue {
		return errors.WrapInvalid(errors.ErrInvalidData, "KV", "Announce",
			fmt.Sprintf("location kind %s is not announceable", loc.Kind))
	}

	kv, err := k.client.KeyValue(ctx, k.bucket)
	if err != nil {
		return errors.Wrap(err, "KV", "Announce", "bucket access")
	}

	data, err := json.Marshal(kvEntry{
		Kind:      loc.Kind,
		BaseURI:   loc.BaseURI,
		QueueName: loc.QueueName,
		Path:      loc.Path,
	})
	if err != nil {
		return errors.WrapFatal(err, "KV", "Announce", "entry serialization")
	}

	if _, err := kv.Put(ctx, kvKey(loc.Name, loc.Version), data); err != nil {
		return errors.WrapTransient(err, "KV", "Announce", "bucket write")
	}

	k.logger.Info("announced resource location",
		"resource", loc.Name, "version", loc.Version, "kind", loc.Kind)
	return nil
}

// Discover resolves the resource from the bucket. A missing key yields a
// NotFound location; a malformed entry is an error.
func (k *KV) Discover(ctx context.Context, name string, version int) (Location, error) {
	kv, err := k.client.KeyValue(ctx, k.bucket)
	if err != nil {
		return Location{}, errors.Wrap(err, "KV", "Discover", "bucket access")
	}

	entry, err := kv.Get(ctx, kvKey(name, version))
	if err != nil {
		if stderrors.Is(err, jetstream.ErrKeyNotFound) {
			return k.resolved(NotFound(name, version)), nil
		}
		return Location{}, errors.WrapTransient(err, "KV", "Discover", "bucket read")
	}

	var stored kvEntry
	if err := json.Unmarshal(entry.Value(), &stored); err != nil {
		return Location{}, errors.WrapInvalid(err, "KV", "Discover",
			fmt.Sprintf("entry for %s.v%d", name, version))
	}

	switch stored.Kind {
	case KindHTTP:
		return k.resolved(HTTP(name, version, stored.BaseURI)), nil
	case KindQueue:
		return k.resolved(Queue(name, version, stored.QueueName, stored.Path)), nil
	default:
		return Location{}, errors.WrapInvalid(errors.ErrInvalidData, "KV", "Discover",
			fmt.Sprintf("stored kind %q for %s.v%d", stored.Kind, name, version))
	}
}

func (k *KV) resolved(loc Location) Location {
	if k.metrics != nil {
		k.metrics.DiscoveryLookups.WithLabelValues(string(loc.Kind)).Inc()
	}
	return loc
}
