package natsclient

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/resourcekit/errors"
	"github.com/c360/resourcekit/pkg/retry"
)

// ErrNotConnected is returned by calls made before Connect or after Close.
var ErrNotConnected = stderrors.New("not connected to NATS")

// Client manages a NATS connection and its JetStream context.
type Client struct {
	url    string
	logger *slog.Logger

	mu   sync.RWMutex
	conn *nats.Conn
	js   jetstream.JetStream

	// Connection options
	name           string
	connectRetry   retry.Config
	requestTimeout time.Duration
	reconnectWait  time.Duration
	maxReconnects  int
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithName sets the client connection name reported to the server.
func WithName(name string) Option {
	return func(c *Client) { c.name = name }
}

// WithRequestTimeout sets the default timeout for request/reply calls.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.requestTimeout = d }
}

// WithConnectRetry overrides the connect-time retry configuration.
func WithConnectRetry(cfg retry.Config) Option {
	return func(c *Client) { c.connectRetry = cfg }
}

// New creates a client for the given server URL. No connection is made until
// Connect.
func New(url string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		url:            url,
		logger:         logger,
		name:           "resourcekit",
		connectRetry:   retry.Quick(),
		requestTimeout: 5 * time.Second,
		reconnectWait:  2 * time.Second,
		maxReconnects:  -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect establishes the connection, retrying transient failures with
// backoff until the context is done or the retry budget is spent.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Client", "Connect", "duplicate connect")
	}

	conn, err := retry.DoWithResult(ctx, c.connectRetry, func() (*nats.Conn, error) {
		return nats.Connect(c.url,
			nats.Name(c.name),
			nats.ReconnectWait(c.reconnectWait),
			nats.MaxReconnects(c.maxReconnects),
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				if err != nil {
					c.logger.Warn("nats disconnected", "error", err)
				}
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				c.logger.Info("nats reconnected", "url", nc.ConnectedUrl())
			}),
		)
	})
	if err != nil {
		return errors.WrapTransient(err, "Client", "Connect", "nats connection")
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return errors.WrapFatal(err, "Client", "Connect", "jetstream context")
	}

	c.conn = conn
	c.js = js
	c.logger.Info("nats connected", "url", conn.ConnectedUrl())
	return nil
}

// Close drains and closes the connection. Closing an unconnected client is a
// no-op.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		c.logger.Warn("nats drain", "error", err)
	}
	c.conn = nil
	c.js = nil
}

// Connected reports whether the client currently holds a live connection.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil && c.conn.IsConnected()
}

// Request performs a request/reply round trip on the subject, honoring the
// context deadline when it is earlier than the client's default timeout.
func (c *Client) Request(ctx context.Context, subject string, data []byte) ([]byte, error) {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return nil, errors.WrapTransient(ErrNotConnected, "Client", "Request", "connection check")
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	msg, err := conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return nil, errors.WrapTransient(err, "Client", "Request",
			fmt.Sprintf("request on %s", subject))
	}
	return msg.Data, nil
}

// Publish sends a fire-and-forget message on the subject.
func (c *Client) Publish(subject string, data []byte) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return errors.WrapTransient(ErrNotConnected, "Client", "Publish", "connection check")
	}
	if err := conn.Publish(subject, data); err != nil {
		return errors.WrapTransient(err, "Client", "Publish",
			fmt.Sprintf("publish on %s", subject))
	}
	return nil
}

// KeyValue returns the named JetStream KV bucket, creating it when absent.
func (c *Client) KeyValue(ctx context.Context, bucket string) (jetstream.KeyValue, error) {
	c.mu.RLock()
	js := c.js
	c.mu.RUnlock()

	if js == nil {
		return nil, errors.WrapTransient(ErrNotConnected, "Client", "KeyValue", "connection check")
	}

	kv, err := js.KeyValue(ctx, bucket)
	if err == nil {
		return kv, nil
	}
	if !stderrors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, errors.WrapTransient(err, "Client", "KeyValue",
			fmt.Sprintf("bucket %s lookup", bucket))
	}

	kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
	if err != nil {
		return nil, errors.WrapTransient(err, "Client", "KeyValue",
			fmt.Sprintf("bucket %s creation", bucket))
	}
	return kv, nil
}
