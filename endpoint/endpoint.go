package endpoint

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/c360/resourcekit/discovery"
	"github.com/c360/resourcekit/errors"
	"github.com/c360/resourcekit/metric"
	"github.com/c360/resourcekit/natsclient"
	"github.com/c360/resourcekit/resource"
)

// Dependencies carries the collaborators every endpoint construction needs.
// Discoverer and Logger are required; HTTPClient defaults to a shared client
// with a sane timeout, and NATS may be nil when no queue-located resources
// exist in the deployment.
type Dependencies struct {
	Discoverer discovery.Discoverer
	HTTPClient *http.Client
	NATS       *natsclient.Client
	Logger     *slog.Logger
	Metrics    *metric.Metrics
}

// defaultHTTPClient bounds remote calls that carry no context deadline.
var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

// Endpoint offers the five standard actions against one resolved resource.
// It is immutable after construction and safe for concurrent use; every call
// specializes a cloned copy of the base request.
type Endpoint struct {
	base      Request
	transport Transport
	logger    *slog.Logger
	metrics   *metric.Metrics
}

// Option adjusts an endpoint's base request context at construction.
type Option func(*Endpoint)

// WithSession pins an existing session identifier onto every call.
func WithSession(sessionID string) Option {
	return func(e *Endpoint) { e.base.SessionID = sessionID }
}

// WithLanguage sets the locale sent with every call.
func WithLanguage(language string) Option {
	return func(e *Endpoint) { e.base.Language = language }
}

// WithInteractionID propagates an existing interaction identifier instead of
// generating one per call.
func WithInteractionID(id string) Option {
	return func(e *Endpoint) { e.base.InteractionID = id }
}

// WithAutoSession wraps the endpoint's transport in automatic session
// acquisition with a single retry on session invalidation.
func WithAutoSession(source SessionSource) Option {
	return func(e *Endpoint) {
		e.transport = NewSessionTransport(e.transport, source, e.metrics)
	}
}

// New resolves the resource through discovery and builds an endpoint over
// the matching transport. Construction fails only on infrastructure
// problems: a resource nobody owns still yields a working endpoint whose
// every call reports not-found.
func New(ctx context.Context, deps Dependencies, name string, version int, opts ...Option) (*Endpoint, error) {
	if deps.Discoverer == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Endpoint", "New", "discoverer validation")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = defaultHTTPClient
	}

	loc, err := deps.Discoverer.Discover(ctx, name, version)
	if err != nil {
		return nil, errors.Wrap(err, "Endpoint", "New", fmt.Sprintf("discovery of %s/v%d", name, version))
	}

	var transport Transport
	switch loc.Kind {
	case discovery.KindLocal:
		transport = localTransport{handler: loc.Handler}
	case discovery.KindHTTP:
		transport = httpTransport{client: deps.HTTPClient, baseURI: loc.BaseURI}
	case discovery.KindQueue:
		if deps.NATS == nil {
			return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Endpoint", "New",
				fmt.Sprintf("%s/v%d resolved to a queue but no NATS client is configured", name, version))
		}
		transport = queueTransport{client: deps.NATS, queueName: loc.QueueName, path: loc.Path}
	case discovery.KindNotFound:
		transport = notFoundTransport{}
	default:
		return nil, errors.WrapFatal(errors.ErrInvalidData, "Endpoint", "New",
			fmt.Sprintf("discovery returned unknown kind %q", loc.Kind))
	}

	e := &Endpoint{
		base:      Request{Name: name, Version: version},
		transport: transport,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// List fetches one page of resource instances.
func (e *Endpoint) List(ctx context.Context, q *resource.Query) *resource.Response {
	req := e.base.clone()
	req.Action = resource.ActionList
	req.Query = q
	return e.do(ctx, req)
}

// Show fetches a single resource instance by identifier.
func (e *Endpoint) Show(ctx context.Context, ident string) *resource.Response {
	req := e.base.clone()
	req.Action = resource.ActionShow
	req.Ident = ident
	return e.do(ctx, req)
}

// Create makes a new resource instance from the body.
func (e *Endpoint) Create(ctx context.Context, body resource.Payload) *resource.Response {
	req := e.base.clone()
	req.Action = resource.ActionCreate
	req.Body = body
	return e.do(ctx, req)
}

// Update modifies an existing resource instance.
func (e *Endpoint) Update(ctx context.Context, ident string, body resource.Payload) *resource.Response {
	req := e.base.clone()
	req.Action = resource.ActionUpdate
	req.Ident = ident
	req.Body = body
	return e.do(ctx, req)
}

// Delete removes a resource instance.
func (e *Endpoint) Delete(ctx context.Context, ident string) *resource.Response {
	req := e.base.clone()
	req.Action = resource.ActionDelete
	req.Ident = ident
	return e.do(ctx, req)
}

func (e *Endpoint) do(ctx context.Context, req *Request) *resource.Response {
	if req.InteractionID == "" {
		req.InteractionID = uuid.NewString()
	}

	start := time.Now()
	resp := e.transport.Do(ctx, req)
	elapsed := time.Since(start)

	if resp == nil {
		resp = faultResponse(fmt.Sprintf("transport %s returned no response", e.transport.Name()))
	}

	if e.metrics != nil {
		e.metrics.DispatchRequests.WithLabelValues(
			e.transport.Name(), string(req.Action), strconv.Itoa(resp.Status)).Inc()
		e.metrics.DispatchDuration.WithLabelValues(
			e.transport.Name(), string(req.Action)).Observe(elapsed.Seconds())
	}

	if resp.IsError() {
		e.logger.Warn("inter-resource call failed",
			"resource", req.Name,
			"version", req.Version,
			"action", req.Action,
			"transport", e.transport.Name(),
			"status", resp.Status,
			"interaction_id", req.InteractionID,
			"errors", resp.Errors.Error(),
		)
	} else {
		e.logger.Debug("inter-resource call",
			"resource", req.Name,
			"version", req.Version,
			"action", req.Action,
			"transport", e.transport.Name(),
			"status", resp.Status,
			"duration", elapsed,
		)
	}

	return resp
}
