package endpoint

import (
	"context"
	"sync"

	"github.com/c360/resourcekit/metric"
	"github.com/c360/resourcekit/resource"
	"github.com/c360/resourcekit/schema"
)

// SessionSource acquires a session on behalf of a caller. A failed
// acquisition returns the error collection the session service produced.
type SessionSource interface {
	Acquire(ctx context.Context) (string, *schema.Errors)
}

// SessionTransport decorates another transport with automatic session
// management: it acquires a session before the first call, and when a call
// reports an invalid session it reacquires and retries exactly once. A second
// invalid-session failure is surfaced unmodified — one bounded retry, never a
// loop, so a permanently bad credential fails promptly.
type SessionTransport struct {
	inner   Transport
	source  SessionSource
	metrics *metric.Metrics

	mu        sync.Mutex
	sessionID string
}

// NewSessionTransport wraps inner with session management. Metrics may be
// nil.
func NewSessionTransport(inner Transport, source SessionSource, metrics *metric.Metrics) *SessionTransport {
	return &SessionTransport{inner: inner, source: source, metrics: metrics}
}

func (t *SessionTransport) Name() string { return t.inner.Name() }

func (t *SessionTransport) Do(ctx context.Context, req *Request) *resource.Response {
	session, errs := t.session(ctx, false)
	if errs.HasErrors() {
		return resource.Failed(errs)
	}

	attempt := req.clone()
	attempt.SessionID = session
	resp := t.inner.Do(ctx, attempt)
	if !resp.HasErrorCode(schema.CodeInvalidSession) {
		return resp
	}

	if t.metrics != nil {
		t.metrics.SessionRetries.Inc()
	}
	session, errs = t.session(ctx, true)
	if errs.HasErrors() {
		return resource.Failed(errs)
	}

	retry := req.clone()
	retry.SessionID = session
	return t.inner.Do(ctx, retry)
}

// session returns the cached session, acquiring a fresh one when none is
// cached or a refresh is forced.
func (t *SessionTransport) session(ctx context.Context, refresh bool) (string, *schema.Errors) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sessionID != "" && !refresh {
		return t.sessionID, nil
	}

	session, errs := t.source.Acquire(ctx)
	if errs.HasErrors() {
		return "", errs
	}
	t.sessionID = session
	return session, nil
}

// EndpointSessionSource acquires sessions by creating them through a Session
// resource endpoint with a caller ID and secret.
type EndpointSessionSource struct {
	sessions     *Endpoint
	callerID     string
	callerSecret string
}

// NewEndpointSessionSource builds a source over an already-constructed
// Session endpoint.
func NewEndpointSessionSource(sessions *Endpoint, callerID, callerSecret string) *EndpointSessionSource {
	return &EndpointSessionSource{sessions: sessions, callerID: callerID, callerSecret: callerSecret}
}

// Acquire creates a session and returns its identifier.
func (s *EndpointSessionSource) Acquire(ctx context.Context) (string, *schema.Errors) {
	resp := s.sessions.Create(ctx, resource.Payload{
		"caller_id":     s.callerID,
		"caller_secret": s.callerSecret,
	})
	if resp.IsError() {
		return "", resp.Errors
	}

	id, ok := resp.Resource["id"].(string)
	if !ok || id == "" {
		errs := schema.NewErrors()
		errs.Add(schema.CodeFault, "Session service returned no usable session identifier", "")
		return "", errs
	}
	return id, nil
}
