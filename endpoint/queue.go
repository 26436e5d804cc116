package endpoint

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/c360/resourcekit/natsclient"
	"github.com/c360/resourcekit/resource"
	"github.com/c360/resourcekit/schema"
)

// queueEnvelope is the HTTP-emulating request carried over NATS
// request/reply. Host and port are cosmetic placeholders: the shared
// response-parsing code expects an HTTP-shaped request, but the queue name
// alone routes the message.
type queueEnvelope struct {
	Verb    string            `json:"verb"`
	Path    string            `json:"path"`
	Query   string            `json:"query,omitempty"`
	Body    json.RawMessage   `json:"body,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Host    string            `json:"host"`
	Port    int               `json:"port"`
}

// queueReply is the HTTP-emulating response returned by the serving side.
type queueReply struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
}

// queueTransport reaches a remote resource over NATS request/reply with
// emulated HTTP semantics.
type queueTransport struct {
	client    *natsclient.Client
	queueName string
	path      string
}

func (queueTransport) Name() string { return "queue" }

func (t queueTransport) Do(ctx context.Context, req *Request) *resource.Response {
	path := strings.TrimRight(t.path, "/")
	if req.Ident != "" {
		path += "/" + req.Ident
	}

	env := queueEnvelope{
		Verb:    verbFor(req.Action),
		Path:    path,
		Query:   queryValues(req.Query).Encode(),
		Headers: headerMap(req),
		Host:    "localhost",
		Port:    80,
	}
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return faultResponse("could not serialize request body: " + err.Error())
		}
		env.Body = data
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return faultResponse("could not serialize queue envelope: " + err.Error())
	}

	raw, err := t.client.Request(ctx, t.queueName, payload)
	if err != nil {
		return queueErrorResponse(ctx, err)
	}

	var reply queueReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return faultResponse("could not parse queue reply envelope: " + err.Error())
	}
	return parseRawResponse(reply.StatusCode, reply.Body)
}

func headerMap(req *Request) map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json; charset=utf-8",
	}
	if req.Language != "" {
		headers["Content-Language"] = req.Language
		headers["Accept-Language"] = req.Language
	}
	if req.SessionID != "" {
		headers["X-Session-ID"] = req.SessionID
	}
	if req.InteractionID != "" {
		headers["X-Interaction-ID"] = req.InteractionID
	}
	return headers
}

// queueErrorResponse mirrors transportErrorResponse for the queue path: no
// responder on the subject reads as not-found, deadline expiry as timeout.
func queueErrorResponse(ctx context.Context, err error) *resource.Response {
	switch {
	case stderrors.Is(err, nats.ErrNoResponders):
		errs := schema.NewErrors()
		errs.Add(schema.CodeNotFound, "No service is listening on the resource queue", "")
		return resource.Failed(errs)
	case stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, nats.ErrTimeout) || ctx.Err() != nil:
		return timeoutResponse()
	default:
		return faultResponse("inter-resource queue call failed: " + err.Error())
	}
}
