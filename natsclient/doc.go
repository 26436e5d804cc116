// Package natsclient manages the toolkit's NATS connection.
//
// It wraps a single nats.Conn behind connect-time retry with exponential
// backoff, request/reply helpers used by the queue transport, publish used
// by the structured-log writer, and JetStream key-value bucket access used
// by KV-backed discovery.
package natsclient
