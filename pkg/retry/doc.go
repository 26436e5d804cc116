// Package retry provides exponential backoff retry for transient
// infrastructure failures, such as connecting to NATS at startup.
//
// It is intentionally minimal: backoff with jitter, a non-retryable error
// marker, and nothing else — no circuit breakers, no metrics, no error
// classification. It is deliberately not used where a policy demands a
// fixed number of attempts, like the dispatch core's single-retry session
// handling.
//
// All operations respect context cancellation, both between attempts and
// during backoff sleeps.
package retry
