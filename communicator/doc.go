// Package communicator provides an ordered fan-out pool for telemetry and
// logging observers.
//
// # Overview
//
// A Pool holds registered communicators of two kinds. Fast communicators run
// synchronously on the calling goroutine, strictly in registration order.
// Slow communicators each get a dedicated worker goroutine behind a bounded
// queue: a slow or hung consumer never blocks the producer or its peers.
//
//	pool := communicator.NewPool(logger)
//	pool.Add(consoleWriter)            // fast
//	pool.Add(remoteWriter)             // slow: implements communicator.Slow
//	pool.Communicate(entry)
//
// # Backpressure By Dropping
//
// When a slow communicator's queue is at capacity the message is counted and
// discarded rather than blocking the producer. Before the next successfully
// enqueued payload the communicator's Dropped hook is invoked with the number
// of messages lost, so consumers can summarize the gap.
//
// # Isolation
//
// A panic inside any communicator's hooks is caught, reported to the pool's
// logger and never propagated. Slow workers resume consuming after a panic,
// so one bad message cannot kill a worker.
//
// # Draining And Teardown
//
// Wait pushes a sync marker through the target queues and blocks, bounded by
// a timeout, until each worker has processed everything enqueued before the
// marker. Terminate clears the queues, asks each worker to exit, joins each
// with a bounded timeout, and empties the pool; workers that fail to stop in
// time are abandoned rather than waited on forever.
package communicator
