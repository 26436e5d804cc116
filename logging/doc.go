// Package logging provides the platform's structured report sink.
//
// A Logger fans every report out through a communicator pool: a console
// writer runs as a fast communicator on the caller's goroutine, and an
// optional NATS writer runs as a slow communicator so a struggling log
// stream can never block the code doing the logging. When both are active,
// console echo is an explicit configuration choice, not an inference.
//
// Report never returns an error and never panics out to the caller: the
// sink is routinely invoked from failure paths, so any internal problem is
// swallowed after a best-effort local note.
package logging
