package logging

import (
	"encoding/json"
	"log/slog"
)

// ConsoleWriter emits reports through a slog.Logger on the caller's
// goroutine. It is a fast communicator: console output is assumed cheap
// enough to run inline.
type ConsoleWriter struct {
	slogger *slog.Logger
}

// NewConsoleWriter creates a console writer over the given slog logger.
func NewConsoleWriter(slogger *slog.Logger) *ConsoleWriter {
	return &ConsoleWriter{slogger: slogger}
}

// Communicate writes one report.
func (w *ConsoleWriter) Communicate(payload any) {
	report, ok := payload.(Report)
	if !ok {
		return
	}

	attrs := []any{"component", report.Component, "code", report.Code}
	for k, v := range report.Data {
		attrs = append(attrs, k, v)
	}

	switch report.Level {
	case LevelDebug:
		w.slogger.Debug(report.Code, attrs...)
	case LevelWarn:
		w.slogger.Warn(report.Code, attrs...)
	case LevelError:
		w.slogger.Error(report.Code, attrs...)
	default:
		w.slogger.Info(report.Code, attrs...)
	}
}

// Publisher is the subset of the NATS client the stream writer needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// DefaultLogSubject is the subject stream writers publish to unless
// configured otherwise.
const DefaultLogSubject = "platform.logs"

// StreamWriter publishes reports to a NATS subject as JSON. It is a slow
// communicator: publishing happens on a dedicated worker goroutine behind a
// bounded queue, so a stalled log stream drops reports instead of blocking
// the services producing them. Publish failures are swallowed after a local
// note.
type StreamWriter struct {
	publisher Publisher
	subject   string
	slogger   *slog.Logger
}

// NewStreamWriter creates a stream writer. An empty subject uses
// DefaultLogSubject.
func NewStreamWriter(publisher Publisher, subject string, slogger *slog.Logger) *StreamWriter {
	if subject == "" {
		subject = DefaultLogSubject
	}
	return &StreamWriter{publisher: publisher, subject: subject, slogger: slogger}
}

// Communicate publishes one report.
func (w *StreamWriter) Communicate(payload any) {
	report, ok := payload.(Report)
	if !ok {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		w.slogger.Warn("log report serialization failed", "error", err)
		return
	}
	if err := w.publisher.Publish(w.subject, data); err != nil {
		w.slogger.Warn("log report publish failed", "error", err)
	}
}

// Dropped notes how many reports were lost to backpressure since the last
// successfully queued one.
func (w *StreamWriter) Dropped(count int) {
	report := Report{
		Level:     LevelWarn,
		Component: "logging",
		Code:      "reports_dropped",
		Data:      map[string]any{"count": count},
	}
	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := w.publisher.Publish(w.subject, data); err != nil {
		w.slogger.Warn("drop notice publish failed", "error", err, "count", count)
	}
}
