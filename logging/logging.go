package logging

import (
	"log/slog"
	"time"

	"github.com/c360/resourcekit/communicator"
)

// Level is the severity of a report.
type Level string

// Report severities, in ascending order.
const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// rank orders levels for threshold filtering. Unknown levels rank highest so
// they are never filtered out.
func rank(l Level) int {
	switch l {
	case LevelDebug:
		return 0
	case LevelInfo:
		return 1
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	}
	return 4
}

// Report is one structured log entry as fanned out to the writers.
type Report struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Component string         `json:"component"`
	Code      string         `json:"code"`
	Data      map[string]any `json:"data,omitempty"`
}

// Logger fans structured reports out to its writers through a communicator
// pool.
type Logger struct {
	pool     *communicator.Pool
	minLevel Level
}

// Option configures a Logger.
type Option func(*loggerConfig)

type loggerConfig struct {
	minLevel    Level
	echoConsole bool
	writers     []communicator.Communicator
}

// WithMinLevel suppresses reports below the given level. The default is
// LevelDebug (nothing suppressed).
func WithMinLevel(level Level) Option {
	return func(c *loggerConfig) { c.minLevel = level }
}

// WithEchoConsole keeps the console writer active even when other writers
// are configured. Without it, adding any writer replaces console output.
func WithEchoConsole() Option {
	return func(c *loggerConfig) { c.echoConsole = true }
}

// WithWriter adds a report writer. Writers implementing communicator.Slow
// get their own worker goroutine and bounded queue; others run inline.
func WithWriter(w communicator.Communicator) Option {
	return func(c *loggerConfig) { c.writers = append(c.writers, w) }
}

// New creates a logger. With no writers configured, reports go to the
// console via slogger; with writers configured, the console stays active
// only under WithEchoConsole. The slogger is also the diagnostic sink for
// the pool itself.
func New(slogger *slog.Logger, opts ...Option) *Logger {
	cfg := loggerConfig{minLevel: LevelDebug}
	for _, opt := range opts {
		opt(&cfg)
	}

	pool := communicator.NewPool(slogger)
	if len(cfg.writers) == 0 || cfg.echoConsole {
		pool.Add(&ConsoleWriter{slogger: slogger})
	}
	for _, w := range cfg.writers {
		pool.Add(w)
	}

	return &Logger{pool: pool, minLevel: cfg.minLevel}
}

// Report fans one structured entry out to every writer. It never fails from
// the caller's point of view.
func (l *Logger) Report(level Level, component, code string, data map[string]any) {
	if rank(level) < rank(l.minLevel) {
		return
	}
	l.pool.Communicate(Report{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Component: component,
		Code:      code,
		Data:      data,
	})
}

// Debug reports at debug level.
func (l *Logger) Debug(component, code string, data map[string]any) {
	l.Report(LevelDebug, component, code, data)
}

// Info reports at info level.
func (l *Logger) Info(component, code string, data map[string]any) {
	l.Report(LevelInfo, component, code, data)
}

// Warn reports at warn level.
func (l *Logger) Warn(component, code string, data map[string]any) {
	l.Report(LevelWarn, component, code, data)
}

// Error reports at error level.
func (l *Logger) Error(component, code string, data map[string]any) {
	l.Report(LevelError, component, code, data)
}

// Wait blocks until every slow writer has processed all reports submitted
// before the call, or the timeout passes. Best effort.
func (l *Logger) Wait(timeout time.Duration) {
	l.pool.Wait(timeout)
}

// Close drains and tears down the writer pool, bounding the wait per
// writer. The logger must not be used afterwards.
func (l *Logger) Close(perWriterTimeout time.Duration) {
	l.pool.Terminate(perWriterTimeout)
}
