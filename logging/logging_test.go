package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturePublisher records every publish, optionally failing.
type capturePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	err      error
}

func (p *capturePublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func (p *capturePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.payloads)
}

// slowWriterTag marks the stream writer as slow for the pool.
var _ interface {
	Communicate(any)
	Dropped(int)
} = (*StreamWriter)(nil)

func discardSlogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestConsoleOnlyByDefault(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger := New(slogger)
	defer logger.Close(time.Second)

	logger.Info("dispatch", "call_made", map[string]any{"resource": "Purchase"})
	logger.Wait(time.Second)

	out := buf.String()
	assert.Contains(t, out, "call_made")
	assert.Contains(t, out, "component=dispatch")
	assert.Contains(t, out, "resource=Purchase")
}

func TestStreamWriterReplacesConsole(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(slog.NewTextHandler(&buf, nil))
	pub := &capturePublisher{}

	logger := New(slogger, WithWriter(NewStreamWriter(pub, "", slogger)))
	defer logger.Close(time.Second)

	logger.Info("dispatch", "call_made", nil)
	logger.Wait(time.Second)

	require.Equal(t, 1, pub.count())
	assert.Equal(t, DefaultLogSubject, pub.subjects[0])
	assert.NotContains(t, buf.String(), "call_made")
}

func TestEchoConsoleKeepsBothWriters(t *testing.T) {
	var buf bytes.Buffer
	slogger := slog.New(slog.NewTextHandler(&buf, nil))
	pub := &capturePublisher{}

	logger := New(slogger,
		WithWriter(NewStreamWriter(pub, "audit.logs", slogger)),
		WithEchoConsole())
	defer logger.Close(time.Second)

	logger.Warn("pool", "worker_restarted", map[string]any{"writer": "stream"})
	logger.Wait(time.Second)

	require.Equal(t, 1, pub.count())
	assert.Equal(t, "audit.logs", pub.subjects[0])
	assert.Contains(t, buf.String(), "worker_restarted")
}

func TestStreamPayloadShape(t *testing.T) {
	slogger := discardSlogger()
	pub := &capturePublisher{}

	logger := New(slogger, WithWriter(NewStreamWriter(pub, "", slogger)))
	defer logger.Close(time.Second)

	logger.Error("gateway", "upstream_failed", map[string]any{"status": 502})
	logger.Wait(time.Second)

	require.Equal(t, 1, pub.count())
	var report Report
	require.NoError(t, json.Unmarshal(pub.payloads[0], &report))
	assert.Equal(t, LevelError, report.Level)
	assert.Equal(t, "gateway", report.Component)
	assert.Equal(t, "upstream_failed", report.Code)
	assert.EqualValues(t, 502, report.Data["status"])
	assert.False(t, report.Timestamp.IsZero())
}

func TestMinLevelFiltersReports(t *testing.T) {
	slogger := discardSlogger()
	pub := &capturePublisher{}

	logger := New(slogger,
		WithWriter(NewStreamWriter(pub, "", slogger)),
		WithMinLevel(LevelWarn))
	defer logger.Close(time.Second)

	logger.Debug("dispatch", "noise", nil)
	logger.Info("dispatch", "noise", nil)
	logger.Warn("dispatch", "kept", nil)
	logger.Error("dispatch", "kept", nil)
	logger.Wait(time.Second)

	assert.Equal(t, 2, pub.count())
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	slogger := discardSlogger()
	pub := &capturePublisher{err: assert.AnError}

	logger := New(slogger, WithWriter(NewStreamWriter(pub, "", slogger)))
	defer logger.Close(time.Second)

	// Must not panic or surface anything.
	logger.Error("dispatch", "call_failed", nil)
	logger.Wait(time.Second)
}

func TestDroppedNoticePayload(t *testing.T) {
	pub := &capturePublisher{}
	w := NewStreamWriter(pub, "", discardSlogger())

	w.Dropped(10)

	require.Equal(t, 1, pub.count())
	var report Report
	require.NoError(t, json.Unmarshal(pub.payloads[0], &report))
	assert.Equal(t, "reports_dropped", report.Code)
	assert.EqualValues(t, 10, report.Data["count"])
}
