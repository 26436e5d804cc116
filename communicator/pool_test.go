package communicator

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventLog records fan-out activity across communicators so ordering can be
// asserted.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	copy(out, l.events)
	return out
}

// fastRecorder is a synchronous communicator that labels its events.
type fastRecorder struct {
	label string
	log   *eventLog
}

func (f *fastRecorder) Communicate(payload any) {
	f.log.add(f.label)
}

// slowRecorder is an asynchronous communicator whose first payload can be
// made to block until released.
type slowRecorder struct {
	log       *eventLog
	started   chan struct{}
	proceed   chan struct{}
	startOnce sync.Once
}

func newSlowRecorder(log *eventLog) *slowRecorder {
	return &slowRecorder{
		log:     log,
		started: make(chan struct{}),
		proceed: make(chan struct{}),
	}
}

func (s *slowRecorder) Communicate(payload any) {
	s.startOnce.Do(func() { close(s.started) })
	<-s.proceed
	s.log.add("payload")
}

func (s *slowRecorder) Dropped(count int) {
	s.log.add("dropped")
}

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestFastFanOutOrdering(t *testing.T) {
	defer leaktest.Check(t)()

	log := &eventLog{}
	pool := NewPool(testLogger())
	pool.Add(&fastRecorder{label: "A", log: log})
	pool.Add(&fastRecorder{label: "B", log: log})
	pool.Add(&fastRecorder{label: "C", log: log})

	pool.Communicate("x")
	pool.Communicate("y")

	assert.Equal(t, []string{"A", "B", "C", "A", "B", "C"}, log.snapshot())
	pool.Terminate(time.Second)
}

func TestAddIsIdempotent(t *testing.T) {
	defer leaktest.Check(t)()

	log := &eventLog{}
	pool := NewPool(testLogger())
	rec := &fastRecorder{label: "A", log: log}
	pool.Add(rec)
	pool.Add(rec)
	require.Equal(t, 1, pool.Count())

	pool.Communicate("x")
	assert.Equal(t, []string{"A"}, log.snapshot())
	pool.Terminate(time.Second)
}

func TestRemoveUnknownIsNoOp(t *testing.T) {
	defer leaktest.Check(t)()

	pool := NewPool(testLogger())
	pool.Remove(&fastRecorder{label: "A", log: &eventLog{}})
	assert.Equal(t, 0, pool.Count())
}

func TestSlowDropAccounting(t *testing.T) {
	defer leaktest.Check(t)()

	log := &eventLog{}
	slow := newSlowRecorder(log)
	pool := NewPool(testLogger())
	pool.Add(slow)

	// Block the worker on its first payload.
	pool.Communicate(0)
	<-slow.started

	// Queue cap is 50: of the next 60 payloads exactly 10 are dropped.
	for i := 1; i <= 60; i++ {
		pool.Communicate(i)
	}

	close(slow.proceed)
	pool.Wait(5 * time.Second)

	// The next accepted payload must be preceded by the drop notice.
	pool.Communicate(61)
	pool.Wait(5 * time.Second)

	events := log.snapshot()
	// 1 blocked payload + 50 queued + drop notice + 1 final payload.
	require.Len(t, events, 53)
	assert.Equal(t, "dropped", events[51])
	assert.Equal(t, "payload", events[52])

	pool.Terminate(time.Second)
}

func TestDroppedCountValue(t *testing.T) {
	defer leaktest.Check(t)()

	var mu sync.Mutex
	var drops []int
	log := &eventLog{}
	slow := newSlowRecorder(log)
	pool := NewPool(testLogger())
	pool.Add(&dropCapture{slowRecorder: slow, mu: &mu, drops: &drops})

	pool.Communicate(0)
	<-slow.started
	for i := 1; i <= 60; i++ {
		pool.Communicate(i)
	}
	close(slow.proceed)
	pool.Wait(5 * time.Second)
	pool.Communicate(61)
	pool.Wait(5 * time.Second)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, drops, 1)
	assert.Equal(t, 10, drops[0])

	pool.Terminate(time.Second)
}

// dropCapture wraps slowRecorder to capture the dropped counts it is told
// about.
type dropCapture struct {
	*slowRecorder
	mu    *sync.Mutex
	drops *[]int
}

func (d *dropCapture) Dropped(count int) {
	d.mu.Lock()
	*d.drops = append(*d.drops, count)
	d.mu.Unlock()
	d.slowRecorder.Dropped(count)
}

func TestWaitDrainsQueuedWork(t *testing.T) {
	defer leaktest.Check(t)()

	log := &eventLog{}
	slow := newSlowRecorder(log)
	close(slow.proceed) // never block
	pool := NewPool(testLogger())
	pool.Add(slow)

	for i := 0; i < 5; i++ {
		pool.Communicate(i)
	}
	pool.Wait(5 * time.Second)

	assert.Len(t, log.snapshot(), 5)
	pool.Terminate(time.Second)
}

func TestTerminateBoundedTime(t *testing.T) {
	log := &eventLog{}
	pool := NewPool(testLogger())

	var recorders []*slowRecorder
	for i := 0; i < 3; i++ {
		slow := newSlowRecorder(log)
		recorders = append(recorders, slow)
		pool.Add(slow)
		pool.Communicate(i)
		<-slow.started
	}

	start := time.Now()
	pool.Terminate(100 * time.Millisecond)
	elapsed := time.Since(start)

	// Three unresponsive workers, 0.1s each: well under a second total.
	assert.Less(t, elapsed, time.Second)
	assert.Equal(t, 0, pool.Count())

	// The pool is reusable after terminate.
	pool.Add(&fastRecorder{label: "A", log: log})
	assert.Equal(t, 1, pool.Count())
	pool.Terminate(time.Second)

	// Release the stuck workers so their goroutines can exit.
	for _, slow := range recorders {
		close(slow.proceed)
	}
}

// panicky always panics when invoked.
type panicky struct{}

func (p *panicky) Communicate(payload any) { panic("observer bug") }

// panickySlow panics on every payload but must keep consuming.
type panickySlow struct {
	mu       sync.Mutex
	attempts int
}

func (p *panickySlow) Communicate(payload any) {
	p.mu.Lock()
	p.attempts++
	p.mu.Unlock()
	panic("slow observer bug")
}

func (p *panickySlow) Dropped(count int) {}

func (p *panickySlow) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

func TestFastPanicDoesNotDisruptPeers(t *testing.T) {
	defer leaktest.Check(t)()

	log := &eventLog{}
	pool := NewPool(testLogger())
	pool.Add(&fastRecorder{label: "A", log: log})
	pool.Add(&panicky{})
	pool.Add(&fastRecorder{label: "C", log: log})

	pool.Communicate("x")

	assert.Equal(t, []string{"A", "C"}, log.snapshot())
	pool.Terminate(time.Second)
}

func TestSlowWorkerSurvivesPanics(t *testing.T) {
	defer leaktest.Check(t)()

	slow := &panickySlow{}
	pool := NewPool(testLogger())
	pool.Add(slow)

	for i := 0; i < 5; i++ {
		pool.Communicate(i)
	}
	pool.Wait(5 * time.Second)

	// Every payload was attempted despite each one panicking.
	assert.Equal(t, 5, slow.count())
	pool.Terminate(time.Second)
}
