package communicator

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/c360/resourcekit/metric"
)

// Communicator is an observer invoked for every payload given to
// Pool.Communicate. Implementations registered directly run synchronously on
// the calling goroutine ("fast"); implementations that also satisfy Slow run
// asynchronously on a dedicated worker.
type Communicator interface {
	Communicate(payload any)
}

// Slow marks a communicator as asynchronous. The pool gives each Slow
// communicator its own worker goroutine and bounded queue. Dropped is called
// with the number of payloads discarded because the queue was full, before
// the next successfully delivered payload.
type Slow interface {
	Communicator
	Dropped(count int)
}

// MaxQueueSize is the payload capacity of each slow communicator's queue.
// Payloads arriving while the queue is at capacity are counted and dropped.
const MaxQueueSize = 50

// DefaultTimeout bounds joins during Remove when no explicit timeout is
// given.
const DefaultTimeout = 5 * time.Second

// registration is the pool's bookkeeping for one communicator. Slow fields
// are nil for fast communicators.
type registration struct {
	comm    Communicator
	slow    Slow
	queue   *workQueue
	done    chan struct{}
	dropped int
}

// Pool manages registered communicators and fans payloads out to them:
// fast ones inline in registration order, slow ones via per-communicator
// workers. The zero value is not usable; construct with NewPool.
type Pool struct {
	mu      sync.Mutex
	order   []*registration
	byComm  map[Communicator]*registration
	logger  *slog.Logger
	metrics *metric.Metrics
}

// Option configures a Pool at construction time.
type Option func(*Pool)

// WithMetrics attaches platform metrics so fan-outs and drops are counted.
func WithMetrics(m *metric.Metrics) Option {
	return func(p *Pool) { p.metrics = m }
}

// NewPool returns an empty pool. The logger receives reports of communicator
// panics; it must not be nil.
func NewPool(logger *slog.Logger, opts ...Option) *Pool {
	p := &Pool{
		byComm: make(map[Communicator]*registration),
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add registers a communicator. Adding one that is already present is a
// no-op. Communicators implementing Slow get a worker goroutine and queue;
// everything else is invoked inline by Communicate.
func (p *Pool) Add(c Communicator) {
	if c == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byComm[c]; exists {
		return
	}
	reg := &registration{comm: c}
	if slow, ok := c.(Slow); ok {
		reg.slow = slow
		reg.queue = newWorkQueue()
		reg.done = make(chan struct{})
		go p.work(reg)
	}
	p.order = append(p.order, reg)
	p.byComm[c] = reg
}

// Remove deregisters a communicator. Removing one that is not present is a
// no-op. For slow communicators the worker is asked to exit and joined for
// up to DefaultTimeout; the registration is deleted regardless of whether
// the worker actually stopped.
func (p *Pool) Remove(c Communicator) {
	p.mu.Lock()
	defer p.mu.Unlock()

	reg, exists := p.byComm[c]
	if !exists {
		return
	}
	if reg.slow != nil {
		reg.queue.push(queueEntry{kind: entryTerminate})
		select {
		case <-reg.done:
		case <-time.After(DefaultTimeout):
			p.logger.Warn("communicator worker did not stop in time",
				"communicator", fmt.Sprintf("%T", c))
		}
	}
	p.drop(reg)
}

// drop removes reg from the pool's bookkeeping. Caller holds the lock.
func (p *Pool) drop(reg *registration) {
	delete(p.byComm, reg.comm)
	for i, r := range p.order {
		if r == reg {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Communicate fans the payload out to every registered communicator in
// registration order. Fast communicators run inline with panics caught and
// reported. Slow communicators have the payload enqueued if their queue has
// room, preceded by a drop notice when messages were lost since the last
// delivery; otherwise the payload is counted as dropped and skipped.
func (p *Pool) Communicate(payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, reg := range p.order {
		if reg.slow == nil {
			p.invoke(reg.comm, payload)
			continue
		}
		if reg.queue.size() < MaxQueueSize {
			if reg.dropped > 0 {
				reg.queue.push(queueEntry{kind: entryDropped, dropped: reg.dropped})
				reg.dropped = 0
			}
			reg.queue.push(queueEntry{kind: entryPayload, payload: payload})
		} else {
			reg.dropped++
			if p.metrics != nil {
				p.metrics.CommunicatorDropped.Inc()
			}
		}
	}
	if p.metrics != nil {
		p.metrics.Communications.Inc()
	}
}

// Wait pushes a sync marker onto the queues of the given slow communicators
// (or all of them when none are named) and blocks until each worker has
// processed everything enqueued before the marker, bounded per communicator
// by the timeout. A timeout is not an error; the sync is best effort.
func (p *Pool) Wait(timeout time.Duration, comms ...Communicator) {
	p.mu.Lock()
	targets := p.selectSlow(comms)
	acks := make([]chan struct{}, len(targets))
	for i, reg := range targets {
		acks[i] = make(chan struct{})
		reg.queue.push(queueEntry{kind: entrySync, ack: acks[i]})
	}
	p.mu.Unlock()

	for _, ack := range acks {
		select {
		case <-ack:
		case <-time.After(timeout):
		}
	}
}

// selectSlow returns the slow registrations matching comms, or all slow
// registrations when comms is empty. Caller holds the lock.
func (p *Pool) selectSlow(comms []Communicator) []*registration {
	var targets []*registration
	if len(comms) == 0 {
		for _, reg := range p.order {
			if reg.slow != nil {
				targets = append(targets, reg)
			}
		}
		return targets
	}
	for _, c := range comms {
		if reg, ok := p.byComm[c]; ok && reg.slow != nil {
			targets = append(targets, reg)
		}
	}
	return targets
}

// Terminate drains and empties the pool: every slow communicator's queue is
// cleared, its worker asked to exit and joined for up to the per-instance
// timeout, and every registration (fast and slow) removed. Workers that do
// not stop in time are abandoned, not waited on forever. Afterwards the pool
// is back in its post-construction state and new communicators may be added.
func (p *Pool) Terminate(perInstanceTimeout time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, reg := range p.order {
		if reg.slow == nil {
			continue
		}
		reg.queue.clear()
		reg.queue.push(queueEntry{kind: entryTerminate})
		select {
		case <-reg.done:
		case <-time.After(perInstanceTimeout):
			p.logger.Warn("communicator worker did not stop in time",
				"communicator", fmt.Sprintf("%T", reg.comm))
		}
	}
	p.order = nil
	p.byComm = make(map[Communicator]*registration)
}

// Count returns the number of registered communicators.
func (p *Pool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.order)
}

// work is the slow communicator worker loop. The outer loop restarts
// consumption after a panic so one bad message never kills the worker; only
// a terminate marker ends it.
func (p *Pool) work(reg *registration) {
	defer close(reg.done)
	for {
		if p.consume(reg) {
			return
		}
	}
}

// consume processes queue entries until a terminate marker arrives (returns
// true) or a communicator hook panics (recovered, returns false so the
// worker restarts).
func (p *Pool) consume(reg *registration) (terminated bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("communicator panicked",
				"communicator", fmt.Sprintf("%T", reg.comm),
				"panic", fmt.Sprint(r))
		}
	}()
	for {
		entry := reg.queue.pop()
		switch entry.kind {
		case entryTerminate:
			return true
		case entrySync:
			close(entry.ack)
		case entryDropped:
			reg.slow.Dropped(entry.dropped)
		case entryPayload:
			reg.slow.Communicate(entry.payload)
		}
	}
}

// invoke runs a fast communicator inline, catching and reporting panics so a
// broken observer cannot disrupt the producer or its peers.
func (p *Pool) invoke(c Communicator, payload any) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("communicator panicked",
				"communicator", fmt.Sprintf("%T", c),
				"panic", fmt.Sprint(r))
		}
	}()
	c.Communicate(payload)
}
