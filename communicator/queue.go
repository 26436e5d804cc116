package communicator

import "sync"

// entryKind tags a queue entry. Exactly one kind is set per entry and the
// worker dispatches on it in priority order: terminate, sync, dropped,
// payload.
type entryKind int

const (
	entryTerminate entryKind = iota
	entrySync
	entryDropped
	entryPayload
)

// queueEntry is one unit of work for a slow communicator's worker.
type queueEntry struct {
	kind    entryKind
	payload any
	dropped int
	ack     chan struct{}
}

// workQueue is an unbounded thread-safe FIFO queue with a blocking pop.
// Payload admission is capped by the Pool before pushing; control markers
// (sync, terminate, dropped) are always admitted so draining and shutdown
// cannot themselves be dropped.
type workQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	entries []queueEntry
}

func newWorkQueue() *workQueue {
	q := &workQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends an entry and wakes the worker.
func (q *workQueue) push(e queueEntry) {
	q.mu.Lock()
	q.entries = append(q.entries, e)
	q.mu.Unlock()
	q.cond.Signal()
}

// pop blocks until an entry is available and removes it.
func (q *workQueue) pop() queueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.entries) == 0 {
		q.cond.Wait()
	}
	e := q.entries[0]
	q.entries = q.entries[1:]
	return e
}

// size returns the current queue depth.
func (q *workQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// clear discards all queued entries.
func (q *workQueue) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = nil
}
