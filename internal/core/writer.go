package core

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"cartcore/pkg/domain"
)

// writeQueue serializes snapshot writes for one storage key. Writes coalesce:
// only the newest pending payload is ever written, so a burst of dispatches
// costs a single store round trip. Failed writes are logged and dropped; the
// in-memory state stays authoritative.
type writeQueue struct {
	key   string
	store domain.DurableStore
	log   zerolog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending *string
	busy    bool
	closed  bool
	done    chan struct{}
}

func newWriteQueue(key string, store domain.DurableStore, log zerolog.Logger) *writeQueue {
	q := &writeQueue{
		key:   key,
		store: store,
		log:   log,
		done:  make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Enqueue schedules payload as the next snapshot to persist, replacing any
// payload still waiting. Never blocks on the store.
func (q *writeQueue) Enqueue(payload string) {
	q.mu.Lock()
	if !q.closed {
		p := payload
		q.pending = &p
		q.cond.Broadcast()
	}
	q.mu.Unlock()
}

func (q *writeQueue) run() {
	defer close(q.done)
	q.mu.Lock()
	for {
		for q.pending == nil && !q.closed {
			q.cond.Wait()
		}
		if q.pending == nil {
			q.mu.Unlock()
			return
		}
		payload := *q.pending
		q.pending = nil
		q.busy = true
		q.mu.Unlock()

		if err := q.store.Set(context.Background(), q.key, payload); err != nil {
			q.log.Warn().Err(err).Str("key", q.key).Msg("persist snapshot failed")
		}

		q.mu.Lock()
		q.busy = false
		q.cond.Broadcast()
	}
}

// Flush blocks until every payload enqueued before the call has been written
// (or attempted), or until ctx ends.
func (q *writeQueue) Flush(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for q.pending != nil || q.busy {
		if err := ctx.Err(); err != nil {
			return err
		}
		q.cond.Wait()
	}
	return ctx.Err()
}

// Close drains the queue and stops the writer goroutine. Enqueue after Close
// is a no-op.
func (q *writeQueue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.cond.Broadcast()
	}
	q.mu.Unlock()
	<-q.done
}
