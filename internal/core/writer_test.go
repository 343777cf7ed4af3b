package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"cartcore/internal/infra/persistence/memory"
)

// blockingStore wraps the in-memory store and holds every Set until released.
// It records the payloads that actually reach storage.
type blockingStore struct {
	*memory.Store
	mu      sync.Mutex
	gate    chan struct{}
	writes  []string
	failSet bool
}

func newBlockingStore() *blockingStore {
	return &blockingStore{Store: memory.NewStore(), gate: make(chan struct{})}
}

func (s *blockingStore) Set(ctx context.Context, key, payload string) error {
	<-s.gate
	s.mu.Lock()
	fail := s.failSet
	if !fail {
		s.writes = append(s.writes, payload)
	}
	s.mu.Unlock()
	if fail {
		return fmt.Errorf("set fail")
	}
	return s.Store.Set(ctx, key, payload)
}

func (s *blockingStore) release() { close(s.gate) }

func (s *blockingStore) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}

func TestEnqueueCoalescesToLatestPayload(t *testing.T) {
	store := newBlockingStore()
	q := newWriteQueue("cart", store, zerolog.Nop())

	// First write parks in the store; the next three coalesce behind it.
	q.Enqueue(`["v1"]`)
	q.Enqueue(`["v2"]`)
	q.Enqueue(`["v3"]`)
	q.Enqueue(`["v4"]`)
	store.release()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	q.Close()

	writes := store.recorded()
	if len(writes) == 0 || len(writes) > 2 {
		t.Fatalf("expected coalesced writes, got %d: %v", len(writes), writes)
	}
	if writes[len(writes)-1] != `["v4"]` {
		t.Fatalf("last write must be the newest payload, got %q", writes[len(writes)-1])
	}
}

func TestFlushWaitsForInFlightWrite(t *testing.T) {
	store := newBlockingStore()
	q := newWriteQueue("cart", store, zerolog.Nop())
	defer q.Close()

	q.Enqueue(`["v1"]`)
	flushed := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		flushed <- q.Flush(ctx)
	}()

	select {
	case err := <-flushed:
		t.Fatalf("flush returned before the write completed: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	store.release()
	if err := <-flushed; err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := store.recorded(); len(got) != 1 || got[0] != `["v1"]` {
		t.Fatalf("unexpected writes: %v", got)
	}
}

func TestFlushHonorsContext(t *testing.T) {
	store := newBlockingStore() // never released
	q := newWriteQueue("cart", store, zerolog.Nop())
	q.Enqueue(`["v1"]`)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := q.Flush(ctx); err == nil {
		t.Fatalf("expected context error from Flush")
	}
	store.release()
	q.Close()
}

func TestFailedWriteIsDropped(t *testing.T) {
	store := newBlockingStore()
	store.failSet = true
	q := newWriteQueue("cart", store, zerolog.Nop())
	q.Enqueue(`["v1"]`)
	store.release()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// A failed write must not wedge the queue.
	if err := q.Flush(ctx); err != nil {
		t.Fatalf("flush after failed write: %v", err)
	}
	q.Close()
	if store.Len() != 0 {
		t.Fatalf("failed write must not persist anything")
	}
}

func TestCloseDrainsPendingWrite(t *testing.T) {
	store := newBlockingStore()
	store.release()
	q := newWriteQueue("cart", store, zerolog.Nop())
	q.Enqueue(`["v1"]`)
	q.Close()

	if _, ok, _ := store.Get(context.Background(), "cart"); !ok {
		t.Fatalf("pending write must be drained on Close")
	}
	// Enqueue after Close is a no-op and must not panic.
	q.Enqueue(`["v2"]`)
}
