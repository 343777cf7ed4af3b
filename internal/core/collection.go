package core

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cartcore/pkg/domain"
)

// collection bridges one reducer engine to durable storage. Dispatches are
// serialized under a mutex, snapshots are scheduled on the write queue, and
// hydration runs exactly once in the background.
type collection[E domain.Entity, A any] struct {
	key     string
	engine  *domain.Engine[E, A]
	store   domain.DurableStore
	queue   *writeQueue
	log     zerolog.Logger
	metrics MetricsRecorder

	mu       sync.Mutex
	state    domain.State[E, A]
	hydrated chan struct{}
}

func newCollection[E domain.Entity, A any](key string, engine *domain.Engine[E, A], store domain.DurableStore, log zerolog.Logger, metrics MetricsRecorder) *collection[E, A] {
	c := &collection[E, A]{
		key:      key,
		engine:   engine,
		store:    store,
		queue:    newWriteQueue(key, store, log),
		log:      log.With().Str("collection", key).Logger(),
		metrics:  metrics,
		state:    engine.Empty(),
		hydrated: make(chan struct{}),
	}
	go c.hydrate()
	return c
}

// hydrate loads the persisted snapshot once at startup. Load failures and
// malformed payloads degrade to an empty collection.
func (c *collection[E, A]) hydrate() {
	defer close(c.hydrated)
	ctx := context.Background()
	payload, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		c.log.Warn().Err(err).Msg("hydration load failed, starting empty")
		return
	}
	if !ok {
		return
	}
	c.mu.Lock()
	c.state = c.engine.Apply(c.state, domain.Hydrate[E]{Raw: json.RawMessage(payload)})
	entities := c.state.Len()
	c.mu.Unlock()
	c.log.Debug().Int("entities", entities).Msg("hydrated")
}

// dispatch applies cmd, schedules the new snapshot for persistence, and
// records the operation.
func (c *collection[E, A]) dispatch(ctx context.Context, op string, cmd domain.Command[E]) {
	start := time.Now()
	c.mu.Lock()
	c.state = c.engine.Apply(c.state, cmd)
	payload := encodeEntities(c.state.Entities)
	c.mu.Unlock()
	c.queue.Enqueue(payload)
	c.metrics.Observe(ctx, op, true, time.Since(start))
}

// snapshot returns the current immutable state.
func (c *collection[E, A]) snapshot() domain.State[E, A] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// awaitHydration blocks until the startup load completed or ctx ends.
func (c *collection[E, A]) awaitHydration(ctx context.Context) error {
	select {
	case <-c.hydrated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *collection[E, A]) flush(ctx context.Context) error {
	return c.queue.Flush(ctx)
}

func (c *collection[E, A]) close() {
	c.queue.Close()
}

// encodeEntities serializes the collection in the persisted wire shape. An
// empty collection is stored as an empty array, never null, so a later
// hydration sees a valid document.
func encodeEntities[E domain.Entity](entities []E) string {
	if entities == nil {
		entities = []E{}
	}
	data, err := json.Marshal(entities)
	if err != nil {
		return "[]"
	}
	return string(data)
}
