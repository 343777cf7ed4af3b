package domain

import "encoding/json"

// State is an immutable snapshot of one collection: the insertion-ordered
// entities plus the derived aggregate recomputed after every command. Values
// handed out by Engine.Apply never alias the caller's slice.
type State[E Entity, A any] struct {
	Entities []E
	Derived  A
}

// Find returns the entity with the given id and whether it exists.
func (s State[E, A]) Find(id string) (E, bool) {
	for _, e := range s.Entities {
		if e.EntityID() == id {
			return e, true
		}
	}
	var zero E
	return zero, false
}

// Len returns the number of entities in the snapshot.
func (s State[E, A]) Len() int { return len(s.Entities) }

// Command is the closed set of mutations understood by the engine.
type Command[E Entity] interface {
	changes() []Change
}

// Hydrate replaces the collection wholesale with a previously persisted
// payload. Anything that does not decode as a JSON array of entities yields
// the empty collection; corruption is a recoverable state, not an error.
type Hydrate[E Entity] struct {
	Raw json.RawMessage
}

func (Hydrate[E]) changes() []Change { return []Change{{Action: ActionHydrate}} }

// Add inserts an entity, or merges it into an existing entity with the same
// id according to the collection's policy.
type Add[E Entity] struct {
	Entity E
}

func (c Add[E]) changes() []Change {
	return []Change{{Action: ActionAdd, ID: c.Entity.EntityID()}}
}

// Remove filters the entity with the given id out of the collection. An
// unknown id is a no-op.
type Remove[E Entity] struct {
	ID string
}

func (c Remove[E]) changes() []Change { return []Change{{Action: ActionRemove, ID: c.ID}} }

// Update applies Mutate to the entity with the given id. Unknown ids are a
// no-op. The mutator cannot change the entity's id; the engine restores it.
type Update[E Entity] struct {
	ID     string
	Mutate func(*E)
}

func (c Update[E]) changes() []Change { return []Change{{Action: ActionUpdate, ID: c.ID}} }

// Clear resets the collection to empty.
type Clear[E Entity] struct{}

func (Clear[E]) changes() []Change { return []Change{{Action: ActionClear}} }

// Policy is the invariant-enforcement hook that distinguishes the three
// collection instantiations. Policies repair state rather than reject it:
// they clamp, dedupe, and re-elect defaults, so commands never fail.
type Policy[E Entity] interface {
	// Name identifies the policy in logs and metrics.
	Name() string
	// Merge resolves an Add whose id collides with an existing entity.
	// Returning ok=false leaves the existing entity untouched.
	Merge(existing, incoming E) (merged E, ok bool)
	// Normalize re-establishes collection-wide invariants after a command.
	// It receives the change set that produced the candidate entities and
	// may reorder flags or drop duplicates, but never fails.
	Normalize(entities []E, changes []Change) []E
}

// Aggregator derives the collection's aggregate from its entities. It must be
// deterministic and total; it is re-run in full after every command.
type Aggregator[E Entity, A any] func(entities []E) A

// Engine is the generic copy-on-write reducer for one collection. Apply never
// mutates its input state and never returns an error: malformed hydration
// payloads and stale ids degrade to the empty collection or a no-op.
type Engine[E Entity, A any] struct {
	policy    Policy[E]
	aggregate Aggregator[E, A]
}

// NewEngine constructs an engine from an invariant policy and an aggregator.
// Both may be nil for collections without invariants or derived values.
func NewEngine[E Entity, A any](policy Policy[E], aggregate Aggregator[E, A]) *Engine[E, A] {
	return &Engine[E, A]{policy: policy, aggregate: aggregate}
}

// Empty returns the initial state: no entities, aggregate of the empty slice.
func (g *Engine[E, A]) Empty() State[E, A] {
	return g.finish(nil)
}

// Apply reduces a command over a state snapshot and returns the successor
// state with its aggregate recomputed. The input state is left untouched.
func (g *Engine[E, A]) Apply(state State[E, A], cmd Command[E]) State[E, A] {
	entities := cloneEntities(state.Entities)
	mutated := true

	switch c := cmd.(type) {
	case Hydrate[E]:
		var decoded []E
		if err := json.Unmarshal(c.Raw, &decoded); err != nil {
			decoded = nil
		}
		entities = decoded
	case Add[E]:
		entities, mutated = g.applyAdd(entities, c.Entity)
	case Remove[E]:
		entities, mutated = removeByID(entities, c.ID)
	case Update[E]:
		entities, mutated = g.applyUpdate(entities, c.ID, c.Mutate)
	case Clear[E]:
		entities = nil
	default:
		mutated = false
	}

	if mutated && g.policy != nil {
		entities = g.policy.Normalize(entities, cmd.changes())
	}
	return g.finish(entities)
}

func (g *Engine[E, A]) applyAdd(entities []E, incoming E) ([]E, bool) {
	id := incoming.EntityID()
	for i, existing := range entities {
		if existing.EntityID() != id {
			continue
		}
		merged, ok := mergeOrKeep(g.policy, existing, incoming)
		if !ok {
			return entities, false
		}
		entities[i] = merged
		return entities, true
	}
	return append(entities, incoming), true
}

func (g *Engine[E, A]) applyUpdate(entities []E, id string, mutate func(*E)) ([]E, bool) {
	if mutate == nil {
		return entities, false
	}
	for i := range entities {
		if entities[i].EntityID() != id {
			continue
		}
		before := entities[i]
		mutate(&entities[i])
		if entities[i].EntityID() != id {
			// Identity is immutable; a mutator that rewrites the id is
			// discarded wholesale rather than corrupting the keyspace.
			entities[i] = before
			return entities, false
		}
		return entities, true
	}
	return entities, false
}

func (g *Engine[E, A]) finish(entities []E) State[E, A] {
	st := State[E, A]{Entities: entities}
	if g.aggregate != nil {
		st.Derived = g.aggregate(entities)
	}
	return st
}

func removeByID[E Entity](entities []E, id string) ([]E, bool) {
	for i, e := range entities {
		if e.EntityID() == id {
			return append(entities[:i], entities[i+1:]...), true
		}
	}
	return entities, false
}

func cloneEntities[E Entity](entities []E) []E {
	if entities == nil {
		return nil
	}
	return append([]E(nil), entities...)
}

// mergeOrKeep tolerates a nil policy by treating the collision as a no-op.
func mergeOrKeep[E Entity](p Policy[E], existing, incoming E) (E, bool) {
	if p == nil {
		return existing, false
	}
	return p.Merge(existing, incoming)
}
