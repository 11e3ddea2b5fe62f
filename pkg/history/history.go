// Package history implements a bounded undo/redo stack with exclusion and
// grouping filters.
//
// History knows nothing about what it stores. Callers record each new
// state together with the kind and key of the change that produced it, and
// the policy decides whether that becomes a new undo step, folds into the
// previous one, or bypasses the stacks entirely.
package history

// DefaultLimit bounds the undo stack when no limit is configured.
const DefaultLimit = 100

// Outcome reports what Record did with a state.
type Outcome int

const (
	// Pushed means the previous state became a new undo step.
	Pushed Outcome = iota
	// Grouped means the state replaced the present within the current step.
	Grouped
	// Excluded means the state replaced the present without touching the stacks.
	Excluded
)

func (o Outcome) String() string {
	switch o {
	case Pushed:
		return "pushed"
	case Grouped:
		return "grouped"
	case Excluded:
		return "excluded"
	}
	return "unknown"
}

// Policy configures the filters.
type Policy struct {
	// Limit is the maximum number of undo steps; zero or less is unbounded.
	Limit int
	// Exclude lists kinds that never create undo steps.
	Exclude map[string]bool
	// Group lists kinds whose consecutive records with the same key share
	// one undo step.
	Group map[string]bool
}

// Option configures a History.
type Option func(*Policy)

// WithLimit bounds the undo stack.
func WithLimit(n int) Option {
	return func(p *Policy) {
		p.Limit = n
	}
}

// WithExclude adds kinds to the exclusion filter.
func WithExclude(kinds ...string) Option {
	return func(p *Policy) {
		if p.Exclude == nil {
			p.Exclude = make(map[string]bool)
		}
		for _, k := range kinds {
			p.Exclude[k] = true
		}
	}
}

// WithGroup adds kinds to the grouping filter.
func WithGroup(kinds ...string) Option {
	return func(p *Policy) {
		if p.Group == nil {
			p.Group = make(map[string]bool)
		}
		for _, k := range kinds {
			p.Group[k] = true
		}
	}
}

// History holds past, present and future states. It is not safe for
// concurrent use.
type History[T any] struct {
	policy  Policy
	past    []T
	present T
	future  []T

	// last identifies the step the present belongs to, for grouping.
	lastKind string
	lastKey  string
	open     bool
}

// New returns a History whose present is initial.
func New[T any](initial T, opts ...Option) *History[T] {
	p := Policy{Limit: DefaultLimit}
	for _, opt := range opts {
		opt(&p)
	}
	return &History[T]{policy: p, present: initial}
}

// Policy returns the active policy.
func (h *History[T]) Policy() Policy {
	return h.policy
}

// Present returns the current state.
func (h *History[T]) Present() T {
	return h.present
}

// Record makes next the present state. kind and key identify the change
// that produced it.
func (h *History[T]) Record(kind, key string, next T) Outcome {
	if h.policy.Exclude[kind] {
		h.present = next
		h.open = false
		return Excluded
	}
	if h.open && h.policy.Group[kind] && kind == h.lastKind && key == h.lastKey {
		h.present = next
		h.future = nil
		return Grouped
	}

	h.past = append(h.past, h.present)
	if h.policy.Limit > 0 && len(h.past) > h.policy.Limit {
		drop := len(h.past) - h.policy.Limit
		h.past = append(h.past[:0:0], h.past[drop:]...)
	}
	h.present = next
	h.future = nil
	h.lastKind, h.lastKey, h.open = kind, key, true
	return Pushed
}

// Undo steps back one entry. It reports false when there is nothing to undo.
func (h *History[T]) Undo() (T, bool) {
	if len(h.past) == 0 {
		return h.present, false
	}
	last := len(h.past) - 1
	h.future = append(h.future, h.present)
	h.present = h.past[last]
	h.past = h.past[:last]
	h.open = false
	return h.present, true
}

// Redo re-applies the most recently undone entry. It reports false when
// there is nothing to redo.
func (h *History[T]) Redo() (T, bool) {
	if len(h.future) == 0 {
		return h.present, false
	}
	last := len(h.future) - 1
	h.past = append(h.past, h.present)
	h.present = h.future[last]
	h.future = h.future[:last]
	h.open = false
	return h.present, true
}

// Clear drops both stacks and makes present the current state.
func (h *History[T]) Clear(present T) {
	h.past = nil
	h.future = nil
	h.present = present
	h.open = false
}

func (h *History[T]) CanUndo() bool { return len(h.past) > 0 }
func (h *History[T]) CanRedo() bool { return len(h.future) > 0 }
func (h *History[T]) PastLen() int  { return len(h.past) }
func (h *History[T]) FutureLen() int {
	return len(h.future)
}
