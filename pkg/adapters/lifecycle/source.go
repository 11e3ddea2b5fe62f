// Package lifecycle bridges project store events and editor changes to
// github.com/aretw0/lifecycle sources.
package lifecycle

import (
	"context"
	"sync"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/editor"
)

// Option configures a store source.
type Option func(*storeSource)

// WithTypes forwards only events of the given types.
func WithTypes(types ...core.EventType) Option {
	return func(s *storeSource) {
		s.types = make(map[core.EventType]bool, len(types))
		for _, t := range types {
			s.types[t] = true
		}
	}
}

type storeSource struct {
	events <-chan core.Event
	types  map[core.EventType]bool
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits project store events,
// such as those of a watched repository.
func NewSource(events <-chan core.Event, opts ...Option) lifecycle.Source {
	s := &storeSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *storeSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *storeSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if s.types != nil && !s.types[e.Type] {
					continue
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

// Subscriber is implemented by *editor.Session.
type Subscriber interface {
	Subscribe(fn editor.Listener) (unsubscribe func())
}

// DefaultChangeBuffer is the number of editor changes held for a slow reader.
const DefaultChangeBuffer = 64

type changeSource struct {
	sub Subscriber
	out chan lifecycle.Event

	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewChangeSource creates a lifecycle.Source that emits the committed
// changes of an editing session. Listeners run on the editing goroutine, so
// changes that do not fit in the buffer are dropped rather than blocking
// the session.
func NewChangeSource(sub Subscriber, buffer int) lifecycle.Source {
	if buffer <= 0 {
		buffer = DefaultChangeBuffer
	}
	return &changeSource{sub: sub, out: make(chan lifecycle.Event, buffer)}
}

func (s *changeSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Dropped returns how many changes were discarded because the buffer was full.
func (s *changeSource) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *changeSource) Start(ctx context.Context) error {
	unsubscribe := s.sub.Subscribe(func(c editor.Change) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		select {
		case s.out <- c:
		default:
			s.dropped++
		}
	})

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		unsubscribe()
		s.mu.Lock()
		s.closed = true
		close(s.out)
		s.mu.Unlock()
		return nil
	})
	return nil
}
