// Package editor ties the document engine, the drop resolver and the
// history manager into one editing session.
//
// A Session owns the current document. Every change goes through Dispatch
// (or one of the drag, undo and load entry points), runs to completion under
// the session lock, and is then announced to subscribers.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/lattice/pkg/binding"
	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/document"
	"github.com/aretw0/lattice/pkg/drop"
	"github.com/aretw0/lattice/pkg/history"
)

// Pseudo kinds announced for changes that are not document actions.
const (
	KindUndo document.Kind = "undo"
	KindRedo document.Kind = "redo"
)

// Change describes a committed change of the session document.
type Change struct {
	Kind     document.Kind
	Key      string
	Outcome  history.Outcome
	Document document.Document
}

// String implements lifecycle.Event.
func (c Change) String() string {
	if c.Key == "" {
		return fmt.Sprintf("%s (%s)", c.Kind, c.Outcome)
	}
	return fmt.Sprintf("%s %s (%s)", c.Kind, c.Key, c.Outcome)
}

// Listener receives changes after they are committed. Listeners run on the
// goroutine that made the change and must not call back into the session
// synchronously.
type Listener func(Change)

// Session is a single editing session. It is safe for concurrent use; all
// mutations are serialized.
type Session struct {
	mu       sync.RWMutex
	hist     *history.History[document.Document]
	drag     DragState
	factory  drop.Factory
	resolver *binding.Resolver
	logger   *slog.Logger

	listenerMu sync.Mutex
	listeners  map[int]Listener
	nextID     int

	dispatched int
	rejected   int
}

// New returns a session holding the template document, or the document
// given through WithDocument.
func New(opts ...Option) *Session {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	initial := document.Template()
	if o.initial != nil {
		initial = *o.initial
	}

	return &Session{
		hist: history.New(initial,
			history.WithLimit(o.historyLimit),
			history.WithExclude(o.exclude...),
			history.WithGroup(o.group...),
		),
		factory:   o.factory,
		resolver:  binding.New(),
		logger:    o.logger,
		listeners: make(map[int]Listener),
	}
}

// Document returns the current document value.
func (s *Session) Document() document.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hist.Present()
}

// Page returns a serializable snapshot of the current page.
func (s *Session) Page() core.Page {
	return s.Document().Page()
}

// Dispatch applies a and records the result in history. When a is rejected
// the document is unchanged and the diagnostic is returned; core.ErrNoop
// marks actions that were valid but changed nothing.
func (s *Session) Dispatch(a document.Action) error {
	if a == nil {
		return fmt.Errorf("dispatch: nil action: %w", core.ErrInvalidAction)
	}
	s.mu.Lock()
	c, err := s.apply(a)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify(c)
	return nil
}

// apply runs a against the present document. The caller holds s.mu.
func (s *Session) apply(a document.Action) (Change, error) {
	next, err := document.Apply(s.hist.Present(), a)
	if err != nil {
		s.rejected++
		if s.logger != nil && !errors.Is(err, core.ErrNoop) {
			s.logger.Debug("action rejected", "kind", a.Kind(), "key", a.Key(), "error", err)
		}
		return Change{}, err
	}
	outcome := s.hist.Record(string(a.Kind()), a.Key(), next)
	if a.Kind() == document.KindLoad {
		s.hist.Clear(next)
	}
	s.dispatched++
	if s.logger != nil {
		s.logger.Debug("action applied", "kind", a.Kind(), "key", a.Key(), "history", outcome)
	}
	return Change{Kind: a.Kind(), Key: a.Key(), Outcome: outcome, Document: next}, nil
}

// Undo steps back one history entry. It reports false when there is
// nothing to undo.
func (s *Session) Undo() bool {
	return s.step(KindUndo, s.hist.Undo)
}

// Redo re-applies the last undone entry. It reports false when there is
// nothing to redo.
func (s *Session) Redo() bool {
	return s.step(KindRedo, s.hist.Redo)
}

func (s *Session) step(kind document.Kind, fn func() (document.Document, bool)) bool {
	s.mu.Lock()
	d, ok := fn()
	s.mu.Unlock()
	if !ok {
		return false
	}
	if s.logger != nil {
		s.logger.Debug(string(kind))
	}
	s.notify(Change{Kind: kind, Document: d})
	return true
}

// CanUndo reports whether Undo would change the document.
func (s *Session) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hist.CanUndo()
}

// CanRedo reports whether Redo would change the document.
func (s *Session) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hist.CanRedo()
}

// Load replaces the document with p. The index is rebuilt and selection,
// history and drag state are cleared. A malformed page is rejected and the
// current document kept.
func (s *Session) Load(p core.Page) error {
	if err := s.Dispatch(document.Load{Page: p}); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	s.mu.Lock()
	s.drag = DragState{}
	s.mu.Unlock()
	return nil
}

// Reset restores the template. Unlike Load it is an undoable step.
func (s *Session) Reset() {
	_ = s.Dispatch(document.Reset{})
}

// ResolvedProps returns the props of id with every binding placeholder
// evaluated against the current variables.
func (s *Session) ResolvedProps(id string) (core.Props, error) {
	d := s.Document()
	n, ok := d.Find(id)
	if !ok {
		return nil, fmt.Errorf("resolve %s: %w", id, core.ErrNotFound)
	}
	return s.resolver.Props(n.Props, d.Variables)
}

// Subscribe registers fn for every committed change and returns a function
// that removes it.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Session) notify(c Change) {
	s.listenerMu.Lock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenerMu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}
