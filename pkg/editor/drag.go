package editor

import (
	"errors"
	"fmt"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/document"
	"github.com/aretw0/lattice/pkg/drop"
)

// ErrInvalidDrop is returned by DragEnd when the zone under the pointer
// cannot receive the dragged item.
var ErrInvalidDrop = errors.New("invalid drop target")

// DragState is the transient state of a gesture in progress. It is never
// part of the document or its history.
type DragState struct {
	Active *drop.Active
	Over   *drop.Over
}

// Dragging reports whether a gesture is in progress.
func (d DragState) Dragging() bool {
	return d.Active != nil
}

// Drag returns the current gesture state.
func (s *Session) Drag() DragState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drag
}

// DragStart begins a gesture.
func (s *Session) DragStart(active drop.Active) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag = DragState{Active: &active}
}

// DragOver records the zone under the pointer; nil means none.
func (s *Session) DragOver(over *drop.Over) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if over == nil {
		s.drag.Over = nil
		return
	}
	o := *over
	s.drag.Over = &o
}

// DragEnd finishes a gesture. A nil over cancels it. Otherwise the drop is
// resolved against the current document and the resulting action
// dispatched; the action is returned for callers that want to report it.
// Drag state is cleared whatever the outcome.
func (s *Session) DragEnd(active drop.Active, over *drop.Over) (document.Action, error) {
	s.mu.Lock()
	s.drag = DragState{}
	if over == nil {
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Debug("drag cancelled", "active", active)
		}
		return nil, nil
	}

	action, ok := drop.Resolve(s.hist.Present(), active, *over, s.factory)
	if !ok {
		s.rejected++
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Debug("drop ignored", "active", active, "over", over)
		}
		return nil, fmt.Errorf("drop %s on %s: %w", active, over, ErrInvalidDrop)
	}
	c, err := s.apply(action)
	s.mu.Unlock()
	if err != nil {
		return action, err
	}
	s.notify(c)
	return action, nil
}

// NewNode returns a fresh node of type t built by the session factory, the
// same way a palette drop would. Unknown types report false.
func (s *Session) NewNode(t core.ComponentType) (*core.Node, bool) {
	return s.factory.Node(t)
}
