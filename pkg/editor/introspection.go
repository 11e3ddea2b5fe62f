package editor

import (
	"github.com/aretw0/introspection"
)

// SessionState exposes internal state for observability.
type SessionState struct {
	Title      string `json:"title"`
	Nodes      int    `json:"nodes"`
	SelectedID string `json:"selected_id,omitempty"`
	Variables  int    `json:"variables"`
	Undo       int    `json:"undo_depth"`
	Redo       int    `json:"redo_depth"`
	HistoryCap int    `json:"history_limit"`
	Dragging   string `json:"dragging,omitempty"`
	Dispatched int    `json:"dispatched"`
	Rejected   int    `json:"rejected"`
	Listeners  int    `json:"listeners"`
}

// State implements introspection.Introspectable.
func (s *Session) State() any {
	s.mu.RLock()
	d := s.hist.Present()
	st := SessionState{
		Title:      d.Title,
		Nodes:      d.Index().Len(),
		SelectedID: d.SelectedID,
		Variables:  len(d.Variables),
		Undo:       s.hist.PastLen(),
		Redo:       s.hist.FutureLen(),
		HistoryCap: s.hist.Policy().Limit,
		Dispatched: s.dispatched,
		Rejected:   s.rejected,
	}
	if s.drag.Active != nil {
		st.Dragging = s.drag.Active.String()
	}
	s.mu.RUnlock()

	s.listenerMu.Lock()
	st.Listeners = len(s.listeners)
	s.listenerMu.Unlock()
	return st
}

// ComponentType implements introspection.Component.
func (s *Session) ComponentType() string {
	return "editor-session"
}

var _ introspection.Introspectable = (*Session)(nil)
var _ introspection.Component = (*Session)(nil)
var _ introspection.Introspectable = (*Autosaver)(nil)
var _ introspection.Component = (*Autosaver)(nil)
