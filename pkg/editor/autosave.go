package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/lattice/pkg/core"
)

// DefaultAutosaveDelay is the quiet period before a change is persisted.
const DefaultAutosaveDelay = time.Second

// AutosaveOption configures an Autosaver.
type AutosaveOption func(*Autosaver)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) AutosaveOption {
	return func(a *Autosaver) {
		if d > 0 {
			a.delay = d
		}
	}
}

// WithProjectID sets the project the page is saved under.
func WithProjectID(id string) AutosaveOption {
	return func(a *Autosaver) {
		if id != "" {
			a.projectID = id
		}
	}
}

// WithAutosaveLogger sets the logger for save results.
func WithAutosaveLogger(logger *slog.Logger) AutosaveOption {
	return func(a *Autosaver) {
		a.logger = logger
	}
}

// WithErrorHandler receives every failed save.
func WithErrorHandler(fn func(error)) AutosaveOption {
	return func(a *Autosaver) {
		a.onError = fn
	}
}

// Autosaver persists the session page after edits settle. Bursts of
// changes within the delay produce a single save.
type Autosaver struct {
	session   *Session
	service   *core.Service
	projectID string
	delay     time.Duration
	logger    *slog.Logger
	onError   func(error)

	mu          sync.Mutex
	ctx         context.Context
	timer       *time.Timer
	dirty       bool
	running     bool
	unsubscribe func()
	saves       int
	lastSave    time.Time
	lastErr     error

	// saveMu serializes writes so an older snapshot never lands last.
	saveMu sync.Mutex
}

// NewAutosaver returns an Autosaver writing s to svc.
func NewAutosaver(s *Session, svc *core.Service, opts ...AutosaveOption) *Autosaver {
	a := &Autosaver{
		session:   s,
		service:   svc,
		projectID: core.DefaultProjectID,
		delay:     DefaultAutosaveDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Start subscribes to the session. Saving stops when ctx is done; pending
// changes are flushed at that point.
func (a *Autosaver) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return errors.New("autosaver already started")
	}
	a.ctx = ctx
	a.running = true
	a.unsubscribe = a.session.Subscribe(func(Change) { a.schedule() })

	lifecycle.Go(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return a.Stop(context.Background())
	}, lifecycle.WithErrorHandler(a.handleError))
	return nil
}

// Stop unsubscribes and writes any pending change.
func (a *Autosaver) Stop(ctx context.Context) error {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return nil
	}
	a.running = false
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()
	return a.Flush(ctx)
}

func (a *Autosaver) schedule() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.running {
		return
	}
	a.dirty = true
	if a.timer == nil {
		a.timer = time.AfterFunc(a.delay, a.fire)
		return
	}
	a.timer.Reset(a.delay)
}

func (a *Autosaver) fire() {
	a.mu.Lock()
	ctx := a.ctx
	a.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}
	lifecycle.Go(ctx, func(ctx context.Context) error {
		return a.Flush(ctx)
	}, lifecycle.WithErrorHandler(a.handleError))
}

// Flush saves the current page if it changed since the last save.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	if !a.dirty {
		a.mu.Unlock()
		return nil
	}
	a.dirty = false
	a.mu.Unlock()

	page := a.session.Page()
	err := a.service.SaveProject(ctx, a.projectID, page)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		// Keep the change pending so the next edit or Stop retries it.
		a.dirty = true
		a.lastErr = err
		return fmt.Errorf("autosave %s: %w", a.projectID, err)
	}
	a.saves++
	a.lastSave = time.Now()
	a.lastErr = nil
	if a.logger != nil {
		a.logger.Debug("autosaved", "project", a.projectID, "title", page.Title)
	}
	return nil
}

func (a *Autosaver) handleError(err error) {
	if a.onError != nil {
		a.onError(err)
		return
	}
	if a.logger != nil {
		a.logger.Error("autosave failed", "project", a.projectID, "error", err)
	}
}

// AutosaveState reports save activity.
type AutosaveState struct {
	ProjectID string     `json:"project_id"`
	Delay     string     `json:"delay"`
	Running   bool       `json:"running"`
	Pending   bool       `json:"pending"`
	Saves     int        `json:"saves"`
	LastSave  *time.Time `json:"last_save,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// State implements introspection.Introspectable.
func (a *Autosaver) State() any {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := AutosaveState{
		ProjectID: a.projectID,
		Delay:     a.delay.String(),
		Running:   a.running,
		Pending:   a.dirty,
		Saves:     a.saves,
	}
	if !a.lastSave.IsZero() {
		t := a.lastSave
		st.LastSave = &t
	}
	if a.lastErr != nil {
		st.LastError = a.lastErr.Error()
	}
	return st
}

// ComponentType implements introspection.Component.
func (a *Autosaver) ComponentType() string {
	return "autosaver"
}
