package fs

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/lattice/pkg/core"
)

// Watch reports external changes to projects whose id matches pattern
// (doublestar syntax, "*" for all). The channel is closed after ctx is done
// and the watcher has stopped.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "*"
	}
	if _, err := r.projectFiles(pattern); err != nil {
		return nil, err
	}

	events := make(chan core.Event, 100)
	w := newWatchWorker(r, pattern, events)
	if err := w.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}

	lifecycle.Go(context.Background(), func(context.Context) error {
		defer close(events)
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return w.Stop(stopCtx)
	}, lifecycle.WithErrorHandler(func(err error) {
		r.handleError(fmt.Errorf("stop watcher: %w", err))
	}))

	return events, nil
}

// handleError forwards background errors to Config.ErrorHandler, or logs
// them when none is set.
func (r *Repository) handleError(err error) {
	if r.config.ErrorHandler != nil {
		r.config.ErrorHandler(err)
		return
	}
	r.logger().Error("background error", "error", err)
}

var _ core.Watchable = (*Repository)(nil)
var _ core.Repository = (*Repository)(nil)
