package editor

import (
	"log/slog"

	"github.com/aretw0/lattice/pkg/document"
	"github.com/aretw0/lattice/pkg/drop"
	"github.com/aretw0/lattice/pkg/history"
)

// options holds the session configuration.
type options struct {
	logger       *slog.Logger
	factory      drop.Factory
	initial      *document.Document
	historyLimit int
	exclude      []string
	group        []string
}

// Option configures a Session.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		factory:      drop.DefaultFactory(),
		historyLimit: history.DefaultLimit,
		exclude:      []string{string(document.KindSetSelected), string(document.KindSetTitle)},
		group:        []string{string(document.KindUpdateProps), string(document.KindReorder)},
	}
}

// WithLogger sets the logger. A nil logger keeps the session silent.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithFactory sets the palette and id generator used for drops.
func WithFactory(f drop.Factory) Option {
	return func(o *options) {
		o.factory = f
	}
}

// WithDocument starts the session from d instead of the template.
func WithDocument(d document.Document) Option {
	return func(o *options) {
		o.initial = &d
	}
}

// WithHistoryLimit bounds the number of undo steps. Zero means unbounded.
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		o.historyLimit = n
	}
}

// WithExcluded replaces the kinds that never create undo steps.
func WithExcluded(kinds ...document.Kind) Option {
	return func(o *options) {
		o.exclude = kindNames(kinds)
	}
}

// WithGrouped replaces the kinds whose consecutive edits of the same target
// share one undo step.
func WithGrouped(kinds ...document.Kind) Option {
	return func(o *options) {
		o.group = kindNames(kinds)
	}
}

func kindNames(kinds []document.Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
