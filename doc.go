// Package lattice is the composition root of the page builder engine.
//
// It wires the schema tree engine (pkg/document), the drop resolver
// (pkg/drop), the undo history (pkg/history) and the editing session
// (pkg/editor) to a project store (pkg/adapters/fs or pkg/adapters/sqlite).
//
// A page is a tree of component nodes under a fixed root. Every edit is an
// action applied to an immutable document; unchanged subtrees are shared
// between versions, so undo and redo are cheap snapshot swaps.
//
// Usage:
//
//	ws, err := lattice.Open(ctx, "./site",
//		lattice.WithAutoInit(true),
//		lattice.WithLogger(logger),
//	)
//	if err != nil {
//		return err
//	}
//	defer ws.Close(ctx)
//
//	// Drop a palette button on the canvas.
//	_, err = ws.Session.DragEnd(drop.Active{Type: core.TypeButton}, &drop.Over{Kind: drop.KindCanvas})
//
//	// Persist now instead of waiting for the autosaver.
//	err = ws.Save(ctx)
package lattice
