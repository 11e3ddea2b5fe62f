package tree

import (
	"errors"
	"fmt"

	"github.com/aretw0/lattice/pkg/core"
)

// ErrInvariant is wrapped by every Verify failure.
var ErrInvariant = errors.New("tree invariant violated")

// Verify checks the structural invariants of a tree and its index:
// sentinel root, unique ids, no nil children, and an index that matches
// the tree exactly (no missing, wrong or stale entries).
func Verify(root *core.Node, ix Index) error {
	if root == nil {
		return fmt.Errorf("%w: nil root", ErrInvariant)
	}
	if root.ID != core.RootID {
		return fmt.Errorf("%w: root id is %q", ErrInvariant, root.ID)
	}

	if err := VerifyTree(root); err != nil {
		return err
	}

	seen := 0
	var mismatch error
	Walk(root, func(n, parent *core.Node) bool {
		seen++
		want := ""
		if parent != nil {
			want = parent.ID
		}
		got, ok := ix.ParentOf(n.ID)
		switch {
		case !ok:
			mismatch = fmt.Errorf("%w: %s missing from index", ErrInvariant, n.ID)
		case got != want:
			mismatch = fmt.Errorf("%w: index says parent of %s is %q, tree says %q", ErrInvariant, n.ID, got, want)
		}
		return mismatch == nil
	})
	if mismatch != nil {
		return mismatch
	}
	if ix.Len() != seen {
		return fmt.Errorf("%w: index holds %d entries for %d nodes", ErrInvariant, ix.Len(), seen)
	}
	return nil
}

// VerifyTree checks a tree on its own: unique ids and no nil children.
// It is used on imported pages and on subtrees before insertion.
func VerifyTree(root *core.Node) error {
	ids := make(map[string]bool)
	var err error
	var check func(n *core.Node)
	check = func(n *core.Node) {
		if err != nil {
			return
		}
		if n.ID == "" {
			err = fmt.Errorf("%w: node without id", ErrInvariant)
			return
		}
		if ids[n.ID] {
			err = fmt.Errorf("%w: %s: %w", ErrInvariant, n.ID, core.ErrDuplicateID)
			return
		}
		ids[n.ID] = true
		for i, c := range n.Children {
			if c == nil {
				err = fmt.Errorf("%w: %s has nil child at %d", ErrInvariant, n.ID, i)
				return
			}
			check(c)
		}
	}
	check(root)
	return err
}
