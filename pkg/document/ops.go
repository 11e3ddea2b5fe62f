package document

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/core"
	"github.com/aretw0/lattice/pkg/tree"
)

// End appends when passed as an insertion index.
const End = -1

// clamp bounds i to [0, n]; negative values mean "append".
func clamp(i, n int) int {
	if i < 0 || i > n {
		return n
	}
	return i
}

func insertAt(children []*core.Node, i int, n *core.Node) []*core.Node {
	children = append(children, nil)
	copy(children[i+1:], children[i:])
	children[i] = n
	return children
}

func removeAt(children []*core.Node, i int) []*core.Node {
	out := make([]*core.Node, 0, len(children)-1)
	out = append(out, children[:i]...)
	return append(out, children[i+1:]...)
}

// container resolves id to a node that accepts children.
func (d Document) container(id string) (*core.Node, error) {
	n, ok := d.Find(id)
	if !ok {
		return nil, fmt.Errorf("parent %s: %w", id, core.ErrNotFound)
	}
	if !n.Type.IsContainer() {
		return nil, fmt.Errorf("parent %s (%s): %w", id, n.Type, core.ErrNotContainer)
	}
	return n, nil
}

// Insert splices node into the children of parentID at index. An empty
// parentID means the root; index End (or any out-of-range value) appends.
// The whole subtree of node is registered in the index.
func (d Document) Insert(node *core.Node, parentID string, index int) (Document, error) {
	if node == nil {
		return d, fmt.Errorf("insert: nil node: %w", core.ErrInvalidAction)
	}
	if parentID == "" {
		parentID = core.RootID
	}
	if _, err := d.container(parentID); err != nil {
		return d, err
	}
	if err := tree.VerifyTree(node); err != nil {
		return d, err
	}
	var clash string
	tree.Walk(node, func(n, _ *core.Node) bool {
		if clash == "" && d.index.Has(n.ID) {
			clash = n.ID
		}
		return clash == ""
	})
	if clash != "" {
		return d, fmt.Errorf("insert %s: %w", clash, core.ErrDuplicateID)
	}

	sub := node.Clone()
	root, err := tree.Rewrite(d.Root, d.index, parentID, func(p *core.Node) *core.Node {
		p.Children = insertAt(p.Children, clamp(index, len(p.Children)), sub)
		return p
	})
	if err != nil {
		return d, err
	}

	ix := d.index.Clone()
	ix.Register(parentID, sub)

	next := d
	next.Root = root
	next.index = ix
	return next, nil
}

// UpdateProps shallow-merges partial into the props of id. Style and
// children are left alone.
func (d Document) UpdateProps(id string, partial core.Props) (Document, error) {
	if len(partial) == 0 {
		return d, core.ErrNoop
	}
	if !d.index.Has(id) {
		return d, fmt.Errorf("update props %s: %w", id, core.ErrNotFound)
	}
	root, err := tree.Rewrite(d.Root, d.index, id, func(n *core.Node) *core.Node {
		merged := make(core.Props, len(n.Props)+len(partial))
		for k, v := range n.Props {
			merged[k] = v
		}
		for k, v := range partial {
			merged[k] = v
		}
		n.Props = merged
		return n
	})
	if err != nil {
		return d, err
	}
	next := d
	next.Root = root
	return next, nil
}

// UpdateEvents replaces the whole event mapping of id. Every action must
// satisfy the schema of its kind.
func (d Document) UpdateEvents(id string, events core.Events) (Document, error) {
	if !d.index.Has(id) {
		return d, fmt.Errorf("update events %s: %w", id, core.ErrNotFound)
	}
	if err := events.Validate(); err != nil {
		return d, err
	}
	var replaced core.Events
	if len(events) > 0 {
		replaced = (&core.Node{Events: events}).Clone().Events
	}
	root, err := tree.Rewrite(d.Root, d.index, id, func(n *core.Node) *core.Node {
		n.Events = replaced
		return n
	})
	if err != nil {
		return d, err
	}
	next := d
	next.Root = root
	return next, nil
}

// Delete detaches id and its subtree. The root cannot be deleted. When the
// selection lies inside the removed subtree it is cleared.
func (d Document) Delete(id string) (Document, error) {
	if id == core.RootID {
		return d, core.ErrRootImmutable
	}
	parentID, ok := d.index.ParentOf(id)
	if !ok {
		return d, fmt.Errorf("delete %s: %w", id, core.ErrNotFound)
	}
	node, ok := d.Find(id)
	if !ok {
		return d, fmt.Errorf("delete %s: %w", id, core.ErrNotFound)
	}

	root, err := tree.Rewrite(d.Root, d.index, parentID, func(p *core.Node) *core.Node {
		p.Children = removeAt(p.Children, tree.IndexOf(p, id))
		return p
	})
	if err != nil {
		return d, err
	}

	next := d
	if d.SelectedID != "" && d.index.IsAncestor(id, d.SelectedID) {
		next.SelectedID = ""
	}
	ix := d.index.Clone()
	ix.Prune(node)
	next.Root = root
	next.index = ix
	return next, nil
}

// ReorderSiblings moves the child at oldIndex of parentID to newIndex. The
// child is removed first, so newIndex addresses the shortened list.
func (d Document) ReorderSiblings(parentID string, oldIndex, newIndex int) (Document, error) {
	parent, ok := d.Find(parentID)
	if !ok {
		return d, fmt.Errorf("reorder in %s: %w", parentID, core.ErrNotFound)
	}
	n := len(parent.Children)
	if oldIndex < 0 || newIndex < 0 || oldIndex >= n || newIndex >= n {
		return d, fmt.Errorf("reorder %d -> %d in %s with %d children: %w", oldIndex, newIndex, parentID, n, core.ErrOutOfRange)
	}
	if oldIndex == newIndex {
		return d, core.ErrNoop
	}

	root, err := tree.Rewrite(d.Root, d.index, parentID, func(p *core.Node) *core.Node {
		moved := p.Children[oldIndex]
		p.Children = insertAt(removeAt(p.Children, oldIndex), newIndex, moved)
		return p
	})
	if err != nil {
		return d, err
	}
	next := d
	next.Root = root
	return next, nil
}

// MoveToNewParent detaches id from its parent and splices it into
// newParentID at newIndex (clamped). Moving the root, moving into a
// non-container, and moving a node into itself or its own subtree are
// rejected.
func (d Document) MoveToNewParent(id, newParentID string, newIndex int) (Document, error) {
	if id == core.RootID {
		return d, core.ErrRootImmutable
	}
	oldParentID, ok := d.index.ParentOf(id)
	if !ok || oldParentID == "" {
		return d, fmt.Errorf("move %s: %w", id, core.ErrNotFound)
	}
	if _, err := d.container(newParentID); err != nil {
		return d, err
	}
	if d.index.IsAncestor(id, newParentID) {
		return d, fmt.Errorf("move %s into %s: %w", id, newParentID, core.ErrCycle)
	}
	node, ok := d.Find(id)
	if !ok {
		return d, fmt.Errorf("move %s: %w", id, core.ErrNotFound)
	}

	detached, err := tree.Rewrite(d.Root, d.index, oldParentID, func(p *core.Node) *core.Node {
		p.Children = removeAt(p.Children, tree.IndexOf(p, id))
		return p
	})
	if err != nil {
		return d, err
	}
	// The new parent is not inside the moved subtree, so its path from the
	// root is the same in the detached tree.
	root, err := tree.Rewrite(detached, d.index, newParentID, func(p *core.Node) *core.Node {
		p.Children = insertAt(p.Children, clamp(newIndex, len(p.Children)), node)
		return p
	})
	if err != nil {
		return d, err
	}

	ix := d.index.Clone()
	ix.Reparent(id, newParentID)

	next := d
	next.Root = root
	next.index = ix
	return next, nil
}

// Reset returns the initial template with selection and variables cleared.
func (d Document) Reset() Document {
	return Template()
}

// SetVariable stores value under key.
func (d Document) SetVariable(key string, value any) (Document, error) {
	if key == "" {
		return d, fmt.Errorf("set variable: empty key: %w", core.ErrInvalidAction)
	}
	vars := make(map[string]any, len(d.Variables)+1)
	for k, v := range d.Variables {
		vars[k] = v
	}
	vars[key] = value
	next := d
	next.Variables = vars
	return next, nil
}

// SetSelected selects id, or clears the selection when id is empty.
func (d Document) SetSelected(id string) (Document, error) {
	if id != "" && !d.index.Has(id) {
		return d, fmt.Errorf("select %s: %w", id, core.ErrNotFound)
	}
	if id == d.SelectedID {
		return d, core.ErrNoop
	}
	next := d
	next.SelectedID = id
	return next, nil
}

// SetTitle renames the page.
func (d Document) SetTitle(title string) (Document, error) {
	if title == "" {
		return d, core.ErrMissingTitle
	}
	if title == d.Title {
		return d, core.ErrNoop
	}
	next := d
	next.Title = title
	return next, nil
}
