package tree

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/core"
)

// FindNode returns the first node with the given id in a pre-order walk.
func FindNode(root *core.Node, id string) (*core.Node, bool) {
	if root == nil {
		return nil, false
	}
	if root.ID == id {
		return root, true
	}
	for _, c := range root.Children {
		if n, ok := FindNode(c, id); ok {
			return n, true
		}
	}
	return nil, false
}

// FindParentAndIndex returns the direct parent id of id and its position
// among the parent's children. The root has no parent and is not found.
func FindParentAndIndex(root *core.Node, id string) (parentID string, index int, ok bool) {
	if root == nil {
		return "", 0, false
	}
	for i, c := range root.Children {
		if c.ID == id {
			return root.ID, i, true
		}
		if p, idx, found := FindParentAndIndex(c, id); found {
			return p, idx, true
		}
	}
	return "", 0, false
}

// Lookup resolves id by following the index from the root down, touching
// only the nodes on the path instead of scanning the whole tree.
func Lookup(root *core.Node, ix Index, id string) (*core.Node, bool) {
	if root == nil || !ix.Has(id) {
		return nil, false
	}
	ancestors := ix.Ancestors(id)
	node := root
	if len(ancestors) == 0 {
		return root, root.ID == id
	}
	if ancestors[len(ancestors)-1] != root.ID {
		return nil, false
	}
	for i := len(ancestors) - 2; i >= -1; i-- {
		next := id
		if i >= 0 {
			next = ancestors[i]
		}
		pos := IndexOf(node, next)
		if pos < 0 {
			return nil, false
		}
		node = node.Children[pos]
	}
	return node, true
}

// IndexOf returns the position of the child with the given id, or -1.
func IndexOf(parent *core.Node, id string) int {
	for i, c := range parent.Children {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Walk visits the subtree in pre-order. fn receives each node and its
// parent (nil for n itself); returning false skips the node's children.
func Walk(n *core.Node, fn func(node, parent *core.Node) bool) {
	walk(n, nil, fn)
}

func walk(n, parent *core.Node, fn func(node, parent *core.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n, parent) {
		return
	}
	for _, c := range n.Children {
		walk(c, n, fn)
	}
}

// Count returns the number of nodes in the subtree.
func Count(n *core.Node) int {
	total := 0
	Walk(n, func(_, _ *core.Node) bool {
		total++
		return true
	})
	return total
}

// Rewrite returns a new root in which the node id has been replaced by
// edit's result. Only the nodes on the path from root to id are copied;
// every other subtree is shared with the original.
//
// edit receives a shallow copy of the target and may change its fields and
// its children slice freely.
func Rewrite(root *core.Node, ix Index, id string, edit func(n *core.Node) *core.Node) (*core.Node, error) {
	if !ix.Has(id) {
		return nil, fmt.Errorf("%s: %w", id, core.ErrNotFound)
	}

	ancestors := ix.Ancestors(id)
	ids := make([]string, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		ids = append(ids, ancestors[i])
	}
	ids = append(ids, id)

	if ids[0] != root.ID {
		return nil, fmt.Errorf("%s: index does not lead to root: %w", id, core.ErrNotFound)
	}

	path := []*core.Node{root}
	for _, cid := range ids[1:] {
		parent := path[len(path)-1]
		pos := IndexOf(parent, cid)
		if pos < 0 {
			return nil, fmt.Errorf("%s: index is stale: %w", cid, core.ErrNotFound)
		}
		path = append(path, parent.Children[pos])
	}

	updated := edit(path[len(path)-1].ShallowCopy())
	for i := len(path) - 2; i >= 0; i-- {
		p := path[i].ShallowCopy()
		p.Children[IndexOf(p, path[i+1].ID)] = updated
		updated = p
	}
	return updated, nil
}
