// Package tree provides lookups over the schema tree and the parent index
// kept alongside it.
package tree

import (
	"sort"

	"github.com/aretw0/lattice/pkg/core"
)

// Index maps every node id of a document to the id of its direct parent.
// The root maps to "".
//
// An Index value is read-only once published in a document. Writers call
// Clone first and mutate the copy.
type Index struct {
	parents map[string]string
}

// Build indexes every node reachable from root.
func Build(root *core.Node) Index {
	ix := Index{parents: make(map[string]string)}
	if root != nil {
		ix.Register("", root)
	}
	return ix
}

// Clone returns an independent copy of the index.
func (ix Index) Clone() Index {
	cp := Index{parents: make(map[string]string, len(ix.parents))}
	for k, v := range ix.parents {
		cp.parents[k] = v
	}
	return cp
}

// ParentOf returns the parent id of id. The root reports ("", true);
// unknown ids report ("", false).
func (ix Index) ParentOf(id string) (string, bool) {
	p, ok := ix.parents[id]
	return p, ok
}

// Has reports whether id is indexed.
func (ix Index) Has(id string) bool {
	_, ok := ix.parents[id]
	return ok
}

// Len returns the number of indexed ids.
func (ix Index) Len() int {
	return len(ix.parents)
}

// IDs returns the indexed ids, sorted.
func (ix Index) IDs() []string {
	ids := make([]string, 0, len(ix.parents))
	for id := range ix.parents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Ancestors returns the parent chain of id, nearest first, ending at the root.
// It returns nil for the root and for unknown ids.
func (ix Index) Ancestors(id string) []string {
	var chain []string
	cur, ok := ix.parents[id]
	if !ok {
		return nil
	}
	for cur != "" {
		chain = append(chain, cur)
		// A malformed index could loop; a chain can never exceed the entry count.
		if len(chain) > len(ix.parents) {
			return nil
		}
		cur = ix.parents[cur]
	}
	return chain
}

// IsAncestor reports whether anc is id itself or one of its ancestors.
func (ix Index) IsAncestor(anc, id string) bool {
	if anc == id {
		return true
	}
	for _, a := range ix.Ancestors(id) {
		if a == anc {
			return true
		}
	}
	return false
}

// Register records n under parentID and every descendant of n under its
// own parent.
func (ix *Index) Register(parentID string, n *core.Node) {
	if ix.parents == nil {
		ix.parents = make(map[string]string)
	}
	ix.parents[n.ID] = parentID
	for _, c := range n.Children {
		ix.Register(n.ID, c)
	}
}

// Prune removes n and all of its descendants.
func (ix *Index) Prune(n *core.Node) {
	delete(ix.parents, n.ID)
	for _, c := range n.Children {
		ix.Prune(c)
	}
}

// Reparent points id at a new parent.
func (ix *Index) Reparent(id, parentID string) {
	ix.parents[id] = parentID
}
