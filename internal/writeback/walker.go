package writeback

import (
	"github.com/agentic-research/tagsync/api"
	"github.com/agentic-research/tagsync/internal/graph"
)

// Collection partitions the exportable descendants of a root.
type Collection struct {
	Tags            []*graph.Node
	Structures      []*graph.Node
	StructureArrays []*graph.Node
}

// Collect walks the descendants of root in child order. Tags are collected;
// structures are collected and descended into; folders are transparent.
// root itself is never collected.
func Collect(root *graph.Node) Collection {
	var c Collection
	for _, child := range root.Children() {
		collect(child, &c)
	}
	return c
}

func collect(n *graph.Node, c *Collection) {
	switch {
	case n.IsTag():
		c.Tags = append(c.Tags, n)
		return
	case n.IsStructure():
		if len(n.ArrayDimensions()) > 0 {
			c.StructureArrays = append(c.StructureArrays, n)
		} else {
			c.Structures = append(c.Structures, n)
		}
	}
	for _, child := range n.Children() {
		collect(child, c)
	}
}

// FindTag returns the first tag at or below root in depth-first child order,
// or nil.
func FindTag(root *graph.Node) *graph.Node {
	var found *graph.Node
	root.Walk(func(n *graph.Node) bool {
		if found != nil {
			return false
		}
		if n.IsTag() {
			found = n
			return false
		}
		return true
	})
	return found
}

// BrowsePath returns the path of n relative to root, starting with root's own
// browse name. n must be root or one of its descendants.
func BrowsePath(root, n *graph.Node) string {
	if n.ID() == root.ID() || n.Owner() == nil {
		return n.BrowseName()
	}
	return BrowsePath(root, n.Owner()) + api.PathSeparator + n.BrowseName()
}
