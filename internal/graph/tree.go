package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/google/uuid"
)

// Tree is the in-memory node tree of the automation runtime: a set of named
// roots plus an index over every attached node.
type Tree struct {
	roots []*Node

	// Roaring bitmap index: node class -> set of internal IDs.
	// Gives O(1) counts and cheap "any tag under X" checks.
	tags            *roaring.Bitmap
	structures      *roaring.Bitmap
	structureArrays *roaring.Bitmap
	folders         *roaring.Bitmap

	nodeIntID  map[uuid.UUID]uint32 // Node.id -> internal bitmap uint32 ID
	intToNode  []*Node              // reverse: uint32 -> node (nil once detached)
	nextIntID  uint32
	byIdentity map[uuid.UUID]*Node
}

func NewTree() *Tree {
	return &Tree{
		tags:            roaring.New(),
		structures:      roaring.New(),
		structureArrays: roaring.New(),
		folders:         roaring.New(),
		nodeIntID:       make(map[uuid.UUID]uint32),
		byIdentity:      make(map[uuid.UUID]*Node),
	}
}

// AddRoot registers a detached node as a top-level root.
func (t *Tree) AddRoot(n *Node) error {
	if n.owner != nil || n.tree != nil {
		return fmt.Errorf("%w: %s", ErrAttached, n.browseName)
	}
	if t.Root(n.browseName) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateName, n.browseName)
	}
	t.roots = append(t.roots, n)
	t.attach(n)
	return nil
}

// Roots returns the top-level nodes in insertion order.
func (t *Tree) Roots() []*Node {
	return slices.Clone(t.roots)
}

// Root returns the top-level node with the given browse name, or nil.
func (t *Tree) Root(browseName string) *Node {
	for _, r := range t.roots {
		if r.browseName == browseName {
			return r
		}
	}
	return nil
}

// Find resolves a slash-delimited browse path starting at a root,
// e.g. "Model/Tags/Line1".
func (t *Tree) Find(path string) (*Node, error) {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrNotFound)
	}
	n := t.Root(segments[0])
	for _, s := range segments[1:] {
		if n == nil {
			break
		}
		n = n.Child(s)
	}
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return n, nil
}

// SplitPath splits a browse path on '/', dropping empty segments.
func SplitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}

// Lookup returns an attached node by identity.
func (t *Tree) Lookup(id uuid.UUID) (*Node, bool) {
	n, ok := t.byIdentity[id]
	return n, ok
}

// Stats summarises the tree by node class.
type Stats struct {
	Nodes           uint64
	Tags            uint64
	Structures      uint64
	StructureArrays uint64
	Folders         uint64
}

func (t *Tree) Stats() Stats {
	return Stats{
		Nodes:           uint64(len(t.byIdentity)),
		Tags:            t.tags.GetCardinality(),
		Structures:      t.structures.GetCardinality(),
		StructureArrays: t.structureArrays.GetCardinality(),
		Folders:         t.folders.GetCardinality(),
	}
}

// HasTagUnder reports whether any tag is a descendant of n (or n itself).
func (t *Tree) HasTagUnder(n *Node) bool {
	it := t.tags.Iterator()
	for it.HasNext() {
		intID := it.Next()
		if int(intID) >= len(t.intToNode) {
			continue
		}
		tag := t.intToNode[intID]
		if tag == nil {
			continue
		}
		if tag == n || tag.IsDescendantOf(n) {
			return true
		}
	}
	return false
}

// attach indexes n and its subtree.
func (t *Tree) attach(n *Node) {
	n.Walk(func(c *Node) bool {
		c.tree = t
		t.index(c)
		return true
	})
}

func (t *Tree) detach(n *Node) {
	n.Walk(func(c *Node) bool {
		t.unindex(c)
		c.tree = nil
		return true
	})
}

func (t *Tree) removeRoot(n *Node) {
	t.roots = slices.DeleteFunc(t.roots, func(r *Node) bool { return r == n })
	t.detach(n)
}

// index assigns an internal bitmap ID and registers the node under its class.
func (t *Tree) index(n *Node) {
	intID, ok := t.nodeIntID[n.id]
	if !ok {
		intID = t.nextIntID
		t.nextIntID++
		t.nodeIntID[n.id] = intID
		for uint32(len(t.intToNode)) <= intID {
			t.intToNode = append(t.intToNode, nil)
		}
	}
	t.intToNode[intID] = n
	t.byIdentity[n.id] = n
	t.classify(n, intID)
}

func (t *Tree) unindex(n *Node) {
	intID, ok := t.nodeIntID[n.id]
	if !ok {
		return
	}
	t.tags.Remove(intID)
	t.structures.Remove(intID)
	t.structureArrays.Remove(intID)
	t.folders.Remove(intID)
	t.intToNode[intID] = nil
	delete(t.byIdentity, n.id)
}

func (t *Tree) reclassify(n *Node) {
	if intID, ok := t.nodeIntID[n.id]; ok {
		t.classify(n, intID)
	}
}

func (t *Tree) classify(n *Node, intID uint32) {
	switch {
	case n.IsTag():
		t.tags.Add(intID)
	case n.IsStructure():
		if len(n.dims) > 0 {
			t.structures.Remove(intID)
			t.structureArrays.Add(intID)
		} else {
			t.structureArrays.Remove(intID)
			t.structures.Add(intID)
		}
	case n.IsFolder():
		t.folders.Add(intID)
	}
}
