package graph

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/agentic-research/tagsync/internal/datatype"
	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("node not found")
	ErrDuplicateName = errors.New("browse name already in use")
	ErrNotContainer  = errors.New("node cannot own children")
	ErrAttached      = errors.New("node already has an owner")
	ErrNotTagKind    = errors.New("kind is not a tag kind")
	ErrArrayTooLarge = errors.New("array has too many elements")
)

// MaxArrayElements caps the element count of an array shape.
const MaxArrayElements = 1 << 20

// CheckArrayDimensions returns ErrArrayTooLarge when the shape holds more
// than MaxArrayElements elements.
func CheckArrayDimensions(dims ...uint32) error {
	total := uint64(1)
	for _, d := range dims {
		total *= uint64(d)
		if total > MaxArrayElements {
			return fmt.Errorf("%w: %v exceeds %d", ErrArrayTooLarge, dims, MaxArrayElements)
		}
	}
	return nil
}

// Kind is the closed set of node variants the tree knows about.
type Kind int

const (
	KindFolder Kind = iota
	KindStructure
	KindS7TCPTag
	KindS7TiaProfinetTag
	KindCODESYSTag
	KindModbusTag
	KindRAEtherNetIPTag
)

// TagKinds lists every tag kind in declaration order.
var TagKinds = []Kind{
	KindS7TCPTag,
	KindS7TiaProfinetTag,
	KindCODESYSTag,
	KindModbusTag,
	KindRAEtherNetIPTag,
}

func (k Kind) IsTag() bool {
	return k >= KindS7TCPTag && k <= KindRAEtherNetIPTag
}

func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "Folder"
	case KindStructure:
		return "TagStructure"
	case KindS7TCPTag:
		return "S7TCP.Tag"
	case KindS7TiaProfinetTag:
		return "S7TiaProfinet.Tag"
	case KindCODESYSTag:
		return "CODESYS.Tag"
	case KindModbusTag:
		return "Modbus.Tag"
	case KindRAEtherNetIPTag:
		return "RAEtherNetIP.Tag"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ValueType identifies the runtime type of a node's value: the element kind
// plus the array rank (0 for scalars).
type ValueType struct {
	Kind datatype.ValueKind
	Rank int
}

func (v ValueType) String() string {
	switch v.Rank {
	case 0:
		return v.Kind.String()
	case 1:
		return v.Kind.String() + "[]"
	default:
		return fmt.Sprintf("%s[%d]", v.Kind, v.Rank)
	}
}

// Node is a tag, a tag structure or a folder. A node is owned by exactly one
// parent; owner is a lookup aid for path queries and carries no authority.
type Node struct {
	id         uuid.UUID
	browseName string
	kind       Kind
	dataType   datatype.ID
	dims       []uint32
	value      any
	props      map[string]any

	owner    *Node
	children []*Node
	tree     *Tree
}

// New creates a detached node of any kind.
func New(kind Kind, browseName string) *Node {
	return Restore(uuid.New(), kind, browseName)
}

// Restore creates a detached node with a known identity, for loading a
// persisted tree.
func Restore(id uuid.UUID, kind Kind, browseName string) *Node {
	n := &Node{
		id:         id,
		browseName: browseName,
		kind:       kind,
	}
	if kind == KindStructure {
		n.dataType = datatype.Structure
	}
	n.resetValue()
	return n
}

// NewFolder creates a plain grouping container.
func NewFolder(browseName string) *Node {
	return New(KindFolder, browseName)
}

// NewStructure creates a tag structure; dims is empty for a scalar structure
// and holds a single length for a structure array.
func NewStructure(browseName string, dims ...uint32) *Node {
	n := New(KindStructure, browseName)
	n.SetArrayDimensions(dims...)
	return n
}

// NewTag creates a leaf tag of the given driver kind.
func NewTag(kind Kind, browseName string) (*Node, error) {
	if !kind.IsTag() {
		return nil, fmt.Errorf("%w: %s", ErrNotTagKind, kind)
	}
	return New(kind, browseName), nil
}

func (n *Node) ID() uuid.UUID { return n.id }

func (n *Node) BrowseName() string { return n.browseName }

func (n *Node) Kind() Kind { return n.kind }

func (n *Node) IsTag() bool { return n.kind.IsTag() }

func (n *Node) IsStructure() bool { return n.kind == KindStructure }

func (n *Node) IsFolder() bool { return n.kind == KindFolder }

// Owner returns the parent node, or nil for roots and detached nodes.
func (n *Node) Owner() *Node { return n.owner }

// Tree returns the tree the node is attached to, or nil.
func (n *Node) Tree() *Tree { return n.tree }

func (n *Node) DataType() datatype.ID { return n.dataType }

// SetDataType changes the data type and resets the current value.
func (n *Node) SetDataType(id datatype.ID) {
	n.dataType = id
	n.resetValue()
}

// ArrayDimensions returns a copy of the array shape (empty for scalars).
func (n *Node) ArrayDimensions() []uint32 {
	return slices.Clone(n.dims)
}

// SetArrayDimensions changes the array shape and resets the current value.
// A shape rejected by CheckArrayDimensions is recorded without a value.
func (n *Node) SetArrayDimensions(dims ...uint32) {
	if len(dims) == 0 {
		n.dims = nil
	} else {
		n.dims = slices.Clone(dims)
	}
	n.resetValue()
	if n.tree != nil {
		n.tree.reclassify(n)
	}
}

// Value returns the current value, typed by the data type and array shape.
func (n *Node) Value() any { return n.value }

// ValueType returns the runtime type of the current value. Folders have no
// value and report KindUnknown.
func (n *Node) ValueType() ValueType {
	if n.kind == KindFolder {
		return ValueType{}
	}
	return ValueType{Kind: datatype.KindOf(n.dataType), Rank: len(n.dims)}
}

func (n *Node) resetValue() {
	if n.kind == KindFolder {
		n.value = nil
		return
	}
	if CheckArrayDimensions(n.dims...) != nil {
		n.value = nil
		return
	}
	n.value = zeroArray(datatype.KindOf(n.dataType), n.dims)
}

func zeroArray(kind datatype.ValueKind, dims []uint32) any {
	if len(dims) == 0 {
		return datatype.Zero(kind)
	}
	out := make([]any, dims[0])
	for i := range out {
		out[i] = zeroArray(kind, dims[1:])
	}
	return out
}

// Property returns a stored property value.
func (n *Node) Property(name string) (any, bool) {
	v, ok := n.props[name]
	return v, ok
}

// SetProperty stores a property value. Callers are responsible for typing;
// see the driver package for schema-checked access.
func (n *Node) SetProperty(name string, v any) {
	if n.props == nil {
		n.props = make(map[string]any)
	}
	n.props[name] = v
}

// PropertyNames returns the names of stored properties, sorted.
func (n *Node) PropertyNames() []string {
	names := make([]string, 0, len(n.props))
	for name := range n.props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Children returns the children in insertion order.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// Child returns the child with the given browse name, or nil.
func (n *Node) Child(browseName string) *Node {
	for _, c := range n.children {
		if c.browseName == browseName {
			return c
		}
	}
	return nil
}

// Add attaches a detached child. Tags cannot own children and browse names
// are unique among siblings.
func (n *Node) Add(child *Node) error {
	if n.IsTag() {
		return fmt.Errorf("%w: %s is a tag", ErrNotContainer, n.browseName)
	}
	if child.owner != nil || child.tree != nil {
		return fmt.Errorf("%w: %s", ErrAttached, child.browseName)
	}
	if n.Child(child.browseName) != nil {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateName, n.browseName, child.browseName)
	}
	n.children = append(n.children, child)
	child.owner = n
	if n.tree != nil {
		n.tree.attach(child)
	}
	return nil
}

// Detach removes the node from its owner. The node and its subtree leave the
// tree index.
func (n *Node) Detach() {
	if n.owner == nil {
		if n.tree != nil {
			n.tree.removeRoot(n)
		}
		return
	}
	owner := n.owner
	owner.children = slices.DeleteFunc(owner.children, func(c *Node) bool { return c == n })
	n.owner = nil
	if n.tree != nil {
		n.tree.detach(n)
	}
}

// IsDescendantOf reports whether ancestor is a strict ancestor of n.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	for p := n.owner; p != nil; p = p.owner {
		if p.id == ancestor.id {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants depth-first in child order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}
