package graph

import (
	"testing"

	"github.com/agentic-research/tagsync/internal/datatype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T) (*Tree, *Node) {
	t.Helper()
	tree := NewTree()
	model := NewFolder("Model")
	require.NoError(t, tree.AddRoot(model))

	tags := NewFolder("Tags")
	require.NoError(t, model.Add(tags))

	motor := NewStructure("Motor")
	require.NoError(t, tags.Add(motor))

	speed, err := NewTag(KindS7TCPTag, "Speed")
	require.NoError(t, err)
	speed.SetDataType(datatype.Int32)
	require.NoError(t, motor.Add(speed))

	return tree, tags
}

func TestTree_FindAndLookup(t *testing.T) {
	tree, tags := buildTree(t)

	n, err := tree.Find("Model/Tags/Motor/Speed")
	require.NoError(t, err)
	assert.Equal(t, "Speed", n.BrowseName())
	assert.Equal(t, "Motor", n.Owner().BrowseName())
	assert.Same(t, tree, n.Tree())

	got, ok := tree.Lookup(tags.ID())
	require.True(t, ok)
	assert.Same(t, tags, got)

	_, err = tree.Find("Model/Nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = tree.Find("")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNode_AddRejectsDuplicatesAndTagOwners(t *testing.T) {
	_, tags := buildTree(t)

	err := tags.Add(NewStructure("Motor"))
	assert.ErrorIs(t, err, ErrDuplicateName)

	speed := tags.Child("Motor").Child("Speed")
	require.NotNil(t, speed)
	err = speed.Add(NewFolder("x"))
	assert.ErrorIs(t, err, ErrNotContainer)

	err = tags.Add(speed)
	assert.ErrorIs(t, err, ErrAttached)

	_, err = NewTag(KindFolder, "bad")
	assert.ErrorIs(t, err, ErrNotTagKind)
}

func TestTree_StatsTracksClasses(t *testing.T) {
	tree, tags := buildTree(t)

	s := tree.Stats()
	assert.Equal(t, Stats{Nodes: 4, Tags: 1, Structures: 1, Folders: 2}, s)

	arr := NewStructure("Valves", 4)
	require.NoError(t, tags.Add(arr))
	s = tree.Stats()
	assert.Equal(t, uint64(1), s.StructureArrays)
	assert.Equal(t, uint64(1), s.Structures)

	// Reshaping moves the node between classes.
	arr.SetArrayDimensions()
	s = tree.Stats()
	assert.Equal(t, uint64(0), s.StructureArrays)
	assert.Equal(t, uint64(2), s.Structures)
}

func TestNode_DetachUnindexesSubtree(t *testing.T) {
	tree, tags := buildTree(t)
	motor := tags.Child("Motor")
	speed := motor.Child("Speed")

	motor.Detach()
	assert.Nil(t, tags.Child("Motor"))
	assert.Nil(t, motor.Owner())
	assert.Nil(t, speed.Tree())
	_, ok := tree.Lookup(speed.ID())
	assert.False(t, ok)
	assert.Equal(t, Stats{Nodes: 2, Folders: 2}, tree.Stats())

	// A detached subtree can be re-attached elsewhere.
	require.NoError(t, tags.Add(motor))
	assert.Equal(t, uint64(1), tree.Stats().Tags)
}

func TestTree_HasTagUnder(t *testing.T) {
	tree, tags := buildTree(t)

	assert.True(t, tree.HasTagUnder(tags))
	assert.True(t, tree.HasTagUnder(tree.Root("Model")))

	empty := NewFolder("Empty")
	require.NoError(t, tags.Add(empty))
	require.NoError(t, empty.Add(NewStructure("OnlyStruct")))
	assert.False(t, tree.HasTagUnder(empty))
}

func TestNode_ValueType(t *testing.T) {
	tag, err := NewTag(KindModbusTag, "Level")
	require.NoError(t, err)

	tag.SetDataType(datatype.Double)
	assert.Equal(t, ValueType{Kind: datatype.KindDouble}, tag.ValueType())
	assert.Equal(t, float64(0), tag.Value())

	tag.SetArrayDimensions(3, 4)
	assert.Equal(t, ValueType{Kind: datatype.KindDouble, Rank: 2}, tag.ValueType())
	v, ok := tag.Value().([]any)
	require.True(t, ok)
	require.Len(t, v, 3)
	assert.Len(t, v[0], 4)

	assert.Equal(t, ValueType{}, NewFolder("f").ValueType())
	assert.Equal(t, "double[2]", tag.ValueType().String())
}

func TestCheckArrayDimensions(t *testing.T) {
	assert.NoError(t, CheckArrayDimensions())
	assert.NoError(t, CheckArrayDimensions(1024, 1024))
	assert.NoError(t, CheckArrayDimensions(0, 4294967295))
	assert.ErrorIs(t, CheckArrayDimensions(1024, 1025), ErrArrayTooLarge)
	assert.ErrorIs(t, CheckArrayDimensions(4294967295, 4294967295), ErrArrayTooLarge)

	tag, err := NewTag(KindCODESYSTag, "Huge")
	require.NoError(t, err)
	tag.SetDataType(datatype.Int32)
	tag.SetArrayDimensions(100000, 100000)
	assert.Nil(t, tag.Value())
	assert.Equal(t, []uint32{100000, 100000}, tag.ArrayDimensions())
}

func TestNode_WalkOrderAndProperties(t *testing.T) {
	_, tags := buildTree(t)
	require.NoError(t, tags.Add(NewFolder("Zeta")))

	var names []string
	tags.Walk(func(n *Node) bool {
		names = append(names, n.BrowseName())
		return true
	})
	assert.Equal(t, []string{"Tags", "Motor", "Speed", "Zeta"}, names)

	speed := tags.Child("Motor").Child("Speed")
	speed.SetProperty("Position", uint32(12))
	speed.SetProperty("BlockNumber", uint16(3))
	assert.Equal(t, []string{"BlockNumber", "Position"}, speed.PropertyNames())
	v, ok := speed.Property("Position")
	require.True(t, ok)
	assert.Equal(t, uint32(12), v)
}
