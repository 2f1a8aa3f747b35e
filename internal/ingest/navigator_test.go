package ingest

import (
	"testing"

	"github.com/agentic-research/tagsync/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOwner_CreatesInteriorSegments(t *testing.T) {
	root := graph.NewFolder("Root")

	owner, created, err := ResolveOwner(root, "Root/A/B/Leaf", true, PolicyStructure)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	require.NotNil(t, owner)
	assert.Equal(t, "B", owner.BrowseName())

	a := root.Child("A")
	require.NotNil(t, a)
	assert.True(t, a.IsStructure())
	require.Len(t, a.Children(), 1)
	assert.Same(t, owner, a.Child("B"))
	assert.Nil(t, owner.Child("Leaf"), "the row's own node is not created")

	// Second pass reuses what exists.
	again, created, err := ResolveOwner(root, "/Root//A/B/Other", true, PolicyStructure)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Same(t, owner, again)
}

func TestResolveOwner_FolderPolicy(t *testing.T) {
	root := graph.NewFolder("Root")

	owner, created, err := ResolveOwner(root, "Root/Line1/Leaf", true, PolicyFolder)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.True(t, owner.IsFolder())
	assert.Equal(t, "Line1", owner.BrowseName())
}

func TestResolveOwner_NoCreate(t *testing.T) {
	root := graph.NewFolder("Root")
	require.NoError(t, root.Add(graph.NewStructure("A")))

	owner, _, err := ResolveOwner(root, "Root/A/Leaf", false, PolicyStructure)
	require.NoError(t, err)
	assert.Equal(t, "A", owner.BrowseName())

	owner, created, err := ResolveOwner(root, "Root/Missing/Leaf", false, PolicyStructure)
	require.NoError(t, err)
	assert.Nil(t, owner)
	assert.Equal(t, 0, created)
	assert.Nil(t, root.Child("Missing"))
}

func TestResolveOwner_ShortPaths(t *testing.T) {
	root := graph.NewFolder("Root")

	owner, _, err := ResolveOwner(root, "Root/Leaf", true, PolicyStructure)
	require.NoError(t, err)
	assert.Same(t, root, owner)

	owner, _, err = ResolveOwner(root, "", true, PolicyStructure)
	require.NoError(t, err)
	assert.Same(t, root, owner)
}

func TestResolveOwner_NilRoot(t *testing.T) {
	owner, created, err := ResolveOwner(nil, "Root/A/Leaf", true, PolicyStructure)
	require.NoError(t, err)
	assert.Nil(t, owner)
	assert.Equal(t, 0, created)
}

func TestResolveOwner_ThroughTagFails(t *testing.T) {
	root := graph.NewFolder("Root")
	tag, err := graph.NewTag(graph.KindCODESYSTag, "A")
	require.NoError(t, err)
	require.NoError(t, root.Add(tag))

	_, _, err = ResolveOwner(root, "Root/A/B/Leaf", true, PolicyStructure)
	assert.ErrorIs(t, err, graph.ErrNotContainer)
}
