package store

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentic-research/tagsync/internal/datatype"
	"github.com/agentic-research/tagsync/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree(t *testing.T) *graph.Tree {
	t.Helper()
	tree := graph.NewTree()
	model := graph.NewFolder("Model")
	require.NoError(t, tree.AddRoot(model))
	tags := graph.NewFolder("Tags")
	require.NoError(t, model.Add(tags))

	valves := graph.NewStructure("Valves", 4)
	require.NoError(t, tags.Add(valves))

	speed, err := graph.NewTag(graph.KindS7TCPTag, "Speed")
	require.NoError(t, err)
	speed.SetDataType(datatype.Int32)
	speed.SetArrayDimensions(2, 3)
	speed.SetProperty("MemoryArea", int32(3))
	speed.SetProperty("BlockNumber", uint16(7))
	require.NoError(t, valves.Add(speed))

	level, err := graph.NewTag(graph.KindModbusTag, "Level")
	require.NoError(t, err)
	level.SetDataType(datatype.Double)
	level.SetProperty("SwapBytes", true)
	level.SetProperty("ScalingFactor", 0.5)
	require.NoError(t, tags.Add(level))

	require.NoError(t, tags.Add(graph.NewFolder("Empty")))
	return tree
}

func assertSameTree(t *testing.T, want, got *graph.Tree) {
	t.Helper()
	assert.Equal(t, want.Stats(), got.Stats())

	for _, r := range want.Roots() {
		r.Walk(func(n *graph.Node) bool {
			g, ok := got.Lookup(n.ID())
			if !assert.True(t, ok, n.BrowseName()) {
				return false
			}
			assert.Equal(t, n.BrowseName(), g.BrowseName())
			assert.Equal(t, n.Kind(), g.Kind())
			assert.Equal(t, n.DataType(), g.DataType())
			assert.Equal(t, n.ArrayDimensions(), g.ArrayDimensions())
			assert.Equal(t, n.PropertyNames(), g.PropertyNames())
			for _, name := range n.PropertyNames() {
				wv, _ := n.Property(name)
				gv, _ := g.Property(name)
				assert.Equal(t, wv, gv, name)
			}
			if n.Owner() != nil {
				assert.Equal(t, n.Owner().ID(), g.Owner().ID())
			}
			var wantNames, gotNames []string
			for _, c := range n.Children() {
				wantNames = append(wantNames, c.BrowseName())
			}
			for _, c := range g.Children() {
				gotNames = append(gotNames, c.BrowseName())
			}
			assert.Equal(t, wantNames, gotNames)
			return true
		})
	}
}

func TestSQLite_RoundTrip(t *testing.T) {
	want := sampleTree(t)
	path := filepath.Join(t.TempDir(), "tree.db")

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assertSameTree(t, want, got)

	// Saving again replaces rather than appends.
	require.NoError(t, Save(path, want))
	got, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, want.Stats(), got.Stats())
}

func TestSQLite_NewFileIsEmpty(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "fresh.db"))
	require.NoError(t, err)
	assert.Empty(t, got.Roots())
}

func TestJSON_RoundTrip(t *testing.T) {
	want := sampleTree(t)

	var buf bytes.Buffer
	require.NoError(t, DumpJSON(&buf, want))
	assert.Contains(t, buf.String(), `"FTOptix.S7TCP.Tag"`)
	assert.Contains(t, buf.String(), `"Merker"`)

	got, err := LoadJSON(&buf)
	require.NoError(t, err)
	assertSameTree(t, want, got)
}

func TestJSONFile_RoundTrip(t *testing.T) {
	want := sampleTree(t)
	path := filepath.Join(t.TempDir(), "tree.json")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, got.Roots())

	require.NoError(t, Save(path, want))
	got, err = Load(path)
	require.NoError(t, err)
	assertSameTree(t, want, got)
}

func TestLoadJSON_Errors(t *testing.T) {
	_, err := LoadJSON(strings.NewReader(`{"roots": [{"id": "not-a-uuid", "name": "x", "kind": "FTOptix.Core.Folder"}]}`))
	assert.Error(t, err)

	_, err = LoadJSON(strings.NewReader(`{"roots": [{"id": "6f1c1f4e-8a51-4a0e-9a57-3f0b2f1f2b11", "name": "x", "kind": "FTOptix.Bogus"}]}`))
	assert.Error(t, err)

	_, err = LoadJSON(strings.NewReader(`{"roots": [`))
	assert.Error(t, err)

	_, err = LoadJSON(strings.NewReader(`{"roots": [{"id": "6f1c1f4e-8a51-4a0e-9a57-3f0b2f1f2b11", "name": "x", "kind": "FTOptix.CODESYS.Tag", "array_dims": "4294967295,4294967295"}]}`))
	assert.ErrorIs(t, err, graph.ErrArrayTooLarge)
}

func TestUnknownExtension(t *testing.T) {
	_, err := Load("tree.xml")
	assert.ErrorIs(t, err, ErrFormat)
	assert.ErrorIs(t, Save("tree.xml", graph.NewTree()), ErrFormat)
}
