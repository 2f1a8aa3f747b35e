package ingest

import (
	"testing"

	"github.com/agentic-research/tagsync/internal/datatype"
	"github.com/agentic-research/tagsync/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTag(t *testing.T, kind graph.Kind, name string, id datatype.ID, dims ...uint32) *graph.Node {
	t.Helper()
	n, err := graph.NewTag(kind, name)
	require.NoError(t, err)
	n.SetDataType(id)
	n.SetArrayDimensions(dims...)
	return n
}

func TestReconcile_CreateThenUpdate(t *testing.T) {
	owner := graph.NewStructure("Motor")

	first := newTag(t, graph.KindS7TCPTag, "Speed", datatype.Int32)
	first.SetProperty("BlockNumber", uint16(1))
	first.SetProperty("Position", uint32(8))

	out, err := Reconcile(owner, first)
	require.NoError(t, err)
	assert.Equal(t, Created, out)
	assert.Same(t, first, owner.Child("Speed"))

	second := newTag(t, graph.KindS7TCPTag, "Speed", datatype.Int32)
	second.SetProperty("BlockNumber", uint16(2))

	out, err = Reconcile(owner, second)
	require.NoError(t, err)
	assert.Equal(t, Updated, out)
	require.Len(t, owner.Children(), 1)

	existing := owner.Child("Speed")
	assert.Same(t, first, existing)
	v, _ := existing.Property("BlockNumber")
	assert.Equal(t, uint16(2), v)
	// Unset on the mapped node, so the existing value survives.
	v, _ = existing.Property("Position")
	assert.Equal(t, uint32(8), v)
}

func TestReconcile_TypeMismatchLeavesTagAlone(t *testing.T) {
	owner := graph.NewStructure("Motor")
	existing := newTag(t, graph.KindS7TCPTag, "Speed", datatype.Int32)
	existing.SetProperty("BlockNumber", uint16(1))
	require.NoError(t, owner.Add(existing))

	tests := []struct {
		name   string
		mapped *graph.Node
	}{
		{"data type", newTag(t, graph.KindS7TCPTag, "Speed", datatype.Double)},
		{"rank", newTag(t, graph.KindS7TCPTag, "Speed", datatype.Int32, 4)},
		{"kind", newTag(t, graph.KindModbusTag, "Speed", datatype.Int32)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mapped.SetProperty("BlockNumber", uint16(99))

			out, err := Reconcile(owner, tt.mapped)
			assert.Equal(t, Skipped, out)
			require.ErrorIs(t, err, ErrTypeMismatch)

			var tm *TypeMismatchError
			require.ErrorAs(t, err, &tm)
			assert.Equal(t, "Speed", tm.BrowseName)

			v, _ := existing.Property("BlockNumber")
			assert.Equal(t, uint16(1), v)
			assert.Equal(t, datatype.Int32, existing.DataType())
		})
	}
}

func TestReconcile_SameValueKindDifferentID(t *testing.T) {
	// UtcTime and DateTime share a runtime value type, so the update goes
	// through.
	owner := graph.NewFolder("Tags")
	require.NoError(t, owner.Add(newTag(t, graph.KindCODESYSTag, "Stamp", datatype.UtcTime)))

	out, err := Reconcile(owner, newTag(t, graph.KindCODESYSTag, "Stamp", datatype.DateTime))
	require.NoError(t, err)
	assert.Equal(t, Updated, out)
}

func TestReconcile_Structures(t *testing.T) {
	owner := graph.NewFolder("Tags")

	out, err := Reconcile(owner, graph.NewStructure("Motor"))
	require.NoError(t, err)
	assert.Equal(t, Created, out)

	out, err = Reconcile(owner, graph.NewStructure("Motor", 3))
	require.NoError(t, err)
	assert.Equal(t, Unchanged, out)
	assert.Empty(t, owner.Child("Motor").ArrayDimensions())
}

func TestReconcile_NoOwner(t *testing.T) {
	out, err := Reconcile(nil, graph.NewStructure("Motor"))
	assert.Equal(t, Skipped, out)
	assert.ErrorIs(t, err, ErrNoDestination)
}
