package driver

import (
	"testing"

	"github.com/agentic-research/tagsync/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindByName_RoundTrip(t *testing.T) {
	for _, k := range append([]graph.Kind{graph.KindStructure, graph.KindFolder}, graph.TagKinds...) {
		got, err := KindByName(FullName(k))
		require.NoError(t, err, k)
		assert.Equal(t, k, got)
	}

	got, err := KindByName("  FTOptix.Modbus.Tag ")
	require.NoError(t, err)
	assert.Equal(t, graph.KindModbusTag, got)
}

func TestKindByName_Unsupported(t *testing.T) {
	_, err := KindByName("FTOptix.OmronFins.Tag")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedKind)

	var uk *UnsupportedKindError
	require.ErrorAs(t, err, &uk)
	assert.Equal(t, "FTOptix.OmronFins.Tag", uk.Kind)
}

func TestProperty_Parse(t *testing.T) {
	tests := []struct {
		kind graph.Kind
		prop string
		cell string
		want any
	}{
		{graph.KindS7TCPTag, "BlockNumber", "12", uint16(12)},
		{graph.KindS7TCPTag, "Position", " 4096 ", uint32(4096)},
		{graph.KindS7TCPTag, "Bit", "7", uint8(7)},
		{graph.KindS7TCPTag, "MemoryArea", "Merker", int32(3)},
		{graph.KindS7TCPTag, "MemoryArea", "1", int32(1)},
		{graph.KindModbusTag, "SwapBytes", "True", true},
		{graph.KindModbusTag, "SwapWords", "false", false},
		{graph.KindModbusTag, "ScalingFactor", "0.25", 0.25},
		{graph.KindRAEtherNetIPTag, "StringLength", "-3", int16(-3)},
		{graph.KindRAEtherNetIPTag, "Timeout", "2500", int32(2500)},
		{graph.KindCODESYSTag, "SymbolName", " Application.GVL.x ", " Application.GVL.x "},
	}
	for _, tt := range tests {
		t.Run(tt.prop+"="+tt.cell, func(t *testing.T) {
			p, ok := Lookup(tt.kind, tt.prop)
			require.True(t, ok)
			v, err := p.Parse(tt.cell)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestProperty_ParseErrors(t *testing.T) {
	tests := []struct {
		kind graph.Kind
		prop string
		cell string
	}{
		{graph.KindS7TCPTag, "BlockNumber", "70000"},
		{graph.KindS7TCPTag, "BlockNumber", "-1"},
		{graph.KindS7TCPTag, "Bit", "256"},
		{graph.KindS7TCPTag, "MemoryArea", "merker"},
		{graph.KindS7TCPTag, "MemoryArea", "42"},
		{graph.KindModbusTag, "SwapBytes", "yes"},
		{graph.KindModbusTag, "SwapBytes", "1"},
		{graph.KindModbusTag, "ScalingFactor", "abc"},
		{graph.KindRAEtherNetIPTag, "Timeout", "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.prop+"="+tt.cell, func(t *testing.T) {
			p, ok := Lookup(tt.kind, tt.prop)
			require.True(t, ok)
			_, err := p.Parse(tt.cell)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValueParse)

			var vpe *ValueParseError
			require.ErrorAs(t, err, &vpe)
			assert.Equal(t, tt.prop, vpe.Property)
			assert.Equal(t, tt.cell, vpe.Value)
		})
	}
}

func TestProperty_SetChecksType(t *testing.T) {
	tag, err := graph.NewTag(graph.KindS7TCPTag, "Speed")
	require.NoError(t, err)

	p, ok := Lookup(graph.KindS7TCPTag, "BlockNumber")
	require.True(t, ok)

	_, set := p.Get(tag)
	assert.False(t, set)

	require.NoError(t, p.Set(tag, uint16(5)))
	v, set := p.Get(tag)
	require.True(t, set)
	assert.Equal(t, uint16(5), v)
	assert.Equal(t, "5", p.Format(v))

	err = p.Set(tag, 5)
	assert.ErrorIs(t, err, ErrPropertyType)
}

func TestValueRank_FollowsShape(t *testing.T) {
	tag, err := graph.NewTag(graph.KindCODESYSTag, "Buf")
	require.NoError(t, err)

	p, ok := Lookup(graph.KindCODESYSTag, ReservedValueRank)
	require.True(t, ok)
	assert.False(t, p.Settable())

	v, _ := p.Get(tag)
	assert.Equal(t, "Scalar", p.Format(v))

	tag.SetArrayDimensions(8)
	v, _ = p.Get(tag)
	assert.Equal(t, "OneDimension", p.Format(v))

	tag.SetArrayDimensions(2, 3)
	v, _ = p.Get(tag)
	assert.Equal(t, "TwoDimensions", p.Format(v))

	assert.ErrorIs(t, p.Set(tag, int32(-1)), ErrReadOnly)
	assert.Equal(t, []uint32{2, 3}, tag.ArrayDimensions())
}

func TestProperty_Format(t *testing.T) {
	p, _ := Lookup(graph.KindModbusTag, "ScalingFactor")
	assert.Equal(t, "1000000", p.Format(1e6))
	assert.Equal(t, "0.5", p.Format(0.5))

	p, _ = Lookup(graph.KindModbusTag, "SwapBytes")
	assert.Equal(t, "True", p.Format(true))
	assert.Equal(t, "False", p.Format(false))

	p, _ = Lookup(graph.KindModbusTag, "MemoryArea")
	assert.Equal(t, "HoldingRegister", p.Format(int32(2)))
	assert.Equal(t, "", p.Format(nil))
}

func TestNamesAndColumns(t *testing.T) {
	assert.Equal(t, []string{"SymbolName", "MaximumLength"}, Names(graph.KindS7TiaProfinetTag))
	assert.Equal(t, []string{"SymbolName", "MaximumLength", "ValueRank"}, Columns(graph.KindS7TiaProfinetTag))
	assert.Empty(t, Names(graph.KindStructure))
	assert.Empty(t, Columns(graph.KindStructure))
	for _, k := range graph.TagKinds {
		assert.NotContains(t, Names(k), ReservedValueRank, k.String())
		assert.Contains(t, Columns(k), ReservedValueRank, k.String())
	}
}
