package driver

import (
	"github.com/agentic-research/tagsync/internal/graph"
)

// ReservedValueRank names the type-metadata property every tag kind carries.
// It mirrors the array shape and is never imported from a cell.
const ReservedValueRank = "ValueRank"

var ValueRankEnum = &EnumType{
	Name: "ValueRank",
	Members: []EnumMember{
		{"ScalarOrOneDimension", -3},
		{"Any", -2},
		{"Scalar", -1},
		{"OneOrMoreDimensions", 0},
		{"OneDimension", 1},
		{"TwoDimensions", 2},
	},
}

var S7MemoryArea = &EnumType{
	Name: "S7MemoryArea",
	Members: []EnumMember{
		{"DataBlock", 0},
		{"Input", 1},
		{"Output", 2},
		{"Merker", 3},
		{"Timer", 4},
		{"Counter", 5},
	},
}

var ModbusMemoryArea = &EnumType{
	Name: "ModbusMemoryArea",
	Members: []EnumMember{
		{"Coil", 0},
		{"DiscreteInput", 1},
		{"HoldingRegister", 2},
		{"InputRegister", 3},
	},
}

func rankOf(n *graph.Node) int32 {
	d := len(n.ArrayDimensions())
	if d == 0 {
		return -1
	}
	return int32(d)
}

// valueRank is computed from the array shape and cannot be written.
var valueRank = Property{
	Name: ReservedValueRank,
	Type: TypeEnum,
	Enum: ValueRankEnum,
	get: func(n *graph.Node) (any, bool) {
		return rankOf(n), true
	},
}

var schemas = map[graph.Kind][]Property{
	graph.KindS7TCPTag: {
		storedEnum("MemoryArea", S7MemoryArea),
		stored("BlockNumber", TypeUInt16),
		stored("Position", TypeUInt32),
		stored("Bit", TypeByte),
		stored("MaximumLength", TypeUInt16),
		valueRank,
	},
	graph.KindS7TiaProfinetTag: {
		stored("SymbolName", TypeString),
		stored("MaximumLength", TypeUInt16),
		valueRank,
	},
	graph.KindCODESYSTag: {
		stored("SymbolName", TypeString),
		valueRank,
	},
	graph.KindModbusTag: {
		storedEnum("MemoryArea", ModbusMemoryArea),
		stored("Address", TypeUInt16),
		stored("NumRegister", TypeUInt16),
		stored("BitOffset", TypeByte),
		stored("SwapBytes", TypeBool),
		stored("SwapWords", TypeBool),
		stored("ScalingFactor", TypeDouble),
		valueRank,
	},
	graph.KindRAEtherNetIPTag: {
		stored("SymbolName", TypeString),
		stored("StringLength", TypeInt16),
		stored("Timeout", TypeInt32),
		valueRank,
	},
}

// Schema returns the declared properties of a tag kind in declaration order.
// Non-tag kinds declare none.
func Schema(k graph.Kind) []Property {
	return schemas[k]
}

// Lookup returns the named property of kind k.
func Lookup(k graph.Kind, name string) (Property, bool) {
	for _, p := range schemas[k] {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Names returns the settable property names of k in declaration order.
func Names(k graph.Kind) []string {
	var out []string
	for _, p := range schemas[k] {
		if p.Settable() {
			out = append(out, p.Name)
		}
	}
	return out
}

// Columns returns every property name of k, computed ones included, in
// declaration order.
func Columns(k graph.Kind) []string {
	out := make([]string, 0, len(schemas[k]))
	for _, p := range schemas[k] {
		out = append(out, p.Name)
	}
	return out
}
