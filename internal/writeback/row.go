package writeback

import (
	"strconv"
	"strings"

	"github.com/agentic-research/tagsync/api"
	"github.com/agentic-research/tagsync/internal/datatype"
	"github.com/agentic-research/tagsync/internal/driver"
	"github.com/agentic-research/tagsync/internal/graph"
)

// BuildHeader returns the fixed columns followed by the property columns of
// kinds, deduplicated in first-occurrence order.
func BuildHeader(kinds ...graph.Kind) []string {
	header := append([]string(nil), api.FixedColumns...)
	seen := make(map[string]bool, len(header))
	for _, c := range header {
		seen[c] = true
	}
	for _, k := range kinds {
		for _, name := range driver.Columns(k) {
			if !seen[name] {
				seen[name] = true
				header = append(header, name)
			}
		}
	}
	return header
}

// ArrayLength renders an array shape: "", "N" or "N,M".
func ArrayLength(dims []uint32) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.FormatUint(uint64(d), 10)
	}
	return strings.Join(parts, api.ArrayLengthSeparator)
}

// TagRow serializes a tag against header. Property columns the tag's kind
// does not declare, or that were never set, are empty.
func TagRow(root, tag *graph.Node, header []string, catalog *datatype.Catalog) []string {
	row := make([]string, len(header))
	typeName, _ := catalog.Name(tag.DataType())
	for i, col := range header {
		switch col {
		case api.ColumnType:
			row[i] = driver.FullName(tag.Kind())
		case api.ColumnBrowseName:
			row[i] = tag.BrowseName()
		case api.ColumnBrowsePath:
			row[i] = BrowsePath(root, tag)
		case api.ColumnNodeDataType:
			row[i] = typeName
		case api.ColumnArrayLength:
			row[i] = ArrayLength(tag.ArrayDimensions())
		default:
			p, ok := driver.Lookup(tag.Kind(), col)
			if !ok {
				continue
			}
			if v, ok := p.Get(tag); ok {
				row[i] = p.Format(v)
			}
		}
	}
	return row
}

// StructureRow serializes a tag structure against header. Only the first
// dimension is written, and a zero length is written as empty.
func StructureRow(root, s *graph.Node, header []string) []string {
	row := make([]string, len(header))
	arrayLength := ""
	if dims := s.ArrayDimensions(); len(dims) > 0 && dims[0] != 0 {
		arrayLength = strconv.FormatUint(uint64(dims[0]), 10)
	}
	for i, col := range header {
		switch col {
		case api.ColumnType:
			row[i] = driver.FullName(s.Kind())
		case api.ColumnBrowseName:
			row[i] = s.BrowseName()
		case api.ColumnBrowsePath:
			row[i] = BrowsePath(root, s)
		case api.ColumnArrayLength:
			row[i] = arrayLength
		}
	}
	return row
}
