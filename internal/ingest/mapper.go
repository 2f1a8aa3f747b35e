package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/agentic-research/tagsync/api"
	"github.com/agentic-research/tagsync/internal/datatype"
	"github.com/agentic-research/tagsync/internal/driver"
	"github.com/agentic-research/tagsync/internal/graph"
	"github.com/agentic-research/tagsync/internal/tabular"
)

// Mapped is a detached node built from one row, plus the row's BrowsePath.
type Mapped struct {
	Node *graph.Node
	Path string
}

// Mapper converts rows into detached nodes.
type Mapper struct {
	resolver *datatype.Resolver
}

func NewMapper(resolver *datatype.Resolver) *Mapper {
	if resolver == nil {
		resolver = datatype.NewResolver(nil)
	}
	return &Mapper{resolver: resolver}
}

// MapRow builds the node a row describes. Structure rows yield a tag
// structure (array-shaped when ArrayLength is set); any other Type must name
// a tag kind.
func (m *Mapper) MapRow(values []string, header tabular.Header) (*Mapped, error) {
	cell := func(name string) string {
		v, _ := header.Cell(values, name)
		return v
	}

	kind, err := driver.KindByName(cell(api.ColumnType))
	if err != nil {
		return nil, err
	}
	name := cell(api.ColumnBrowseName)
	if name == "" {
		return nil, ErrEmptyName
	}

	var n *graph.Node
	switch {
	case kind == graph.KindStructure:
		n, err = m.mapStructure(name, cell(api.ColumnArrayLength))
	case kind.IsTag():
		n, err = m.mapTag(kind, name, values, header)
	default:
		err = &driver.UnsupportedKindError{Kind: cell(api.ColumnType)}
	}
	if err != nil {
		return nil, err
	}
	return &Mapped{Node: n, Path: cell(api.ColumnBrowsePath)}, nil
}

func (m *Mapper) mapStructure(name, arrayLength string) (*graph.Node, error) {
	if strings.TrimSpace(arrayLength) == "" {
		return graph.NewStructure(name), nil
	}
	dims, err := parseArrayLength(arrayLength, 1)
	if err != nil {
		return nil, err
	}
	return graph.NewStructure(name, dims...), nil
}

func (m *Mapper) mapTag(kind graph.Kind, name string, values []string, header tabular.Header) (*graph.Node, error) {
	tag, err := graph.NewTag(kind, name)
	if err != nil {
		return nil, err
	}

	// 1. Data type
	dataTypeName, _ := header.Cell(values, api.ColumnNodeDataType)
	id, err := m.resolver.Resolve(dataTypeName)
	if err != nil {
		return nil, err
	}
	tag.SetDataType(id)

	// 2. Array shape
	if arrayLength, _ := header.Cell(values, api.ColumnArrayLength); strings.TrimSpace(arrayLength) != "" {
		dims, err := parseArrayLength(arrayLength, 2)
		if err != nil {
			return nil, err
		}
		tag.SetArrayDimensions(dims...)
	}

	// 3. Declared properties with a non-empty same-named cell
	for _, p := range driver.Schema(kind) {
		if !p.Settable() {
			continue
		}
		raw, ok := header.Cell(values, p.Name)
		if !ok || raw == "" {
			continue
		}
		v, err := p.Parse(raw)
		if err != nil {
			return nil, err
		}
		if err := p.Set(tag, v); err != nil {
			return nil, err
		}
	}
	return tag, nil
}

// parseArrayLength parses "N" or "N,M" into at most maxDims dimensions.
func parseArrayLength(s string, maxDims int) ([]uint32, error) {
	parts := strings.Split(s, api.ArrayLengthSeparator)
	if len(parts) > maxDims {
		return nil, &driver.ValueParseError{
			Property: api.ColumnArrayLength,
			Value:    s,
			Err:      fmt.Errorf("at most %d dimension(s) allowed", maxDims),
		}
	}
	dims := make([]uint32, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			var ne *strconv.NumError
			if errors.As(err, &ne) {
				err = ne.Err
			}
			return nil, &driver.ValueParseError{Property: api.ColumnArrayLength, Value: s, Err: err}
		}
		dims = append(dims, uint32(n))
	}
	if err := graph.CheckArrayDimensions(dims...); err != nil {
		return nil, &driver.ValueParseError{Property: api.ColumnArrayLength, Value: s, Err: err}
	}
	return dims, nil
}
