// Package store persists the node tree, either as a SQLite database or as a
// JSON snapshot. The format is chosen by file extension.
package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agentic-research/tagsync/api"
	"github.com/agentic-research/tagsync/internal/driver"
	"github.com/agentic-research/tagsync/internal/graph"
)

var ErrFormat = errors.New("unsupported tree file format")

// Load reads a tree from path (.db/.sqlite or .json).
func Load(path string) (*graph.Tree, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite":
		return LoadSQLite(path)
	case ".json":
		return LoadJSONFile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, path)
	}
}

// Save writes t to path, replacing its previous contents.
func Save(path string, t *graph.Tree) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite":
		return SaveSQLite(path, t)
	case ".json":
		return SaveJSONFile(path, t)
	default:
		return fmt.Errorf("%w: %s", ErrFormat, path)
	}
}

// encodeProps renders stored properties as strings, using the kind's schema
// where it declares the property.
func encodeProps(n *graph.Node) map[string]any {
	names := n.PropertyNames()
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]any, len(names))
	for _, name := range names {
		v, _ := n.Property(name)
		if p, ok := driver.Lookup(n.Kind(), name); ok {
			out[name] = p.Format(v)
		} else {
			out[name] = fmt.Sprint(v)
		}
	}
	return out
}

func decodeProps(n *graph.Node, props map[string]any) error {
	for name, raw := range props {
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("%s.%s: want string, got %T", n.BrowseName(), name, raw)
		}
		p, ok := driver.Lookup(n.Kind(), name)
		if !ok {
			n.SetProperty(name, s)
			continue
		}
		if !p.Settable() {
			continue
		}
		v, err := p.Parse(s)
		if err != nil {
			return fmt.Errorf("%s: %w", n.BrowseName(), err)
		}
		if err := p.Set(n, v); err != nil {
			return fmt.Errorf("%s: %w", n.BrowseName(), err)
		}
	}
	return nil
}

func formatDims(dims []uint32) string {
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.FormatUint(uint64(d), 10)
	}
	return strings.Join(parts, api.ArrayLengthSeparator)
}

func parseDims(s string) ([]uint32, error) {
	if s == "" {
		return nil, nil
	}
	var dims []uint32
	for _, part := range strings.Split(s, api.ArrayLengthSeparator) {
		d, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("array dims %q: %w", s, err)
		}
		dims = append(dims, uint32(d))
	}
	return dims, nil
}
