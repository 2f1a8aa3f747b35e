package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/agentic-research/tagsync/internal/driver"
	"github.com/agentic-research/tagsync/internal/graph"
	"github.com/agentic-research/tagsync/internal/workspace"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

const snapshotVersion = 1

var rootsExpr = jp.MustParseString("$.roots[*]")

// DumpJSON writes t as an indented JSON snapshot:
//
//	{"version": 1, "roots": [{"id": ..., "name": ..., "kind": ..., "children": [...]}]}
func DumpJSON(w io.Writer, t *graph.Tree) error {
	roots := make([]any, 0, len(t.Roots()))
	for _, r := range t.Roots() {
		roots = append(roots, nodeDoc(r))
	}
	doc := map[string]any{
		"version": int64(snapshotVersion),
		"roots":   roots,
	}
	if _, err := io.WriteString(w, oj.JSON(doc, &ojg.Options{Indent: 2, Sort: true})+"\n"); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func nodeDoc(n *graph.Node) map[string]any {
	doc := map[string]any{
		"id":   n.ID().String(),
		"name": n.BrowseName(),
		"kind": driver.FullName(n.Kind()),
	}
	if n.IsTag() {
		doc["data_type"] = int64(n.DataType())
	}
	if dims := n.ArrayDimensions(); len(dims) > 0 {
		doc["array_dims"] = formatDims(dims)
	}
	if props := encodeProps(n); props != nil {
		doc["props"] = props
	}
	if children := n.Children(); len(children) > 0 {
		docs := make([]any, 0, len(children))
		for _, c := range children {
			docs = append(docs, nodeDoc(c))
		}
		doc["children"] = docs
	}
	return doc
}

// LoadJSON reads a snapshot written by DumpJSON.
func LoadJSON(r io.Reader) (*graph.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	t := graph.NewTree()
	if len(data) == 0 {
		return t, nil
	}
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	for _, raw := range rootsExpr.Get(doc) {
		n, err := nodeFromDoc(raw)
		if err != nil {
			return nil, err
		}
		if err := t.AddRoot(n); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func nodeFromDoc(raw any) (*graph.Node, error) {
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("snapshot node is %T, want object", raw)
	}
	id, _ := doc["id"].(string)
	name, _ := doc["name"].(string)
	kind, _ := doc["kind"].(string)
	dataType, _ := doc["data_type"].(int64)
	dims, _ := doc["array_dims"].(string)

	n, err := restore(id, name, kind, dataType, dims)
	if err != nil {
		return nil, err
	}
	if props, ok := doc["props"].(map[string]any); ok {
		if err := decodeProps(n, props); err != nil {
			return nil, err
		}
	}
	children, _ := doc["children"].([]any)
	for _, c := range children {
		child, err := nodeFromDoc(c)
		if err != nil {
			return nil, err
		}
		if err := n.Add(child); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// LoadJSONFile loads a snapshot file. A missing file loads as an empty tree.
func LoadJSONFile(path string) (*graph.Tree, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return graph.NewTree(), nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return LoadJSON(f)
}

// SaveJSONFile writes a snapshot to path, replacing it atomically.
func SaveJSONFile(path string, t *graph.Tree) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return DumpJSON(w, t)
	})
}

func writeFileAtomic(path string, fn func(io.Writer) error) error {
	return workspace.Open(filepath.Dir(path)).WriteAtomic(filepath.Base(path), fn)
}
