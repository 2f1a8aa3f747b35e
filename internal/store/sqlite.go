package store

import (
	"database/sql"
	"fmt"

	"github.com/agentic-research/tagsync/internal/datatype"
	"github.com/agentic-research/tagsync/internal/driver"
	"github.com/agentic-research/tagsync/internal/graph"
	"github.com/google/uuid"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id TEXT PRIMARY KEY,
	parent_id TEXT,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	kind TEXT NOT NULL,
	data_type INTEGER NOT NULL DEFAULT 0,
	array_dims TEXT NOT NULL DEFAULT '',
	record JSON
);
CREATE INDEX IF NOT EXISTS idx_parent_name ON nodes(parent_id, name);
`

// SaveSQLite replaces the nodes table of the database at path with t.
// Parents are written before their children.
func SaveSQLite(path string, t *graph.Tree) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }() // no-op after commit

	if _, err := tx.Exec(`DELETE FROM nodes`); err != nil {
		return fmt.Errorf("clear nodes: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO nodes (id, parent_id, position, name, kind, data_type, array_dims, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	var insert func(n *graph.Node, parentID *string, pos int) error
	insert = func(n *graph.Node, parentID *string, pos int) error {
		var record *string
		if props := encodeProps(n); props != nil {
			s := oj.JSON(props, &ojg.Options{Sort: true})
			record = &s
		}
		_, err := stmt.Exec(
			n.ID().String(),
			parentID,
			pos,
			n.BrowseName(),
			driver.FullName(n.Kind()),
			int64(n.DataType()),
			formatDims(n.ArrayDimensions()),
			record,
		)
		if err != nil {
			return fmt.Errorf("insert %s: %w", n.BrowseName(), err)
		}
		id := n.ID().String()
		for i, c := range n.Children() {
			if err := insert(c, &id, i); err != nil {
				return err
			}
		}
		return nil
	}
	for i, r := range t.Roots() {
		if err := insert(r, nil, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadSQLite reads a tree written by SaveSQLite. A database without a nodes
// table loads as an empty tree.
func LoadSQLite(path string) (*graph.Tree, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	rows, err := db.Query(`
		SELECT id, parent_id, name, kind, data_type, array_dims, record
		FROM nodes ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	t := graph.NewTree()
	for rows.Next() {
		var (
			id, name, kind, dims string
			parentID, record     sql.NullString
			dataType             int64
		)
		if err := rows.Scan(&id, &parentID, &name, &kind, &dataType, &dims, &record); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}

		n, err := restore(id, name, kind, dataType, dims)
		if err != nil {
			return nil, err
		}
		if record.Valid && record.String != "" {
			parsed, err := oj.ParseString(record.String)
			if err != nil {
				return nil, fmt.Errorf("parse record of %s: %w", name, err)
			}
			props, ok := parsed.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("record of %s is not an object", name)
			}
			if err := decodeProps(n, props); err != nil {
				return nil, err
			}
		}

		if !parentID.Valid {
			if err := t.AddRoot(n); err != nil {
				return nil, err
			}
			continue
		}
		pid, err := uuid.Parse(parentID.String)
		if err != nil {
			return nil, fmt.Errorf("parent id of %s: %w", name, err)
		}
		parent, ok := t.Lookup(pid)
		if !ok {
			return nil, fmt.Errorf("%w: parent %s of %s", graph.ErrNotFound, pid, name)
		}
		if err := parent.Add(n); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	return t, nil
}

func restore(id, name, kindName string, dataType int64, dims string) (*graph.Node, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("node id %q: %w", id, err)
	}
	kind, err := driver.KindByName(kindName)
	if err != nil {
		return nil, err
	}
	d, err := parseDims(dims)
	if err != nil {
		return nil, err
	}
	if err := graph.CheckArrayDimensions(d...); err != nil {
		return nil, fmt.Errorf("node %s: %w", name, err)
	}
	n := graph.Restore(uid, kind, name)
	if dataType != 0 {
		n.SetDataType(datatype.ID(dataType))
	}
	n.SetArrayDimensions(d...)
	return n, nil
}
