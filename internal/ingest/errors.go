package ingest

import (
	"errors"
	"fmt"

	"github.com/agentic-research/tagsync/internal/graph"
)

var (
	// ErrNoDestination means the row's owner could not be resolved, usually
	// because the configured starting node does not exist.
	ErrNoDestination = errors.New("no destination node")
	// ErrMissingColumn is batch-fatal: the header lacks a fixed column.
	ErrMissingColumn = errors.New("header is missing a required column")
	// ErrRowShape fails a row whose cell count differs from the header's.
	ErrRowShape = errors.New("row length does not match header")
	// ErrTypeMismatch fails a row whose kind or value type differs from the
	// existing tag at its path. The existing tag is left as it was.
	ErrTypeMismatch = errors.New("value type mismatch")
	// ErrEmptyName fails a row with a blank BrowseName.
	ErrEmptyName = errors.New("empty browse name")
)

// RowShapeError reports a row whose cell count differs from the header's.
type RowShapeError struct {
	Line int
	Want int
	Got  int
}

func (e *RowShapeError) Error() string {
	return fmt.Sprintf("line %d: expected %d cells, got %d", e.Line, e.Want, e.Got)
}

func (e *RowShapeError) Is(target error) bool { return target == ErrRowShape }

// TypeMismatchError reports an update refused because the existing tag's
// value type (or kind) differs from the imported one.
type TypeMismatchError struct {
	BrowseName   string
	ExistingKind graph.Kind
	ImportedKind graph.Kind
	Existing     graph.ValueType
	Imported     graph.ValueType
}

func (e *TypeMismatchError) Error() string {
	if e.ExistingKind != e.ImportedKind {
		return fmt.Sprintf("tag %s cannot be updated because it is a %s and the imported data says %s",
			e.BrowseName, e.ExistingKind, e.ImportedKind)
	}
	return fmt.Sprintf("tag %s cannot be updated because its type is %s and the imported data says %s",
		e.BrowseName, e.Existing, e.Imported)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// RowError is one failed row of an import.
type RowError struct {
	Line       int
	BrowseName string
	Err        error
}

func (e RowError) Error() string {
	if e.BrowseName == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.BrowseName, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }
