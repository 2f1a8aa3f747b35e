// Package ingest imports tag rows into the node tree.
//
// Each row is mapped to a detached node, its owner is resolved (creating
// missing ancestors), and the node is reconciled against the owner's existing
// children. Failures are isolated per row; only an unreadable stream or an
// unusable header aborts the batch.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/agentic-research/tagsync/api"
	"github.com/agentic-research/tagsync/internal/datatype"
	"github.com/agentic-research/tagsync/internal/graph"
	"github.com/agentic-research/tagsync/internal/tabular"
	"github.com/dustin/go-humanize"
)

// Options configure an import.
type Options struct {
	// MakeFolderInsteadStruct creates plain folders for missing tag
	// ancestors. Structure rows always get structure ancestors.
	MakeFolderInsteadStruct bool
	Logger                  *slog.Logger
}

// Engine drives one import into a subtree.
type Engine struct {
	root   *graph.Node
	mapper *Mapper
	opts   Options
	logger *slog.Logger
}

// NewEngine returns an engine that imports under root. A nil root is allowed:
// every row then fails with ErrNoDestination.
func NewEngine(root *graph.Node, resolver *datatype.Resolver, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		root:   root,
		mapper: NewMapper(resolver),
		opts:   opts,
		logger: logger,
	}
}

// Summary counts what one import did.
type Summary struct {
	Rows              int
	TagsCreated       int
	TagsUpdated       int
	StructuresCreated int
	Unchanged         int
	Failures          []RowError
}

func (s *Summary) Failed() int { return len(s.Failures) }

func (s *Summary) String() string {
	return fmt.Sprintf("Tags updated: %s Tags created: %s TagStructure created: %s",
		humanize.Comma(int64(s.TagsUpdated)),
		humanize.Comma(int64(s.TagsCreated)),
		humanize.Comma(int64(s.StructuresCreated)))
}

// Import reads r and applies every row to the tree. The returned error is
// set only for batch-fatal conditions; row failures are in Summary.Failures.
// Rows applied before a fatal error or cancellation stay applied.
func (e *Engine) Import(ctx context.Context, r io.Reader) (*Summary, error) {
	sum := &Summary{}

	reader, err := tabular.NewReader(r)
	if errors.Is(err, tabular.ErrEmpty) {
		e.logger.Warn("import source is empty")
		return sum, nil
	}
	if err != nil {
		return sum, err
	}
	header := reader.Header()
	if err := CheckHeader(header); err != nil {
		return sum, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("read csv: %w", err)
		}
		sum.Rows++
		e.importRow(sum, reader.Line(), row, header)
	}

	e.logger.Info(sum.String(),
		slog.Int("tags_updated", sum.TagsUpdated),
		slog.Int("tags_created", sum.TagsCreated),
		slog.Int("structures_created", sum.StructuresCreated),
		slog.Int("failed", sum.Failed()))
	return sum, nil
}

func (e *Engine) importRow(sum *Summary, line int, row []string, header tabular.Header) {
	name, _ := header.Cell(row, api.ColumnBrowseName)

	if len(row) != len(header) {
		e.fail(sum, line, name, &RowShapeError{Line: line, Want: len(header), Got: len(row)})
		return
	}

	mapped, err := e.mapper.MapRow(row, header)
	if err != nil {
		e.fail(sum, line, name, err)
		return
	}

	policy := PolicyStructure
	if mapped.Node.IsTag() && e.opts.MakeFolderInsteadStruct {
		policy = PolicyFolder
	}
	owner, created, err := ResolveOwner(e.root, mapped.Path, true, policy)
	sum.StructuresCreated += created
	if err != nil {
		e.fail(sum, line, name, err)
		return
	}

	outcome, err := Reconcile(owner, mapped.Node)
	if err != nil {
		e.fail(sum, line, name, err)
		return
	}
	switch outcome {
	case Created:
		if mapped.Node.IsStructure() {
			sum.StructuresCreated++
		} else {
			sum.TagsCreated++
		}
	case Updated:
		sum.TagsUpdated++
	case Unchanged:
		sum.Unchanged++
	}
	e.logger.Debug("row applied",
		slog.Int("line", line),
		slog.String("browse_name", name),
		slog.String("outcome", outcome.String()))
}

func (e *Engine) fail(sum *Summary, line int, name string, err error) {
	sum.Failures = append(sum.Failures, RowError{Line: line, BrowseName: name, Err: err})
	e.logger.Error("row failed",
		slog.Int("line", line),
		slog.String("browse_name", name),
		slog.Any("err", err))
}

// CheckHeader reports the fixed columns h lacks as ErrMissingColumn.
func CheckHeader(h tabular.Header) error {
	var missing []string
	for _, c := range api.FixedColumns {
		if !h.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}
