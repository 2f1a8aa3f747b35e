// Package writeback serializes a subtree of the node tree back to tag rows.
//
// Export is a pure function of the tree: it never mutates it, and the same
// tree always yields the same rows. Rows are ordered structure arrays first,
// then scalar structures, then tags, each group in depth-first child order.
package writeback

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/agentic-research/tagsync/internal/datatype"
	"github.com/agentic-research/tagsync/internal/graph"
	"github.com/agentic-research/tagsync/internal/tabular"
	"github.com/dustin/go-humanize"
)

// ErrNoTagFound means the subtree holds no tag to derive a header from.
var ErrNoTagFound = errors.New("no tag found under starting node")

// Summary counts what one export wrote.
type Summary struct {
	Tags            int
	Structures      int
	StructureArrays int
}

func (s *Summary) String() string {
	return fmt.Sprintf("Tags exported: %s Tag structures exported: %s Tag structure arrays exported: %s",
		humanize.Comma(int64(s.Tags)),
		humanize.Comma(int64(s.Structures)),
		humanize.Comma(int64(s.StructureArrays)))
}

// Export is a fully materialized export.
type Export struct {
	Header  []string
	Rows    [][]string
	Summary Summary
}

type Exporter struct {
	catalog *datatype.Catalog
	logger  *slog.Logger
}

func NewExporter(catalog *datatype.Catalog, logger *slog.Logger) *Exporter {
	if catalog == nil {
		catalog = datatype.DefaultCatalog()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{catalog: catalog, logger: logger}
}

// Export walks root and returns the header and rows.
func (x *Exporter) Export(root *graph.Node) (*Export, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: starting node is nil", ErrNoTagFound)
	}
	if t := root.Tree(); t != nil && !t.HasTagUnder(root) {
		return nil, ErrNoTagFound
	}
	first := FindTag(root)
	if first == nil {
		return nil, ErrNoTagFound
	}

	c := Collect(root)
	kinds := []graph.Kind{first.Kind()}
	for _, t := range c.Tags {
		kinds = append(kinds, t.Kind())
	}
	header := BuildHeader(kinds...)

	rows := make([][]string, 0, len(c.StructureArrays)+len(c.Structures)+len(c.Tags))
	for _, s := range c.StructureArrays {
		rows = append(rows, StructureRow(root, s, header))
	}
	for _, s := range c.Structures {
		rows = append(rows, StructureRow(root, s, header))
	}
	for _, t := range c.Tags {
		rows = append(rows, TagRow(root, t, header, x.catalog))
	}

	return &Export{
		Header: header,
		Rows:   rows,
		Summary: Summary{
			Tags:            len(c.Tags),
			Structures:      len(c.Structures),
			StructureArrays: len(c.StructureArrays),
		},
	}, nil
}

// WriteCSV exports root and writes it to w. Nothing is written when the
// export itself fails.
func (x *Exporter) WriteCSV(w io.Writer, enc tabular.Encoding, root *graph.Node) (*Summary, error) {
	exp, err := x.Export(root)
	if err != nil {
		return nil, err
	}

	tw := tabular.NewWriter(w, enc)
	if err := tw.Write(exp.Header); err != nil {
		_ = tw.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, row := range exp.Rows {
		if err := tw.Write(row); err != nil {
			_ = tw.Close()
			return nil, fmt.Errorf("write row: %w", err)
		}
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	x.logger.Info(exp.Summary.String(),
		slog.Int("tags", exp.Summary.Tags),
		slog.Int("structures", exp.Summary.Structures),
		slog.Int("structure_arrays", exp.Summary.StructureArrays))
	return &exp.Summary, nil
}
