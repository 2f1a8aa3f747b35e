package linter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/agentic-research/tagsync/api"
	"github.com/agentic-research/tagsync/internal/datatype"
	"github.com/agentic-research/tagsync/internal/ingest"
	"github.com/agentic-research/tagsync/internal/tabular"
)

type Diagnostic struct {
	Line    int
	Message string
	Err     error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// Lint checks a tag file without touching any tree. Every row is mapped as an
// import would map it; in addition, paths must start at rootName (when
// non-empty) and end with the row's browse name, and no path may repeat.
// The error is set only when the file cannot be read or its header is
// unusable.
func Lint(ctx context.Context, r io.Reader, resolver *datatype.Resolver, rootName string) ([]Diagnostic, error) {
	reader, err := tabular.NewReader(r)
	if err != nil {
		return nil, err
	}
	header := reader.Header()
	if err := ingest.CheckHeader(header); err != nil {
		return nil, err
	}

	mapper := ingest.NewMapper(resolver)
	seen := make(map[string]int)
	var diags []Diagnostic
	report := func(line int, err error, format string, args ...any) {
		diags = append(diags, Diagnostic{Line: line, Message: fmt.Sprintf(format, args...), Err: err})
	}

	for {
		if err := ctx.Err(); err != nil {
			return diags, err
		}
		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		line := reader.Line()
		if err != nil {
			return diags, fmt.Errorf("read csv: %w", err)
		}

		if len(row) != len(header) {
			shape := &ingest.RowShapeError{Line: line, Want: len(header), Got: len(row)}
			report(line, shape, "expected %d cells, got %d", shape.Want, shape.Got)
			continue
		}

		mapped, err := mapper.MapRow(row, header)
		if err != nil {
			report(line, err, "%v", err)
			continue
		}

		name := mapped.Node.BrowseName()
		segments := strings.Split(strings.Trim(mapped.Path, api.PathSeparator), api.PathSeparator)
		if rootName != "" && segments[0] != rootName {
			report(line, nil, "browse path %q does not start at %q", mapped.Path, rootName)
		}
		if segments[len(segments)-1] != name {
			report(line, nil, "browse path %q does not end with browse name %q", mapped.Path, name)
		}
		key := strings.Join(segments, api.PathSeparator)
		if prev, dup := seen[key]; dup {
			report(line, nil, "%s duplicates line %d", key, prev)
			continue
		}
		seen[key] = line
	}
	return diags, nil
}
