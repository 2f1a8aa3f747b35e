// Package runner executes one export, import or lint invocation against a
// configured project: it takes the project lock, loads the tree, runs the
// engine and persists the result.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/agentic-research/tagsync/api"
	"github.com/agentic-research/tagsync/internal/control"
	"github.com/agentic-research/tagsync/internal/datatype"
	"github.com/agentic-research/tagsync/internal/graph"
	"github.com/agentic-research/tagsync/internal/ingest"
	"github.com/agentic-research/tagsync/internal/linter"
	"github.com/agentic-research/tagsync/internal/store"
	"github.com/agentic-research/tagsync/internal/tabular"
	"github.com/agentic-research/tagsync/internal/workspace"
	"github.com/agentic-research/tagsync/internal/writeback"
)

// Runner binds a configuration to the engines.
type Runner struct {
	cfg      *api.Config
	enc      tabular.Encoding
	resolver *datatype.Resolver
	logger   *slog.Logger
}

// New validates cfg and prepares the type resolver, including any alias file.
func New(cfg *api.Config, logger *slog.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	enc, err := tabular.ParseEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	resolver := datatype.NewResolver(nil)
	if cfg.TypeAliases != "" {
		f, err := os.Open(cfg.Path(cfg.TypeAliases))
		if err != nil {
			return nil, fmt.Errorf("open type aliases: %w", err)
		}
		aliases, err := datatype.LoadAliases(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.TypeAliases, err)
		}
		resolver.AddAliases(aliases)
	}

	return &Runner{
		cfg:      cfg,
		enc:      enc,
		resolver: resolver,
		logger:   logger,
	}, nil
}

func (r *Runner) Config() *api.Config { return r.cfg }

// CSVPath is the host path of the tag file.
func (r *Runner) CSVPath() string { return r.cfg.Path(r.cfg.CSVFile) }

// csvFile returns the workspace holding the tag file and its name there.
// Absolute paths are not rebased onto the project directory.
func (r *Runner) csvFile() (*workspace.Workspace, string) {
	if filepath.IsAbs(r.cfg.CSVFile) {
		return workspace.Open(filepath.Dir(r.cfg.CSVFile)), filepath.Base(r.cfg.CSVFile)
	}
	return workspace.Open(r.cfg.ProjectDir), filepath.ToSlash(r.cfg.CSVFile)
}

func (r *Runner) lock() (*control.Lock, error) {
	return control.TryLock(r.cfg.Path(control.FileName))
}

// Export recreates the tag file from the subtree at the starting node.
func (r *Runner) Export(ctx context.Context) (*writeback.Summary, error) {
	l, err := r.lock()
	if err != nil {
		return nil, err
	}
	defer func() { _ = l.Release() }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 1. Load tree
	tree, err := store.Load(r.cfg.Path(r.cfg.Tree))
	if err != nil {
		return nil, fmt.Errorf("load tree: %w", err)
	}

	// 2. Resolve starting node; a missing one is reported as no tag found
	root, err := tree.Find(r.cfg.StartingNode)
	if errors.Is(err, graph.ErrNotFound) {
		r.logger.Warn("starting node not found", slog.String("starting_node", r.cfg.StartingNode))
		root = nil
	} else if err != nil {
		return nil, err
	}

	// 3. Write the file
	exporter := writeback.NewExporter(r.resolver.Catalog(), r.logger)
	var sum *writeback.Summary
	ws, name := r.csvFile()
	err = ws.WriteAtomic(name, func(w io.Writer) error {
		var err error
		sum, err = exporter.WriteCSV(w, r.enc, root)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// Import applies the tag file to the tree and saves the tree. The tree is
// saved even when rows failed; it is not saved on a batch-fatal error.
func (r *Runner) Import(ctx context.Context) (*ingest.Summary, error) {
	l, err := r.lock()
	if err != nil {
		return nil, err
	}
	defer func() { _ = l.Release() }()

	// 1. Load tree
	treePath := r.cfg.Path(r.cfg.Tree)
	tree, err := store.Load(treePath)
	if err != nil {
		return nil, fmt.Errorf("load tree: %w", err)
	}

	// 2. Resolve starting node; rows fail individually if it is missing
	root, err := tree.Find(r.cfg.StartingNode)
	if errors.Is(err, graph.ErrNotFound) {
		r.logger.Warn("starting node not found", slog.String("starting_node", r.cfg.StartingNode))
		root = nil
	} else if err != nil {
		return nil, err
	}

	// 3. Import
	ws, name := r.csvFile()
	f, err := ws.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open tag file: %w", err)
	}
	defer func() { _ = f.Close() }()

	engine := ingest.NewEngine(root, r.resolver, ingest.Options{
		MakeFolderInsteadStruct: r.cfg.MakeFolderInsteadStruct,
		Logger:                  r.logger,
	})
	sum, err := engine.Import(ctx, f)
	if err != nil {
		return sum, err
	}

	// 4. Persist
	if err := store.Save(treePath, tree); err != nil {
		return sum, fmt.Errorf("save tree: %w", err)
	}
	r.logger.Debug("tree saved", slog.String("tree", treePath), slog.Uint64("generation", l.Bump()))
	return sum, nil
}

// Lint validates the tag file without loading the tree.
func (r *Runner) Lint(ctx context.Context) ([]linter.Diagnostic, error) {
	ws, name := r.csvFile()
	f, err := ws.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open tag file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return linter.Lint(ctx, f, r.resolver, lastSegment(r.cfg.StartingNode))
}

func lastSegment(path string) string {
	segments := graph.SplitPath(path)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}
