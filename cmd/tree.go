package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/agentic-research/tagsync/api"
	"github.com/agentic-research/tagsync/internal/graph"
	"github.com/agentic-research/tagsync/internal/store"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Inspect and seed the persisted node tree",
}

var treeInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the starting node path as folders in the tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path := cfg.Path(cfg.Tree)
		t, err := store.Load(path)
		if err != nil {
			return err
		}
		created, err := ensurePath(t, cfg.StartingNode)
		if err != nil {
			return err
		}
		if err := store.Save(path, t); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d folder(s) created for %s\n", path, created, cfg.StartingNode)
		return nil
	},
}

var treeDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Write the tree as a JSON snapshot to stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		t, err := store.Load(cfg.Path(cfg.Tree))
		if err != nil {
			return err
		}
		return store.DumpJSON(cmd.OutOrStdout(), t)
	},
}

var treeLoadCmd = &cobra.Command{
	Use:   "load [snapshot.json]",
	Short: "Replace the tree with a JSON snapshot (stdin if no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		var r io.Reader = cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			r = f
		}
		t, err := store.LoadJSON(r)
		if err != nil {
			return err
		}
		return store.Save(cfg.Path(cfg.Tree), t)
	},
}

var treeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count nodes by class",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		t, err := store.Load(cfg.Path(cfg.Tree))
		if err != nil {
			return err
		}
		st := t.Stats()
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "nodes:            %s\n", humanize.Comma(int64(st.Nodes)))
		_, _ = fmt.Fprintf(out, "tags:             %s\n", humanize.Comma(int64(st.Tags)))
		_, _ = fmt.Fprintf(out, "structures:       %s\n", humanize.Comma(int64(st.Structures)))
		_, _ = fmt.Fprintf(out, "structure arrays: %s\n", humanize.Comma(int64(st.StructureArrays)))
		_, _ = fmt.Fprintf(out, "folders:          %s\n", humanize.Comma(int64(st.Folders)))
		return nil
	},
}

func init() {
	treeCmd.AddCommand(treeInitCmd, treeDumpCmd, treeLoadCmd, treeStatsCmd)
	rootCmd.AddCommand(treeCmd)
}

// ensurePath creates the folders of a browse path that do not exist yet.
func ensurePath(t *graph.Tree, path string) (int, error) {
	segments := graph.SplitPath(path)
	if len(segments) == 0 {
		return 0, fmt.Errorf("empty path %q", path)
	}
	created := 0
	n := t.Root(segments[0])
	if n == nil {
		n = graph.NewFolder(segments[0])
		if err := t.AddRoot(n); err != nil {
			return created, err
		}
		created++
	}
	for _, s := range segments[1:] {
		child := n.Child(s)
		if child == nil {
			child = graph.NewFolder(s)
			if err := n.Add(child); err != nil {
				return created, fmt.Errorf("create %s%s%s: %w", n.BrowseName(), api.PathSeparator, s, err)
			}
			created++
		}
		n = child
	}
	return created, nil
}
