package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Recreate the tag file from the subtree at the starting node",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		sum, err := s.runner.Export(cmd.Context())
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", sum, s.runner.CSVPath())
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Create or update tags from the tag file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		sum, err := s.runner.Import(cmd.Context())
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, sum)
		if n := sum.Failed(); n > 0 {
			_, _ = fmt.Fprintf(out, "%s of %s rows failed\n",
				humanize.Comma(int64(n)), humanize.Comma(int64(sum.Rows)))
			for _, f := range sum.Failures {
				_, _ = fmt.Fprintf(out, "  %v\n", f)
			}
		}
		return nil
	},
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Check the tag file without touching the tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		diags, err := s.runner.Lint(cmd.Context())
		if err != nil {
			return fmt.Errorf("lint: %w", err)
		}
		for _, d := range diags {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), d)
		}
		if len(diags) > 0 {
			return fmt.Errorf("%s problem(s) in %s", humanize.Comma(int64(len(diags))), s.runner.CSVPath())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd, lintCmd)
}
