package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

const serverVersion = "0.1.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose export, import and lint as MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		return server.ServeStdio(newMCPServer(s))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newMCPServer(s *session) *server.MCPServer {
	srv := server.NewMCPServer("tagsync", serverVersion, server.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool("export_csv",
		mcp.WithDescription("Recreate the tag file from the subtree at the configured starting node."),
	), exportTool(s))
	srv.AddTool(mcp.NewTool("import_csv",
		mcp.WithDescription("Create or update tags from the tag file and save the tree."),
	), importTool(s))
	srv.AddTool(mcp.NewTool("lint_csv",
		mcp.WithDescription("Check the tag file for problems without touching the tree."),
	), lintTool(s))
	return srv
}

// Engine failures are reported as tool errors so the calling runtime sees
// them as results rather than protocol faults.

func exportTool(s *session) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sum, err := s.runner.Export(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(sum.String()), nil
	}
}

func importTool(s *session) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sum, err := s.runner.Import(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var b strings.Builder
		b.WriteString(sum.String())
		for _, f := range sum.Failures {
			fmt.Fprintf(&b, "\n%v", f)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

func lintTool(s *session) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		diags, err := s.runner.Lint(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if len(diags) == 0 {
			return mcp.NewToolResultText("no problems found"), nil
		}
		lines := make([]string, len(diags))
		for i, d := range diags {
			lines[i] = d.String()
		}
		return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
	}
}
