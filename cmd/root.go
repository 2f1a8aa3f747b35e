package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/agentic-research/tagsync/api"
	"github.com/agentic-research/tagsync/internal/logging"
	"github.com/agentic-research/tagsync/internal/runner"
	"github.com/spf13/cobra"
)

var (
	configPath string
	treePath   string
	startNode  string
	csvPath    string
	useFolders bool
	logLevel   string
)

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVarP(&configPath, "config", "c", api.DefaultConfigFile, "Path to HCL configuration")
	f.StringVar(&treePath, "tree", "", "Tree file (.db or .json), overrides config")
	f.StringVar(&startNode, "start", "", "Browse path of the starting node, overrides config")
	f.StringVar(&csvPath, "csv", "", "Tag file, overrides config")
	f.BoolVar(&useFolders, "folders", false, "Create folders instead of tag structures for missing tag ancestors")
	f.StringVar(&logLevel, "log-level", "", "debug|info|warn|error, overrides config")
}

var rootCmd = &cobra.Command{
	Use:   "tagsync",
	Short: "Synchronise communication driver tags with a CSV file",
	Long: `tagsync exports the tag subtree under a starting node to a
semicolon-separated CSV file and imports such files back, creating
missing tags and tag structures and updating existing ones.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file (if present) and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*api.Config, error) {
	var (
		cfg *api.Config
		err error
	)
	if cmd.Flags().Changed("config") {
		cfg, err = api.Load(configPath)
	} else {
		cfg, err = api.LoadOrDefault(configPath)
	}
	if err != nil {
		return nil, err
	}

	if treePath != "" {
		cfg.Tree = treePath
	}
	if startNode != "" {
		cfg.StartingNode = startNode
	}
	if csvPath != "" {
		cfg.CSVFile = csvPath
	}
	if cmd.Flags().Changed("folders") {
		cfg.MakeFolderInsteadStruct = useFolders
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, cfg.Validate()
}

// session is the per-invocation state shared by commands.
type session struct {
	cfg    *api.Config
	logger *slog.Logger
	runner *runner.Runner
	closer io.Closer
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logCfg := *cfg.Log
	if logCfg.File != "" {
		logCfg.File = cfg.Path(logCfg.File)
	}
	logger, closer, err := logging.New(&logCfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	r, err := runner.New(cfg, logger)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, runner: r, closer: closer}, nil
}

func (s *session) Close() error { return s.closer.Close() }
