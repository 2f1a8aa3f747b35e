package api

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the operator-facing configuration, read from an HCL file.
//
//	project_dir   = "."
//	tree          = "tree.db"
//	starting_node = "Model/Tags"
//	csv_file      = "tags.csv"
//	make_folder_instead_struct = false
//	encoding      = "utf-16"
//	log {
//	  level = "info"
//	  file  = "tagsync.log"
//	}
type Config struct {
	// ProjectDir anchors every relative path below.
	ProjectDir string `hcl:"project_dir,optional"`
	// Tree is the persisted node tree: .db (SQLite) or .json (snapshot).
	Tree string `hcl:"tree,optional"`
	// StartingNode is the browse path of the node export walks from and
	// import resolves BrowsePath against.
	StartingNode string `hcl:"starting_node,optional"`
	CSVFile      string `hcl:"csv_file,optional"`
	// MakeFolderInsteadStruct makes import create plain folders for missing
	// tag ancestors instead of tag structures.
	MakeFolderInsteadStruct bool   `hcl:"make_folder_instead_struct,optional"`
	Encoding                string `hcl:"encoding,optional"`
	// TypeAliases is an optional YAML file extending the data type name table.
	TypeAliases string `hcl:"type_aliases,optional"`

	Log *LogConfig `hcl:"log,block"`
}

type LogConfig struct {
	Level      string `hcl:"level,optional"`
	File       string `hcl:"file,optional"`
	MaxSizeMB  int    `hcl:"max_size_mb,optional"`
	MaxBackups int    `hcl:"max_backups,optional"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load decodes an HCL configuration file and fills in defaults. A relative
// project_dir is taken relative to the file's directory.
func Load(path string) (*Config, error) {
	var c Config
	if err := hclsimple.DecodeFile(path, nil, &c); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if c.ProjectDir == "" {
		c.ProjectDir = filepath.Dir(path)
	} else if !filepath.IsAbs(c.ProjectDir) {
		c.ProjectDir = filepath.Join(filepath.Dir(path), c.ProjectDir)
	}
	c.applyDefaults()
	return &c, nil
}

// LoadOrDefault loads path if it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	if c.ProjectDir == "" {
		c.ProjectDir = "."
	}
	if c.Tree == "" {
		c.Tree = DefaultTreeFile
	}
	if c.StartingNode == "" {
		c.StartingNode = DefaultStartingNode
	}
	if c.CSVFile == "" {
		c.CSVFile = DefaultCSVFile
	}
	if c.Encoding == "" {
		c.Encoding = "utf-16"
	}
	if c.Log == nil {
		c.Log = &LogConfig{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
}

// Validate rejects configurations no run could use.
func (c *Config) Validate() error {
	if strings.Trim(c.StartingNode, PathSeparator+" ") == "" {
		return errors.New("starting_node must not be empty")
	}
	switch strings.ToLower(c.Encoding) {
	case "utf-16", "utf16", "unicode", "utf-8", "utf8":
	default:
		return fmt.Errorf("unknown encoding %q", c.Encoding)
	}
	switch strings.ToLower(filepath.Ext(c.Tree)) {
	case ".db", ".sqlite", ".json":
	default:
		return fmt.Errorf("tree %q: want a .db or .json file", c.Tree)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// Path resolves name against the project directory.
func (c *Config) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.ProjectDir, name)
}
