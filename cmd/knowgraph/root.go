package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/config"
	"github.com/HendryAvila/knowgraph/internal/logging"
)

// globalFlags are shared by every subcommand and override the config file
// and environment when set.
type globalFlags struct {
	configPath      string
	memoryFile      string
	backend         string
	logLevel        string
	logFormat       string
	strictRelations bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := newBaseCmd(g)
	root.AddCommand(
		newServeCmd(g),
		newSyncCmd(g),
		newWatchCmd(g),
		newVersionCmd(),
	)
	return root
}

// newBaseCmd builds the root command and binds the global flags to g.
func newBaseCmd(g *globalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "knowgraph",
		Short: "Persistent knowledge graph memory over MCP",
		Long: `knowgraph stores entities, relations and observations in a durable
graph and exposes them as MCP tools. A read-only sync endpoint lets viewers
follow the graph as it changes.

Add to your MCP client config:

  {
    "mcpServers": {
      "memory": {
        "command": "knowgraph",
        "args": ["serve"]
      }
    }
  }`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "Path to config.yaml (default $KNOWGRAPH_HOME/config.yaml)")
	pf.StringVar(&g.memoryFile, "memory-file", "", "Record file for the file backend")
	pf.StringVar(&g.backend, "backend", "", "Storage backend: file, sqlite or s3")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&g.logFormat, "log-format", "", "Log format: console or json")
	pf.BoolVar(&g.strictRelations, "strict-relations", false, "Reject relations whose endpoints do not exist")
	return root
}

// load resolves the configuration for cmd: file, environment, then flags.
func (g *globalFlags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("memory-file") {
		cfg.MemoryFile = cfg.Resolve(g.memoryFile)
	}
	if flags.Changed("backend") {
		cfg.Backend = g.backend
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = g.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = g.logFormat
	}
	if flags.Changed("strict-relations") {
		cfg.StrictRelations = g.strictRelations
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// setup loads the configuration and builds the logger.
func (g *globalFlags) setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfg, err := g.load(cmd)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, logger, nil
}
