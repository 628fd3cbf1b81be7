// Package cli implements the kawaiicounter command-line interface.
//
// # Commands
//
//   - serve: run the HTTP badge server
//   - render: draw a badge offline from flags
//   - counters: list, show and create counters in the configured store
//   - cache: inspect and clear the file render cache
//   - completion: generate shell completion scripts
//
// Every command reads the same layered configuration as the server (see
// internal/config); --config points at an optional TOML file.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kawaiicounter/internal/config"
	"github.com/matzehuels/kawaiicounter/pkg/buildinfo"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and completion scripts.
const appName = "kawaiicounter"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
}

// New creates a new CLI instance logging to w. Command output goes to the
// cobra command's stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. Debug sticks: a configured log.level
// never lowers verbosity requested on the command line.
func (c *CLI) SetLogLevel(level log.Level) {
	c.verbose = level <= log.DebugLevel
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Kawaii visit-counter badges",
		Long:         `kawaiicounter serves tiny 88x31 visit-counter badges with pastel colours, custom borders and uploaded backgrounds.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a TOML config file")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.countersCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the layered configuration and applies its log level.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if !c.verbose {
		level, _ := log.ParseLevel(cfg.Log.Level)
		c.Logger.SetLevel(level)
	}
	c.Logger.Debug("config loaded", "path", c.configPath, "store", cfg.Store.Backend, "cache", cfg.Cache.Backend)
	return cfg, nil
}
