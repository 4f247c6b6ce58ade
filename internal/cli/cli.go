package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/xkcdify/pkg/buildinfo"
	"github.com/matzehuels/xkcdify/pkg/cache"
	"github.com/matzehuels/xkcdify/pkg/config"
	"github.com/matzehuels/xkcdify/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "xkcdify"

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

	// Persistent flags
	configPath string
	cacheSpec  string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "xkcdify makes SVG drawings look hand-drawn",
		Long: `xkcdify redraws the paths of an SVG document with a slight wobble, as if
sketched by hand, and can swap the fonts of its text for a handwriting font.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/xkcdify/config.toml)")
	root.PersistentFlags().StringVar(&c.cacheSpec, "cache", "", "cache backend: directory, file://, redis://, mongodb:// or none")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable caching")

	// Register all subcommands
	root.AddCommand(c.sketchCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.fontsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config and Runner Factory
// =============================================================================

// loadConfig reads --config, or the default config file if it exists.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath)
	}
	return config.LoadDefault()
}

// cacheBackend returns the cache spec to open: --no-cache, then --cache, then
// the config file, then the default cache directory.
func (c *CLI) cacheBackend(cfg *config.Config) string {
	switch {
	case c.noCache:
		return cache.BackendNone
	case c.cacheSpec != "":
		return c.cacheSpec
	case cfg != nil && cfg.Cache != "":
		return cfg.Cache
	}
	dir, err := config.DefaultCacheDir()
	if err != nil {
		return cache.BackendNone
	}
	return dir
}

// newRunner creates a pipeline runner for CLI use. Keys are scoped by prefix
// when it is not empty.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, prefix string) (*pipeline.Runner, error) {
	spec := c.cacheBackend(cfg)
	store, err := cache.Open(ctx, spec)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("cache", "backend", cache.Redact(spec))

	var keyer cache.Keyer
	if prefix != "" {
		keyer = cache.NewScopedKeyer(nil, prefix)
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}
