package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lightrig/rigsnap/pkg/assembly"
	"github.com/lightrig/rigsnap/pkg/buildinfo"
	"github.com/lightrig/rigsnap/pkg/cache"
	"github.com/lightrig/rigsnap/pkg/catalog"
	"github.com/lightrig/rigsnap/pkg/fixture"
	"github.com/lightrig/rigsnap/pkg/observability"
	"github.com/lightrig/rigsnap/pkg/registry"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "rigsnap"

	// redisKeyPrefix scopes solve keys in a shared Redis instance.
	redisKeyPrefix = "rigsnap:"
)

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

	configPath  string
	catalogPath string
	noCache     bool
	cfg         Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level. At debug level the engine's
// assembly and cache hooks are routed to the logger as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.LogHooks{Logger: c.Logger}
		observability.SetAssemblyHooks(hooks)
		observability.SetCacheHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Rigsnap snaps lighting fixtures together",
		Long:         `Rigsnap resolves where lighting components go when they snap onto each other: which snap points are compatible, where the new part lands, and how free-standing parts are kept inside the room.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default ~/.config/rigsnap/config.toml)")
	flags.StringVar(&c.catalogPath, "catalog", "", "catalogue file (default: built-in catalogue)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the solve cache")

	// Register all subcommands
	root.AddCommand(c.compatCommand())
	root.AddCommand(c.candidatesCommand())
	root.AddCommand(c.solveCommand())
	root.AddCommand(c.constrainCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.sceneCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Engine Factories
// =============================================================================

// catalog returns the catalogue named by --catalog, the config file, or the
// built-in default, in that order.
func (c *CLI) catalog() (*catalog.Catalog, error) {
	path := c.catalogPath
	if path == "" {
		path = c.cfg.Catalog
	}
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	for _, w := range cat.Validate() {
		c.Logger.Warn("catalogue", "warning", w.String())
	}
	return cat, nil
}

// openCache opens the configured solve cache and the keyer that goes with it.
// Backend failures degrade to no caching with a warning.
func (c *CLI) openCache(ctx context.Context) (cache.Cache, cache.Keyer) {
	keyer := cache.NewDefaultKeyer()
	if c.noCache {
		return cache.NewNullCache(), keyer
	}

	switch c.cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), keyer
	case "redis":
		rc, err := cache.NewRedisCache(ctx, c.cfg.Cache.RedisURL)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, continuing without cache", "err", err)
			return cache.NewNullCache(), keyer
		}
		return rc, cache.NewScopedKeyer(keyer, redisKeyPrefix)
	}

	fc, err := newFileCache()
	if err != nil {
		c.Logger.Debug("file cache unavailable", "err", err)
		return cache.NewNullCache(), keyer
	}
	return fc, keyer
}

// newAssembler builds an assembler over reg (nil for a fresh registry). The
// returned close function releases the cache.
func (c *CLI) newAssembler(ctx context.Context, room fixture.Room, cat *catalog.Catalog, reg *registry.Registry) (*assembly.Assembler, func()) {
	store, keyer := c.openCache(ctx)
	a := assembly.New(assembly.Options{
		Room:     room,
		Catalog:  cat,
		Registry: reg,
		Cache:    store,
		Keyer:    keyer,
		CacheTTL: c.cfg.Cache.TTL,
		Logger:   c.Logger,
	})
	return a, func() { _ = store.Close() }
}

func newFileCache() (*cache.FileCache, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/rigsnap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/rigsnap/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
