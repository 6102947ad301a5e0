// Package cli implements the apiscout command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/apiscout/pkg/cache"
	"github.com/matzehuels/apiscout/pkg/config"
	"github.com/matzehuels/apiscout/pkg/discovery"
	"github.com/matzehuels/apiscout/pkg/httputil"
	"github.com/matzehuels/apiscout/pkg/integration"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "apiscout"

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

	configPath  string // --config
	mappingPath string // --mapping
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Component Factories
// =============================================================================

// loadConfig reads the tool config and applies command-line overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.mappingPath != "" {
		cfg.MappingPath = c.mappingPath
	}
	return cfg, nil
}

// newClient builds the shared HTTP client with the configured cache.
// The returned cleanup closes the cache.
func (c *CLI) newClient(ctx context.Context, cfg *config.Config) (*httputil.Client, func(), error) {
	cacheOpts, err := cfg.CacheOptions()
	if err != nil {
		return nil, nil, fmt.Errorf("cache dir: %w", err)
	}
	store, err := cache.Open(ctx, cacheOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}

	opts := cfg.ClientOptions()
	if cfg.Cache.Backend != cache.BackendNone {
		opts.Cache = store
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			c.Logger.Warn("close cache", "error", err)
		}
	}
	return httputil.NewClient(opts), cleanup, nil
}

// engineOptions holds per-command overrides for discovery.
type engineOptions struct {
	registries []string
	refresh    bool
}

// newEngine builds a discovery engine from the config.
func (c *CLI) newEngine(ctx context.Context, cfg *config.Config, eo engineOptions) (*discovery.Engine, func(), error) {
	client, cleanup, err := c.newClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	registries := cfg.Registries
	if len(eo.registries) > 0 {
		registries = eo.registries
	}
	engine := discovery.New(client, discovery.Options{
		Registries: registries,
		ResolveURL: cfg.ResolveURL,
		Refresh:    eo.refresh,
		Logger:     c.Logger,
	})
	return engine, cleanup, nil
}

// newIntegrator builds an integrator for the configured mapping file.
func (c *CLI) newIntegrator(cfg *config.Config) *integration.Integrator {
	return integration.New(cfg.MappingPath, integration.WithLogger(c.Logger))
}
