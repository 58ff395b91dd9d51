// Package cli implements the orgtower command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgtower/pkg/buildinfo"
	"github.com/matzehuels/orgtower/pkg/cache"
	"github.com/matzehuels/orgtower/pkg/config"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/httputil"
	"github.com/matzehuels/orgtower/pkg/pipeline"
	"github.com/matzehuels/orgtower/pkg/source"
	"github.com/matzehuels/orgtower/pkg/source/file"
	"github.com/matzehuels/orgtower/pkg/source/httpapi"
	"github.com/matzehuels/orgtower/pkg/source/mongo"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "orgtower"

	// stdinLocation reads the roster from standard input.
	stdinLocation = "-"
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

	// In is read when the roster location is "-".
	In io.Reader

	errOut     io.Writer
	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		In:     os.Stdin,
		errOut: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Orgtower builds and explores organisation charts",
		Long:         `Orgtower turns a flat HR roster into a reporting tree, lays it out as an org chart and renders it to SVG, PNG, PDF, JSON or DOT. It can also serve the chart over HTTP and explore it in the terminal.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: ./orgtower.toml or ~/.config/orgtower/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.captureCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	if noCache {
		return pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger), nil
	}
	store, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Kind != config.CacheRedis && cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

func newCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Kind {
	case config.CacheNull:
		return cache.NewNullCache(), nil
	case config.CacheMemory:
		return cache.NewMemoryCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.RedisURL, cfg.Prefix)
	default:
		dir, err := cacheDirFor(cfg)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// pipelineOptions seeds pipeline options from the config file.
func (c *CLI) pipelineOptions(cfg *config.Config) pipeline.Options {
	limits := cfg.Limits
	return pipeline.Options{
		Limits: &limits,
		Layout: cfg.Layout,
		Logger: c.Logger,
	}
}

// =============================================================================
// Source Factory
// =============================================================================

// openSource resolves a roster location: a file path, an http(s) URL of the
// HRIS API, a mongodb URI, or "-" for stdin. An empty location falls back to
// the config file. The returned close function releases connections.
func (c *CLI) openSource(ctx context.Context, cfg *config.Config, location string) (pipeline.RosterSource, func(), error) {
	noop := func() {}
	if location == "" {
		location = cfg.Source.Location
	}
	if location == stdinLocation {
		roster, err := hris.DecodeRoster(c.In)
		if err != nil {
			return nil, noop, err
		}
		return source.Static{Label: "stdin", Roster: roster}, noop, nil
	}

	kind, err := source.Kind(location)
	if err != nil {
		return nil, noop, errors.Wrap(errors.ErrCodeInvalidConfig, err, "no roster given: pass a location or set [source] location")
	}

	switch kind {
	case source.KindHTTP:
		snaps, err := snapshotStore(cfg.Source)
		if err != nil {
			c.Logger.Warn("outage snapshots disabled", "err", err)
		}
		src, err := httpapi.New(httpapi.Config{
			BaseURL:  location,
			Token:    cfg.Source.Token,
			Timeout:  cfg.Source.Timeout,
			MaxStale: cfg.Source.MaxStale,
			Logger:   c.Logger,
		}, snaps)
		if err != nil {
			return nil, noop, err
		}
		return src, noop, nil

	case source.KindMongo:
		src, err := mongo.Connect(ctx, mongo.Config{
			URI:       location,
			Database:  cfg.Source.Database,
			Employees: cfg.Source.Collection,
			Timeout:   cfg.Source.Timeout,
		})
		if err != nil {
			return nil, noop, err
		}
		return src, func() {
			if err := src.Close(context.Background()); err != nil {
				c.Logger.Warn("close mongo", "err", err)
			}
		}, nil

	default:
		return file.New(location,
			file.WithProjects(cfg.Source.Projects),
			file.WithLogger(c.Logger),
		), noop, nil
	}
}

func snapshotStore(cfg config.SourceConfig) (*httputil.Snapshots, error) {
	dir := cfg.SnapshotDir
	if dir == "" {
		base, err := cacheDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "snapshots")
	}
	return httputil.NewSnapshots(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/orgtower/).
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

// cacheDirFor honours an explicit [cache] dir.
func cacheDirFor(cfg config.CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return cacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
