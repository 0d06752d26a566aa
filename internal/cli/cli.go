package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scatter/pkg/buildinfo"
	"github.com/matzehuels/scatter/pkg/cache"
	"github.com/matzehuels/scatter/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "scatter"

	// envCache, envStore and envAddr override the matching settings.
	envCache = "SCATTER_CACHE"
	envStore = "SCATTER_STORE"
	envAddr  = "SCATTER_ADDR"
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

	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Scatter generates seeded procedural compositions",
		Long:          `Scatter generates reproducible compositions of rectangles, circles and stamps scattered over a canvas. Every SVG it writes carries its own state, so it can be edited and re-rendered later.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Out)

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.stampCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())
	registerFlagCompletions(root)

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Keys in a shared Redis
// are namespaced with the app name.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if _, ok := ch.(*cache.RedisCache); ok {
		keyer = cache.NewScopedKeyer(nil, appName+":")
	}
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

// newCache opens the cache named by SCATTER_CACHE or the settings file.
// A cache that cannot be opened degrades to no cache with a warning.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	ch, err := cache.Open(ctx, s.Server.Cache)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "cache", s.Server.Cache, "error", err)
		return cache.NewNullCache(), nil
	}
	return ch, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the directory of the default file cache.
func cacheDir() (string, error) {
	return cache.DefaultDir()
}

// configDir returns the settings directory ($XDG_CONFIG_HOME/scatter).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// outputPaths maps each format to a file path. A single format writes to
// output as given; several formats share output's base name with one
// extension each. An empty output derives the base from fallback.
func outputPaths(output, fallback string, formats []string) map[string]string {
	base := output
	if base == "" {
		base = strings.TrimSuffix(fallback, filepath.Ext(fallback))
	} else if ext := filepath.Ext(base); pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		base = strings.TrimSuffix(base, ext)
	}

	paths := make(map[string]string, len(formats))
	for _, f := range formats {
		if len(formats) == 1 && output != "" {
			paths[f] = output
			continue
		}
		p := base + pipeline.Extension(f)
		if f == pipeline.FormatPreview {
			p = base + ".preview.png"
		}
		paths[f] = p
	}
	return paths
}
