// Package cli implements the flexdock command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flexdock/internal/config"
	"github.com/matzehuels/flexdock/pkg/buildinfo"
	"github.com/matzehuels/flexdock/pkg/cache"
	"github.com/matzehuels/flexdock/pkg/layout"
	"github.com/matzehuels/flexdock/pkg/stash"
	"github.com/matzehuels/flexdock/pkg/template"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "flexdock"

	// defaultViewportHeight is used where a command only asks for widths.
	defaultViewportHeight = 800

	// renderCacheMaxAge bounds how long rendered SVG is kept.
	renderCacheMaxAge = 30 * 24 * time.Hour
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

	configPath string
	cfg        config.Config
	out        io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output (layouts, tables, DOT) from stdout.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Flexdock keeps docking layouts usable at any viewport width",
		Long: `Flexdock is an adaptive docking layout engine. It measures layouts of rows,
panel groups and tabs, folds them into fewer panels or stacks them as the
viewport narrows, and restores the wider layout, edits included, when the
viewport grows back.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: user config dir)")

	// Register all subcommands
	root.AddCommand(c.analyseCommand())
	root.AddCommand(c.consolidateCommand())
	root.AddCommand(c.stackCommand())
	root.AddCommand(c.migrateCommand())
	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.templateCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerFlagCompletions(root)

	return root
}

// loadConfig reads the config file. A broken default file is reported and
// replaced by the defaults; an explicit --config must load.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		if c.configPath != "" {
			return err
		}
		c.Logger.Warn("using default config", "err", err)
	}
	c.cfg = cfg
	return nil
}

// =============================================================================
// Render Cache
// =============================================================================

// newCache returns the SVG render cache, or a null cache when caching is
// disabled or the cache directory is unavailable.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir, renderCacheMaxAge)
	if err != nil {
		c.Logger.Warn("render cache disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// cacheDir returns the cache directory using XDG standard (~/.cache/flexdock/).
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

// =============================================================================
// Layout Files
// =============================================================================

// readLayout loads a layout or template file in any supported format.
func readLayout(path string) (*layout.Tree, error) {
	t, err := template.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// writeLayout writes t to path in the format its extension names, or as
// JSON to the CLI output when path is empty.
func (c *CLI) writeLayout(t *layout.Tree, path string) error {
	if path == "" {
		return template.Encode(c.out, t, template.FormatJSON)
	}
	format, err := template.FormatOf(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := template.Encode(f, t, format); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// templateTree returns the template named by path, the configured
// template, or the built-in default, in that order.
func (c *CLI) templateTree(path string) (*layout.Tree, error) {
	if path == "" {
		path = c.cfg.Session.Template
	}
	if path == "" {
		return template.Default(), nil
	}
	return readLayout(path)
}

// direction resolves a --direction flag against the configured default.
func (c *CLI) direction(flag string) (stash.Direction, error) {
	if flag == "" {
		flag = c.cfg.Session.Direction
	}
	return stash.ParseDirection(flag)
}

// parseWidths parses a comma-separated list of viewport widths.
func parseWidths(s string) ([]int, error) {
	var widths []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		w, err := strconv.Atoi(part)
		if err != nil || w <= 0 {
			return nil, fmt.Errorf("invalid width %q", part)
		}
		widths = append(widths, w)
	}
	if len(widths) == 0 {
		return nil, fmt.Errorf("no widths given")
	}
	return widths, nil
}
