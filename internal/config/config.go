// Package config loads the flexdock CLI configuration file.
//
// The file lives at $XDG_CONFIG_HOME/flexdock/config.toml (see
// os.UserConfigDir) and is created with the defaults on first use.
// Command-line flags override its values.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flexdock/pkg/render/boxes"
	"github.com/matzehuels/flexdock/pkg/session"
	"github.com/matzehuels/flexdock/pkg/stash"
)

const (
	appName  = "flexdock"
	fileName = "config.toml"

	DefaultAddr = ":8080"
)

// Config is the top-level TOML structure.
type Config struct {
	Session Session `toml:"session"`
	Server  Server  `toml:"server"`
	Render  Render  `toml:"render"`
}

// Session configures the reaction loop.
type Session struct {
	// Direction is "merge" or "stack".
	Direction string `toml:"direction"`
	// DebounceMS is the edit recompute delay in milliseconds.
	DebounceMS int `toml:"debounce_ms"`
	// Template is a template file path; empty uses the built-in template.
	Template string `toml:"template"`
}

// Server configures `flexdock serve`.
type Server struct {
	Addr string `toml:"addr"`
	// Watch reloads the template when its file changes.
	Watch bool `toml:"watch"`
}

// Render configures text rendering.
type Render struct {
	// Columns is the terminal width layouts are scaled to.
	Columns int `toml:"columns"`
}

const defaultTOML = `# flexdock configuration

[session]
# how a narrowing viewport frees width: "merge" or "stack"
direction = "merge"
debounce_ms = 100
# template = "~/layouts/task.toml"

[server]
addr = ":8080"
watch = false

[render]
columns = 80
`

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Session: Session{
			Direction:  string(stash.DirectionMerge),
			DebounceMS: int(session.DefaultDebounce / time.Millisecond),
		},
		Server: Server{Addr: DefaultAddr},
		Render: Render{Columns: boxes.DefaultColumns},
	}
}

// Debounce returns the debounce delay as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.Session.DebounceMS) * time.Millisecond
}

// Dir returns the flexdock config directory.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, appName), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads the config file at path, or at [Path] when path is empty.
// A missing default file is created with the defaults; a missing explicit
// path is an error. Invalid values are replaced by their defaults.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), err
		}
		path = p
		if err := ensure(path); err != nil {
			return Default(), err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func ensure(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultTOML), 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

// Parse decodes TOML config bytes and normalizes the result.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", fileName, err)
	}
	return normalize(cfg), nil
}

func normalize(c Config) Config {
	out := Default()
	if d, err := stash.ParseDirection(strings.TrimSpace(c.Session.Direction)); err == nil {
		out.Session.Direction = string(d)
	}
	if c.Session.DebounceMS > 0 && c.Session.DebounceMS <= 10000 {
		out.Session.DebounceMS = c.Session.DebounceMS
	}
	out.Session.Template = expandHome(strings.TrimSpace(c.Session.Template))
	if addr := strings.TrimSpace(c.Server.Addr); addr != "" {
		out.Server.Addr = addr
	}
	out.Server.Watch = c.Server.Watch
	if c.Render.Columns >= 20 && c.Render.Columns <= 1000 {
		out.Render.Columns = c.Render.Columns
	}
	return out
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// Save writes cfg to path, or to [Path] when path is empty.
func Save(cfg Config, path string) error {
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(normalize(cfg)); err != nil {
		return fmt.Errorf("encode %s: %w", fileName, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fileName, err)
	}
	return nil
}
