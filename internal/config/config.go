package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"vaultgraph/internal/domain"
)

const DefaultVaultPath = "~/Documents/vault"

// Back-link strategies
const (
	BacklinksScan   = "scan"
	BacklinksSQLite = "sqlite"
)

// Rename resolution strategies
const (
	RenameSignal  = "signal"
	RenameBackoff = "backoff"
)

// LayoutNone disables automatic layout
const LayoutNone = "none"

var (
	backlinkStrategies = []string{BacklinksScan, BacklinksSQLite}
	renameStrategies   = []string{RenameSignal, RenameBackoff}
	layoutNames        = []string{"force", "circle", "grid", LayoutNone}
	logLevels          = []string{"debug", "info", "warn", "error"}
	logFormats         = []string{"text", "json"}
)

// Config holds all application configuration
type Config struct {
	Vault VaultConfig `mapstructure:"vault"`
	Graph GraphConfig `mapstructure:"graph"`
	Index IndexConfig `mapstructure:"index"`
	Log   LogConfig   `mapstructure:"log"`
	TUI   TUIConfig   `mapstructure:"tui"`
}

type VaultConfig struct {
	Path          string        `mapstructure:"path"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	ObsidianName  string        `mapstructure:"obsidian_name"` // empty uses the directory name
}

// TUIConfig are the terminal UI settings
type TUIConfig struct {
	PreviewStyle string `mapstructure:"preview_style"` // glamour style: dark, light, notty, ...
}

// GraphConfig are the user-facing graph settings
type GraphConfig struct {
	MergeEdges     bool                `mapstructure:"merge_edges"`
	ExpandInitial  bool                `mapstructure:"expand_initial"`
	AutoZoom       bool                `mapstructure:"auto_zoom"`
	MetaKeyHover   bool                `mapstructure:"meta_key_hover"`
	Filter         string              `mapstructure:"filter"`
	StyleGroups    []domain.StyleGroup `mapstructure:"style_groups"`
	Layout         string              `mapstructure:"layout"`
	LayoutDebounce time.Duration       `mapstructure:"layout_debounce"`
	HoverDelay     time.Duration       `mapstructure:"hover_delay"`
	Rename         string              `mapstructure:"rename"`
	RenameTimeout  time.Duration       `mapstructure:"rename_timeout"`
	Concurrency    int                 `mapstructure:"concurrency"`
}

type IndexConfig struct {
	Backlinks string `mapstructure:"backlinks"`
	DBPath    string `mapstructure:"db_path"` // empty uses the XDG data dir
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// VaultPath returns the vault path from VAULTGRAPH_VAULT env var,
// falling back to DefaultVaultPath.
func VaultPath() string {
	if env := os.Getenv("VAULTGRAPH_VAULT"); env != "" {
		return env
	}
	return DefaultVaultPath
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("vault.path", VaultPath())
	v.SetDefault("vault.watch_debounce", 100*time.Millisecond)
	v.SetDefault("vault.obsidian_name", "")

	v.SetDefault("graph.merge_edges", true)
	v.SetDefault("graph.expand_initial", true)
	v.SetDefault("graph.auto_zoom", true)
	v.SetDefault("graph.meta_key_hover", false)
	v.SetDefault("graph.filter", "")
	v.SetDefault("graph.layout", "force")
	v.SetDefault("graph.layout_debounce", 150*time.Millisecond)
	v.SetDefault("graph.hover_delay", 400*time.Millisecond)
	v.SetDefault("graph.rename", RenameSignal)
	v.SetDefault("graph.rename_timeout", 2*time.Second)
	v.SetDefault("graph.concurrency", 8)

	v.SetDefault("index.backlinks", BacklinksScan)
	v.SetDefault("index.db_path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("tui.preview_style", "dark")
}

// Default returns the configuration used when no file or environment
// overrides are present
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("unmarshalling defaults: %v", err))
	}
	return &cfg
}

// Load reads configuration from file and environment. An empty path looks
// for vaultgraph.{yaml,toml,json} in the XDG config dir and the working
// directory; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("VAULTGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("vaultgraph")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Validate configuration and print warnings
	for _, warning := range cfg.Validate() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}
	return &cfg, nil
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "vaultgraph")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "vaultgraph")
}

// Validate checks configuration for issues and returns warnings. Unknown
// enumerated values are replaced by their defaults.
func (c *Config) Validate() []string {
	var warnings []string

	check := func(name string, value *string, allowed []string, fallback string) {
		if slices.Contains(allowed, strings.ToLower(*value)) {
			*value = strings.ToLower(*value)
			return
		}
		warnings = append(warnings, fmt.Sprintf("%s %q is not one of %s, using %q",
			name, *value, strings.Join(allowed, ", "), fallback))
		*value = fallback
	}
	check("graph.layout", &c.Graph.Layout, layoutNames, "force")
	check("graph.rename", &c.Graph.Rename, renameStrategies, RenameSignal)
	check("index.backlinks", &c.Index.Backlinks, backlinkStrategies, BacklinksScan)
	check("log.level", &c.Log.Level, logLevels, "info")
	check("log.format", &c.Log.Format, logFormats, "text")

	if c.Graph.Concurrency < 0 {
		warnings = append(warnings, fmt.Sprintf("graph.concurrency %d is negative", c.Graph.Concurrency))
		c.Graph.Concurrency = 0
	}
	for i, g := range c.Graph.StyleGroups {
		if strings.TrimSpace(g.Class) == "" {
			warnings = append(warnings, fmt.Sprintf("graph.style_groups[%d] has no class and is ignored", i))
		}
	}
	if c.Vault.Path == "" {
		warnings = append(warnings, "vault.path is empty, using "+DefaultVaultPath)
		c.Vault.Path = DefaultVaultPath
	}
	return warnings
}

// NewLogger builds the process logger described by the log settings
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
