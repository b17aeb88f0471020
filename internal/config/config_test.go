package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestVaultPath(t *testing.T) {
	t.Setenv("VAULTGRAPH_VAULT", "")
	if got := VaultPath(); got != DefaultVaultPath {
		t.Errorf("VaultPath() = %q, want %q", got, DefaultVaultPath)
	}

	t.Setenv("VAULTGRAPH_VAULT", "/tmp/notes")
	if got := VaultPath(); got != "/tmp/notes" {
		t.Errorf("VaultPath() = %q, want /tmp/notes", got)
	}
}

func TestDefault(t *testing.T) {
	t.Setenv("VAULTGRAPH_VAULT", "")
	cfg := Default()

	if !cfg.Graph.MergeEdges || !cfg.Graph.ExpandInitial || !cfg.Graph.AutoZoom {
		t.Errorf("unexpected graph defaults: %+v", cfg.Graph)
	}
	if cfg.Graph.Layout != "force" || cfg.Graph.Rename != RenameSignal || cfg.Index.Backlinks != BacklinksScan {
		t.Errorf("unexpected strategy defaults: %+v / %+v", cfg.Graph, cfg.Index)
	}
	if cfg.Graph.HoverDelay != 400*time.Millisecond || cfg.Graph.LayoutDebounce != 150*time.Millisecond {
		t.Errorf("unexpected timing defaults: %+v", cfg.Graph)
	}
	if cfg.Vault.Path != DefaultVaultPath {
		t.Errorf("vault path = %q", cfg.Vault.Path)
	}
	if warnings := cfg.Validate(); len(warnings) != 0 {
		t.Errorf("defaults should validate cleanly, got %v", warnings)
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "vaultgraph.yaml")
	content := `
vault:
  path: /data/vault
graph:
  merge_edges: false
  layout: grid
  hover_delay: 250ms
  filter: "tag:project -class:dangling"
  style_groups:
    - filter: "tag:person"
      class: people
index:
  backlinks: sqlite
log:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Vault.Path != "/data/vault" {
		t.Errorf("vault path = %q", cfg.Vault.Path)
	}
	if cfg.Graph.MergeEdges {
		t.Error("merge_edges should be false")
	}
	if cfg.Graph.Layout != "grid" || cfg.Graph.HoverDelay != 250*time.Millisecond {
		t.Errorf("unexpected graph config: %+v", cfg.Graph)
	}
	if cfg.Graph.Filter != "tag:project -class:dangling" {
		t.Errorf("filter = %q", cfg.Graph.Filter)
	}
	if len(cfg.Graph.StyleGroups) != 1 || cfg.Graph.StyleGroups[0].Class != "people" {
		t.Errorf("style groups = %+v", cfg.Graph.StyleGroups)
	}
	if cfg.Index.Backlinks != BacklinksSQLite || cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected index/log config: %+v / %+v", cfg.Index, cfg.Log)
	}
	// unset keys keep their defaults
	if cfg.Graph.Rename != RenameSignal || !cfg.Graph.AutoZoom {
		t.Errorf("defaults lost: %+v", cfg.Graph)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("VAULTGRAPH_GRAPH_LAYOUT", "circle")
	t.Setenv("VAULTGRAPH_GRAPH_MERGE_EDGES", "false")
	t.Setenv("VAULTGRAPH_INDEX_BACKLINKS", "sqlite")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Graph.Layout != "circle" || cfg.Graph.MergeEdges || cfg.Index.Backlinks != BacklinksSQLite {
		t.Errorf("env overrides not applied: %+v / %+v", cfg.Graph, cfg.Index)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		warning string
		check   func(*Config) bool
	}{
		{
			name:    "unknown layout",
			mutate:  func(c *Config) { c.Graph.Layout = "spiral" },
			warning: "graph.layout",
			check:   func(c *Config) bool { return c.Graph.Layout == "force" },
		},
		{
			name:    "unknown backlinks",
			mutate:  func(c *Config) { c.Index.Backlinks = "bolt" },
			warning: "index.backlinks",
			check:   func(c *Config) bool { return c.Index.Backlinks == BacklinksScan },
		},
		{
			name:    "case folded",
			mutate:  func(c *Config) { c.Graph.Rename = "BACKOFF" },
			warning: "",
			check:   func(c *Config) bool { return c.Graph.Rename == RenameBackoff },
		},
		{
			name:    "negative concurrency",
			mutate:  func(c *Config) { c.Graph.Concurrency = -2 },
			warning: "concurrency",
			check:   func(c *Config) bool { return c.Graph.Concurrency == 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			warnings := cfg.Validate()

			found := false
			for _, w := range warnings {
				if tt.warning != "" && strings.Contains(w, tt.warning) {
					found = true
				}
			}
			if tt.warning != "" && !found {
				t.Errorf("expected warning about %s, got %v", tt.warning, warnings)
			}
			if tt.warning == "" && len(warnings) != 0 {
				t.Errorf("expected no warnings, got %v", warnings)
			}
			if !tt.check(cfg) {
				t.Errorf("config not normalised: %+v", cfg)
			}
		})
	}
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"key":"value"`) {
		t.Errorf("unexpected json output: %s", out)
	}
}
