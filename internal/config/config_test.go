package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DataDir == "" || cfg.InboxDir == "" || cfg.ArchiveDir == "" {
		t.Error("Expected non-empty default directories")
	}
	if cfg.RulesFile != "" {
		t.Errorf("RulesFile = %q, want empty (embedded rules)", cfg.RulesFile)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DATA_DIR", "/tmp/ledgers")

	cfg := Load()
	if cfg.Port != "9999" {
		t.Errorf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.DataDir != "/tmp/ledgers" {
		t.Errorf("DataDir = %q, want /tmp/ledgers", cfg.DataDir)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{
			name:    "non-numeric port",
			mutate:  func(c *Config) { c.Port = "http" },
			wantErr: "invalid port",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Port = "70000" },
			wantErr: "invalid port",
		},
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.DataDir = "" },
			wantErr: "data directory",
		},
		{
			name:    "missing rules file",
			mutate:  func(c *Config) { c.RulesFile = filepath.Join(t.TempDir(), "nope.yaml") },
			wantErr: "rules file does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate failed: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfig_JournalPath(t *testing.T) {
	cfg := &Config{DataDir: "/var/data"}
	if got := cfg.JournalPath(); got != filepath.Join("/var/data", "runs.json") {
		t.Errorf("JournalPath = %q", got)
	}
}
