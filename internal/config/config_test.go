package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Analysis.RSIPeriod != 14 {
		t.Errorf("rsi period = %d, want 14", cfg.Analysis.RSIPeriod)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("backend = %q, want sqlite", cfg.Store.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
analysis:
  rsi_period: 21
store:
  backend: none
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Analysis.RSIPeriod != 21 {
		t.Errorf("rsi period = %d, want 21", cfg.Analysis.RSIPeriod)
	}
	if cfg.Store.Backend != "none" {
		t.Errorf("backend = %q, want none", cfg.Store.Backend)
	}
	// Untouched fields still get defaults.
	if cfg.Analysis.MACDSlow != 26 {
		t.Errorf("macd slow = %d, want default 26", cfg.Analysis.MACDSlow)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("PORT", "7070")
	t.Setenv("STORE_BACKEND", "redis")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Store.Backend != "redis" {
		t.Errorf("backend = %q, want redis", cfg.Store.Backend)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"inverted rsi bands", func(c *Config) { c.Analysis.OversoldThreshold = 80 }, false},
		{"strong buy above oversold", func(c *Config) { c.Analysis.StrongBuyThreshold = 35 }, false},
		{"strong sell below overbought", func(c *Config) { c.Analysis.StrongSellThreshold = 65 }, false},
		{"fast span above slow", func(c *Config) { c.Analysis.MACDFast = 30 }, false},
		{"unknown backend", func(c *Config) { c.Store.Backend = "postgres" }, false},
		{"zero retention", func(c *Config) { c.Store.RetentionDays = -1 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
