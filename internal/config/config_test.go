package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "ORAM_BIND", "ORAM_DATA_DIR", "ORAM_LORE_DIR", "ORAM_LLM_PROVIDER", "ORAM_LLM_MODEL",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Limits.MaxInput != 1000 {
		t.Errorf("MaxInput = %d, want 1000", cfg.Limits.MaxInput)
	}
	if cfg.Limits.RateWindow != 10*time.Second || cfg.Limits.RateMax != 5 {
		t.Errorf("rate = %v/%d, want 10s/5", cfg.Limits.RateWindow, cfg.Limits.RateMax)
	}
	if len(cfg.Events) != 1 || cfg.Events[0].Artist != "Circuit Prophet" {
		t.Errorf("default events = %+v", cfg.Events)
	}
	if cfg.ListenAddr() != "0.0.0.0:3000" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr())
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("port = %d, want default", cfg.Server.Port)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "oram.yaml")
	data := `
server:
  port: 8080
llm:
  provider: ollama
  timeout: 5s
limits:
  rate_window: 30s
  rate_max: 2
agents:
  enabled: true
events:
  - artist: Night Cartographer
    date: 3 January 2026
    genre: ambient
    ticket_url: https://example.test/t
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.LLM.Provider != ProviderOllama || cfg.LLM.Timeout != 5*time.Second {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.Limits.RateWindow != 30*time.Second || cfg.Limits.RateMax != 2 {
		t.Errorf("limits = %+v", cfg.Limits)
	}
	if cfg.Limits.MaxInput != 1000 {
		t.Errorf("MaxInput should keep default, got %d", cfg.Limits.MaxInput)
	}
	if !cfg.Agents.Enabled {
		t.Error("agents.enabled not parsed")
	}
	if len(cfg.Events) != 1 || cfg.Events[0].Artist != "Night Cartographer" {
		t.Errorf("events = %+v", cfg.Events)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("server: [unclosed"), 0o644)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9999")
	t.Setenv("ORAM_DATA_DIR", "/tmp/oram")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Data.Dir != "/tmp/oram" {
		t.Errorf("data dir = %q", cfg.Data.Dir)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("api key = %q, want from OPENAI_API_KEY", cfg.LLM.APIKey)
	}
}

func TestEnvKeyFollowsProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("ORAM_LLM_PROVIDER", "anthropic")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")

	cfg, _ := Load("")
	if cfg.LLM.APIKey != "ant-key" {
		t.Errorf("api key = %q, want ant-key", cfg.LLM.APIKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"openai with key", func(c *Config) { c.LLM.APIKey = "k" }, false},
		{"openai missing key", func(c *Config) {}, true},
		{"gemini missing key", func(c *Config) { c.LLM.Provider = ProviderGemini }, true},
		{"ollama needs no key", func(c *Config) { c.LLM.Provider = ProviderOllama }, false},
		{"offline", func(c *Config) { c.LLM.Provider = ProviderOffline }, false},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "gpt" }, true},
		{"bad port", func(c *Config) { c.LLM.Provider = ProviderOffline; c.Server.Port = 0 }, true},
		{"zero rate max", func(c *Config) { c.LLM.Provider = ProviderOffline; c.Limits.RateMax = 0 }, true},
		{"zero timeout", func(c *Config) { c.LLM.Provider = ProviderOffline; c.LLM.Timeout = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
