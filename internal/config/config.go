package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all ORAM configuration.
type Config struct {
	Server     ServerConfig  `yaml:"server"`
	Data       DataConfig    `yaml:"data"`
	Lore       LoreConfig    `yaml:"lore"`
	LLM        LLMConfig     `yaml:"llm"`
	Limits     LimitsConfig  `yaml:"limits"`
	Agents     AgentsConfig  `yaml:"agents"`
	Bridge     BridgeConfig  `yaml:"bridge"`
	Events     []EventConfig `yaml:"events"`
	Restricted []string      `yaml:"restricted"` // denylisted terms checked before classification
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DataConfig struct {
	Dir string `yaml:"dir"` // booking log + bridge db live here
}

type LoreConfig struct {
	Dir       string   `yaml:"dir"`       // empty = embedded defaults
	Fragments []string `yaml:"fragments"` // file names, in corpus order
	Triggers  string   `yaml:"triggers"`
	Library   string   `yaml:"library"`
}

type LLMConfig struct {
	Provider  string        `yaml:"provider"` // "openai", "anthropic", "gemini", "ollama", "offline"
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

type LimitsConfig struct {
	MaxInput   int           `yaml:"max_input"` // runes
	RateWindow time.Duration `yaml:"rate_window"`
	RateMax    int           `yaml:"rate_max"`
}

type AgentsConfig struct {
	Enabled bool `yaml:"enabled"` // respond with {"messages": [...]}
}

type BridgeConfig struct {
	Enabled bool          `yaml:"enabled"` // run the consumer inside `serve`
	Poll    time.Duration `yaml:"poll"`
}

// EventConfig is one confirmed night at the venue.
type EventConfig struct {
	Artist    string `yaml:"artist"`
	Date      string `yaml:"date"`
	Genre     string `yaml:"genre"`
	TicketURL string `yaml:"ticket_url"`
}

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
	ProviderOffline   = "offline"
)

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "0.0.0.0",
			Port: 3000,
		},
		Data: DataConfig{
			Dir: "data",
		},
		Lore: LoreConfig{
			Fragments: []string{
				"core_myth.txt",
				"profiles.txt",
				"epochs.txt",
				"symbols.txt",
				"architecture.txt",
				"origin.txt",
			},
			Triggers: "deep_triggers.txt",
			Library:  "creative_library.txt",
		},
		LLM: LLMConfig{
			Provider:  ProviderOpenAI,
			MaxTokens: 400,
			Timeout:   20 * time.Second,
		},
		Limits: LimitsConfig{
			MaxInput:   1000,
			RateWindow: 10 * time.Second,
			RateMax:    5,
		},
		Bridge: BridgeConfig{
			Poll: 2 * time.Second,
		},
		Events: []EventConfig{
			{
				Artist:    "Circuit Prophet",
				Date:      "21 December 2025",
				Genre:     "techno",
				TicketURL: "https://saltbox.flicket.co.nz",
			},
		},
		Restricted: []string{"admin", "shell", "system", "sudo", "root", "exec", "password"},
	}
}

// Load reads a YAML config file on top of the defaults and applies env
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
			}
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets the process environment win over the file.
// The provider's API key comes from its conventional variable unless the
// file already set one.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("ORAM_BIND"); v != "" {
		c.Server.Bind = v
	}
	if v := os.Getenv("ORAM_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("ORAM_LORE_DIR"); v != "" {
		c.Lore.Dir = v
	}
	if v := os.Getenv("ORAM_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("ORAM_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}

	if c.LLM.APIKey == "" {
		if env := keyEnv[c.LLM.Provider]; env != "" {
			c.LLM.APIKey = os.Getenv(env)
		}
	}
}

var keyEnv = map[string]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// Validate fails fast on settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("%s provider requires %s or llm.api_key", c.LLM.Provider, keyEnv[c.LLM.Provider])
		}
	case ProviderOllama, ProviderOffline:
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("llm.timeout must be > 0")
	}
	if c.Limits.MaxInput <= 0 {
		return errors.New("limits.max_input must be > 0")
	}
	if c.Limits.RateWindow <= 0 || c.Limits.RateMax <= 0 {
		return errors.New("limits.rate_window and limits.rate_max must be > 0")
	}
	if c.Data.Dir == "" {
		return errors.New("data.dir is required")
	}
	return nil
}

// Offline reports whether delegated intents are answered locally.
func (c *Config) Offline() bool {
	return c.LLM.Provider == ProviderOffline
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
