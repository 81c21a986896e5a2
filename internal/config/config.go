package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"rollcall/internal/names"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Dir is the per-project directory holding config, roster and logs.
const Dir = ".rollcall"

// Config holds all rollcall configuration.
type Config struct {
	// Durable roster file
	Roster RosterConfig `yaml:"roster"`

	// Permitted name characters
	Names NamesConfig `yaml:"names"`

	// Report ordering and roll-call notice
	Report ReportConfig `yaml:"report"`

	// Local inference backend (tier 1)
	Local LocalConfig `yaml:"local"`

	// Cloud inference backend (tier 2)
	Cloud CloudConfig `yaml:"cloud"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// RosterConfig configures the roster store.
type RosterConfig struct {
	Path string `yaml:"path"`
}

// NamesConfig selects the permitted name character class.
type NamesConfig struct {
	CharClass string `yaml:"char_class"` // han, han-ext, latin
}

// ReportConfig configures report ordering and the notice text.
type ReportConfig struct {
	SortLocale   string `yaml:"sort_locale"` // BCP 47 tag, empty = code-point order
	NoticePrefix string `yaml:"notice_prefix"`
	Mention      string `yaml:"mention"`
}

// LocalConfig configures the Ollama backend.
type LocalConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	Prefer   string `yaml:"prefer"` // substring picking the default model from the list
	Timeout  string `yaml:"timeout"`
}

// CloudConfig configures the cloud chat-completion backend.
type CloudConfig struct {
	Provider string `yaml:"provider"` // deepseek, openai, anthropic, gemini
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Timeout  string `yaml:"timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`  // debug, info, warn, error
	Format     string          `yaml:"format"` // console, json
	File       string          `yaml:"file"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// Cloud providers.
const (
	ProviderDeepSeek  = "deepseek"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// ValidProviders lists all supported cloud providers.
var ValidProviders = []string{ProviderDeepSeek, ProviderOpenAI, ProviderAnthropic, ProviderGemini}

type providerDefaults struct {
	envVar  string
	baseURL string
	model   string
}

// Order matters: it is the detection order when no provider is configured.
var providers = []struct {
	name string
	providerDefaults
}{
	{ProviderDeepSeek, providerDefaults{"DEEPSEEK_API_KEY", "https://api.deepseek.com", "deepseek-chat"}},
	{ProviderOpenAI, providerDefaults{"OPENAI_API_KEY", "https://api.openai.com/v1", "gpt-4o-mini"}},
	{ProviderAnthropic, providerDefaults{"ANTHROPIC_API_KEY", "", "claude-sonnet-4-5-20250929"}},
	{ProviderGemini, providerDefaults{"GEMINI_API_KEY", "", "gemini-2.5-flash"}},
}

func defaultsFor(provider string) (providerDefaults, bool) {
	for _, p := range providers {
		if p.name == provider {
			return p.providerDefaults, true
		}
	}
	return providerDefaults{}, false
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Roster: RosterConfig{
			Path: filepath.Join(Dir, "roster.json"),
		},

		Names: NamesConfig{
			CharClass: "han",
		},

		Report: ReportConfig{
			NoticePrefix: "未完成提醒：",
			Mention:      "@",
		},

		Local: LocalConfig{
			Enabled:  true,
			Endpoint: "http://localhost:11434",
			Model:    "qwen3:8b",
			Prefer:   "qwen3",
			Timeout:  "5s",
		},

		// Base URL and model default per provider, see CloudResolved.
		Cloud: CloudConfig{
			Provider: ProviderDeepSeek,
			Timeout:  "10s",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultConfigPath returns the default path to .rollcall/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(Dir, "config.yaml")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Defaults if config file doesn't exist
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// The configured provider's own key always wins. Without a provider or
	// key, the first provider whose key is set is selected.
	if d, ok := defaultsFor(c.Cloud.Provider); ok {
		if key := os.Getenv(d.envVar); key != "" {
			c.Cloud.APIKey = key
		}
	}
	if c.Cloud.APIKey == "" {
		for _, p := range providers {
			key := os.Getenv(p.envVar)
			if key == "" {
				continue
			}
			if p.name != c.Cloud.Provider {
				c.Cloud.Provider = p.name
				c.Cloud.BaseURL = ""
				c.Cloud.Model = ""
			}
			c.Cloud.APIKey = key
			break
		}
	}

	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		c.Local.Endpoint = host
	}
	if path := os.Getenv("ROLLCALL_ROSTER"); path != "" {
		c.Roster.Path = path
	}
	if level := os.Getenv("ROLLCALL_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// CloudResolved returns the cloud config with provider defaults filled in
// for an empty base URL or model.
func (c *Config) CloudResolved() CloudConfig {
	cloud := c.Cloud
	if d, ok := defaultsFor(cloud.Provider); ok {
		if cloud.BaseURL == "" {
			cloud.BaseURL = d.baseURL
		}
		if cloud.Model == "" {
			cloud.Model = d.model
		}
	}
	return cloud
}

// HasCloudCredential reports whether a cloud API key is configured.
func (c *Config) HasCloudCredential() bool {
	return c.Cloud.APIKey != ""
}

// GetLocalTimeout returns the local tier timeout as a duration.
func (c *Config) GetLocalTimeout() time.Duration {
	d, err := time.ParseDuration(c.Local.Timeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// GetCloudTimeout returns the cloud tier timeout as a duration.
func (c *Config) GetCloudTimeout() time.Duration {
	d, err := time.ParseDuration(c.Cloud.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

var validLogLevels = []string{"", "debug", "info", "warn", "warning", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Roster.Path == "" {
		return fmt.Errorf("%w: roster.path is empty", ErrInvalidConfig)
	}
	if _, err := names.ParseCharClass(c.Names.CharClass); err != nil {
		return fmt.Errorf("%w: names.char_class: %v", ErrInvalidConfig, err)
	}
	if !contains(ValidProviders, c.Cloud.Provider) {
		return fmt.Errorf("%w: cloud.provider %q (valid: %v)", ErrInvalidConfig, c.Cloud.Provider, ValidProviders)
	}
	if !contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("%w: logging.level %q", ErrInvalidConfig, c.Logging.Level)
	}
	if c.Logging.Format != "" && c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("%w: logging.format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
