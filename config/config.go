// Package config loads the bot's YAML configuration and maps it onto the ai
// gateway's settings. File values override built-in defaults, and environment
// variables override the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/gatsby003/alain-bot/ai"
)

// AnthropicConfig represents configuration for the Anthropic provider.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key,omitempty"` // Anthropic API key
	Model  string `yaml:"model,omitempty"`   // Default model name
}

// OpenAIConfig represents configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey       string `yaml:"api_key,omitempty"`      // OpenAI API key
	BaseURL      string `yaml:"base_url,omitempty"`     // Custom base URL (default: official API)
	Model        string `yaml:"model,omitempty"`        // Default model name
	Organization string `yaml:"organization,omitempty"` // Organization ID
}

// OllamaConfig represents configuration for the Ollama provider.
type OllamaConfig struct {
	Host  string `yaml:"host,omitempty"`  // Ollama host (default: "http://localhost:11434")
	Model string `yaml:"model,omitempty"` // Default model name
}

// RetryConfig tunes the gateway retry policy. Delays are Go duration
// strings, e.g. "1s" or "500ms".
type RetryConfig struct {
	MaxRetries *uint  `yaml:"max_retries,omitempty"`
	BaseDelay  string `yaml:"base_delay,omitempty"`
	MaxDelay   string `yaml:"max_delay,omitempty"`
	Jitter     *bool  `yaml:"jitter,omitempty"`
}

// Config is the full bot configuration.
type Config struct {
	// Default backend: "anthropic", "openai", or "ollama".
	Provider string `yaml:"provider,omitempty"`

	Anthropic AnthropicConfig `yaml:"anthropic,omitempty"`
	OpenAI    OpenAIConfig    `yaml:"openai,omitempty"`
	Ollama    OllamaConfig    `yaml:"ollama,omitempty"`

	Retry RetryConfig `yaml:"retry,omitempty"`

	Database struct {
		Path string `yaml:"path,omitempty"` // SQLite file path
	} `yaml:"database,omitempty"`

	LogFile string `yaml:"log_file,omitempty"` // empty logs to stdout
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{Provider: ai.ProviderAnthropic}
	cfg.Database.Path = "alain.db"
	return cfg
}

// GetConfigPath returns the default config file path.
// Can be overridden via ALAIN_CONFIG_PATH environment variable.
func GetConfigPath() string {
	if envPath := os.Getenv("ALAIN_CONFIG_PATH"); envPath != "" {
		return expandPath(envPath)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.alain/config.yaml"
	}
	return filepath.Join(homeDir, ".alain", "config.yaml")
}

// Load reads the config file at path and layers it over the defaults, then
// applies environment overrides. A missing file is not an error; defaults
// plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(expandPath(path)) //nolint:gosec // G304: user-specified config path is intentional
	switch {
	case os.IsNotExist(err):
		// Fall through to env overrides.
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
		if err := mergo.Merge(cfg, fileCfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save writes the configuration to the specified path.
func Save(cfg *Config, path string) error {
	expandedPath := expandPath(path)

	if err := os.MkdirAll(filepath.Dir(expandedPath), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(expandedPath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	setIfEnv := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setIfEnv(&c.Provider, "AI_PROVIDER")
	setIfEnv(&c.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setIfEnv(&c.Anthropic.Model, "ANTHROPIC_DEFAULT_MODEL")
	setIfEnv(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setIfEnv(&c.OpenAI.Model, "OPENAI_MODEL")
	setIfEnv(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setIfEnv(&c.OpenAI.Organization, "OPENAI_ORG_ID")
	setIfEnv(&c.Ollama.Host, "OLLAMA_HOST")
	setIfEnv(&c.Ollama.Model, "OLLAMA_MODEL")
	setIfEnv(&c.Database.Path, "ALAIN_DB_PATH")
}

// AISettings maps the configuration onto the gateway's settings.
func (c *Config) AISettings() *ai.Settings {
	return &ai.Settings{
		DefaultProvider: c.Provider,
		Providers: map[string]ai.ProviderSettings{
			ai.ProviderAnthropic: {
				APIKey:       c.Anthropic.APIKey,
				DefaultModel: c.Anthropic.Model,
			},
			ai.ProviderOpenAI: {
				APIKey:       c.OpenAI.APIKey,
				DefaultModel: c.OpenAI.Model,
				BaseURL:      c.OpenAI.BaseURL,
				Organization: c.OpenAI.Organization,
			},
			ai.ProviderOllama: {
				Host:         c.Ollama.Host,
				DefaultModel: c.Ollama.Model,
			},
		},
	}
}

// RetryPolicy builds the gateway retry policy, starting from the default and
// applying whatever the retry section sets.
func (c *Config) RetryPolicy() (ai.Policy, error) {
	policy := ai.DefaultPolicy
	if c.Retry.MaxRetries != nil {
		policy.MaxRetries = *c.Retry.MaxRetries
	}
	if c.Retry.BaseDelay != "" {
		d, err := time.ParseDuration(c.Retry.BaseDelay)
		if err != nil {
			return ai.Policy{}, fmt.Errorf("parse retry base_delay: %w", err)
		}
		policy.BaseDelay = d
	}
	if c.Retry.MaxDelay != "" {
		d, err := time.ParseDuration(c.Retry.MaxDelay)
		if err != nil {
			return ai.Policy{}, fmt.Errorf("parse retry max_delay: %w", err)
		}
		policy.MaxDelay = d
	}
	if c.Retry.Jitter != nil {
		policy.Jitter = *c.Retry.Jitter
	}
	return policy, nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
