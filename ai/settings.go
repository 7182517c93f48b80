package ai

import (
	"os"
)

// Provider kind identifiers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
)

// ProviderSettings holds everything needed to construct one provider
// adapter. Every recognized option is an explicit field; Extra is the escape
// hatch for backend-specific options the gateway does not validate.
type ProviderSettings struct {
	APIKey       string
	DefaultModel string
	Host         string // Ollama host
	BaseURL      string // custom API endpoint, empty means the official one
	Organization string // OpenAI organization id
	Extra        map[string]any
}

// Settings is the gateway configuration: a default provider kind plus
// per-kind settings. It is constructed once at process start and read-only
// thereafter.
type Settings struct {
	DefaultProvider string
	Providers       map[string]ProviderSettings
}

// SettingsFromEnv reads gateway configuration from the environment.
// Recognized variables: AI_PROVIDER selects the default kind;
// ANTHROPIC_API_KEY / ANTHROPIC_DEFAULT_MODEL, OPENAI_API_KEY /
// OPENAI_BASE_URL / OPENAI_ORG_ID / OPENAI_MODEL, and OLLAMA_HOST /
// OLLAMA_MODEL configure the individual kinds. A kind without its credential
// is simply absent from the result.
func SettingsFromEnv() *Settings {
	s := &Settings{
		DefaultProvider: ProviderAnthropic,
		Providers:       make(map[string]ProviderSettings),
	}

	if kind := os.Getenv("AI_PROVIDER"); kind != "" {
		s.DefaultProvider = kind
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		s.Providers[ProviderAnthropic] = ProviderSettings{
			APIKey:       key,
			DefaultModel: os.Getenv("ANTHROPIC_DEFAULT_MODEL"),
		}
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		s.Providers[ProviderOpenAI] = ProviderSettings{
			APIKey:       key,
			DefaultModel: os.Getenv("OPENAI_MODEL"),
			BaseURL:      os.Getenv("OPENAI_BASE_URL"),
			Organization: os.Getenv("OPENAI_ORG_ID"),
		}
	}

	// Ollama needs no credential, just a reachable host and a model name.
	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		s.Providers[ProviderOllama] = ProviderSettings{
			Host:         os.Getenv("OLLAMA_HOST"),
			DefaultModel: model,
		}
	}

	return s
}

// ProviderSettings resolves settings for the given kind, defaulting to the
// configured default kind when empty. A kind that is not configured yields a
// configuration error.
func (s *Settings) ProviderSettings(kind string) (string, ProviderSettings, error) {
	if kind == "" {
		kind = s.DefaultProvider
	}
	ps, ok := s.Providers[kind]
	if !ok {
		return kind, ProviderSettings{}, NewConfigurationError(kind, "provider is not configured; check your credentials")
	}
	return kind, ps, nil
}
