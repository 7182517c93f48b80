// Package factory builds and caches provider adapters.
//
// It lives in its own package so it can import the concrete providers
// without creating a cycle with the ai package that defines their shared
// types.
package factory

import (
	"sync"

	"dario.cat/mergo"
	"github.com/rs/zerolog"

	"github.com/gatsby003/alain-bot/ai"
	"github.com/gatsby003/alain-bot/ai/anthropic"
	"github.com/gatsby003/alain-bot/ai/ollama"
	"github.com/gatsby003/alain-bot/ai/openai"
)

// Factory resolves provider settings, builds adapters, and caches
// default-configured instances. The cache is owned by the Factory value and
// safe for concurrent use; it is never a package-level singleton.
type Factory struct {
	settings *ai.Settings
	logger   zerolog.Logger

	mu    sync.Mutex
	cache map[string]ai.Provider
}

// New creates a Factory around the given settings. A nil settings value
// reads the environment once via ai.SettingsFromEnv.
func New(settings *ai.Settings, logger zerolog.Logger) *Factory {
	if settings == nil {
		settings = ai.SettingsFromEnv()
	}
	return &Factory{
		settings: settings,
		logger:   logger,
		cache:    make(map[string]ai.Provider),
	}
}

// CreateProvider returns a provider adapter for the given kind, resolving an
// empty kind to the configured default.
//
// With nil overrides the call is identity-stable: a cached instance for the
// kind is returned unchanged, and a freshly built one is stored for the next
// caller. With overrides the resolved settings are merged with the overrides
// (overrides win on conflict) and the resulting adapter never touches the
// cache in either direction.
func (f *Factory) CreateProvider(kind string, overrides *ai.ProviderSettings) (ai.Provider, error) {
	kind, cfg, err := f.settings.ProviderSettings(kind)
	if err != nil {
		return nil, err
	}

	if overrides == nil {
		f.mu.Lock()
		cached, ok := f.cache[kind]
		f.mu.Unlock()
		if ok {
			return cached, nil
		}
	} else {
		if err := mergo.Merge(&cfg, *overrides, mergo.WithOverride); err != nil {
			return nil, ai.NewConfigurationError(kind, "failed to merge overrides: "+err.Error())
		}
	}

	provider, err := Direct(kind, cfg, f.logger)
	if err != nil {
		return nil, err
	}

	if overrides == nil {
		f.mu.Lock()
		// A concurrent caller may have built the same kind; keep the first
		// instance so identity stays stable.
		if cached, ok := f.cache[kind]; ok {
			provider = cached
		} else {
			f.cache[kind] = provider
		}
		f.mu.Unlock()
	}
	return provider, nil
}

// Default returns the adapter for the configured default kind.
func (f *Factory) Default() (ai.Provider, error) {
	return f.CreateProvider("", nil)
}

// ClearCache drops all cached instances. In-flight calls on previously
// returned adapters are not interrupted.
func (f *Factory) ClearCache() {
	f.mu.Lock()
	f.cache = make(map[string]ai.Provider)
	f.mu.Unlock()
}

// Direct builds an adapter purely from caller-supplied settings, without
// consulting environment-derived configuration or the cache.
func Direct(kind string, cfg ai.ProviderSettings, logger zerolog.Logger) (ai.Provider, error) {
	switch kind {
	case ai.ProviderAnthropic:
		return anthropic.NewClient(cfg, logger)
	case ai.ProviderOpenAI:
		return openai.NewClient(cfg, logger)
	case ai.ProviderOllama:
		return ollama.NewClient(cfg, logger)
	default:
		return nil, ai.NewConfigurationError(kind, "unsupported provider kind")
	}
}
