// Package ai provides a provider-neutral abstraction layer for generative
// text backends.
//
// This package defines the common types, error taxonomy, and retry policy
// that allow the rest of the codebase to work with multiple providers
// (Anthropic, OpenAI, Ollama) without being tightly coupled to any specific
// provider's SDK.
//
// # Core Concepts
//
//  1. Messages: the Message type represents a single conversation turn with a
//     role (system, user, assistant) and text content. Messages are validated
//     at construction and immutable afterwards.
//
//  2. Provider Interface: the Provider interface exposes Generate() for the
//     context-aware call path and GenerateSync() as a blocking twin with
//     identical semantics. Implementations handle provider-specific details
//     and translate backend failures into *Error values.
//
//  3. Errors: the Error type provides provider-neutral error handling with a
//     closed set of kinds. Only rate limits and transient connectivity
//     failures are retryable; caller misuse and configuration problems
//     propagate immediately.
//
//  4. Retry: the Policy type wraps any generate operation with exponential
//     backoff and optional jitter. It holds no state between invocations.
//
//  5. Settings: provider credentials and default models are resolved once
//     from the environment via SettingsFromEnv. Instance construction and
//     caching live in the factory subpackage.
//
// Usage Example
//
//	settings := ai.SettingsFromEnv()
//	f := factory.New(settings, logger)
//	provider, err := f.CreateProvider("", nil) // configured default, cached
//
//	req := &ai.Request{
//	    Messages: []ai.Message{
//	        {Role: ai.RoleSystem, Content: "be terse"},
//	        {Role: ai.RoleUser, Content: "hi"},
//	    },
//	}
//
//	resp, err := ai.DefaultPolicy.Do(ctx, func(ctx context.Context) (*ai.Response, error) {
//	    return provider.Generate(ctx, req)
//	})
//
// # Extension Points
//
// To add a new provider:
//  1. Implement the Provider interface in a subpackage
//  2. Translate between provider-specific types and ai package types
//  3. Map every backend failure onto one of the Error kinds
//  4. Register the kind in the factory subpackage
package ai
