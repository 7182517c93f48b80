package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPredicates(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want func(error) bool
	}{
		{"rate limited", NewRateLimitError("anthropic", "rate limit exceeded", 429, nil), IsRateLimited},
		{"authentication", NewAuthenticationError("anthropic", "authentication failed", 401, nil), IsAuthenticationFailed},
		{"model not found", NewModelNotFoundError("anthropic", "nope", []string{"a"}, 404, nil), IsModelNotFound},
		{"quota exceeded", NewQuotaExceededError("anthropic", "quota exceeded", 400, nil), IsQuotaExceeded},
		{"configuration", NewConfigurationError("anthropic", "api key is required"), IsConfigurationError},
	}
	for _, tc := range cases {
		if !tc.want(tc.err) {
			t.Errorf("%s: predicate returned false for its own error", tc.name)
		}
		other := NewProviderError("anthropic", "api error", 500, nil)
		if tc.want(other) {
			t.Errorf("%s: predicate matched a plain provider error", tc.name)
		}
	}
}

func TestPredicatesMatchWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("generation: %w", NewRateLimitError("openai", "rate limit exceeded", 429, nil))
	if !IsRateLimited(wrapped) {
		t.Error("Expected IsRateLimited to match through wrapping")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(NewRateLimitError("anthropic", "rate limit exceeded", 429, nil)) {
		t.Error("Expected rate limit errors to be retryable")
	}
	for _, err := range []error{
		NewAuthenticationError("anthropic", "authentication failed", 401, nil),
		NewModelNotFoundError("anthropic", "m", nil, 404, nil),
		NewQuotaExceededError("anthropic", "quota exceeded", 400, nil),
		NewProviderError("anthropic", "api error", 500, nil),
		NewConfigurationError("anthropic", "bad config"),
	} {
		if IsRetryable(err) {
			t.Errorf("Expected %v to be non-retryable", err)
		}
	}
	if IsRetryable(nil) {
		t.Error("Expected nil to be non-retryable")
	}
}

func TestIsRetryableCancellation(t *testing.T) {
	if IsRetryable(context.Canceled) {
		t.Error("Expected context.Canceled to be non-retryable")
	}
	if IsRetryable(fmt.Errorf("call: %w", context.DeadlineExceeded)) {
		t.Error("Expected context.DeadlineExceeded to be non-retryable")
	}
}

type fakeNetError struct{}

func (fakeNetError) Error() string   { return "connection refused" }
func (fakeNetError) Timeout() bool   { return true }
func (fakeNetError) Temporary() bool { return true }

func TestIsRetryableNetError(t *testing.T) {
	if !IsRetryable(fakeNetError{}) {
		t.Error("Expected net errors to be retryable")
	}
	if !IsRetryable(fmt.Errorf("call: %w", fakeNetError{})) {
		t.Error("Expected wrapped net errors to be retryable")
	}
}

func TestErrorMessageFormat(t *testing.T) {
	err := NewModelNotFoundError("anthropic", "claude-x", []string{"claude-a", "claude-b"}, 404, nil)
	msg := err.Error()
	if !strings.Contains(msg, "claude-x") {
		t.Errorf("Expected message to name the requested model, got %q", msg)
	}
	if !strings.Contains(msg, "claude-a, claude-b") {
		t.Errorf("Expected message to list supported models, got %q", msg)
	}
}

func TestErrorUnwrap(t *testing.T) {
	original := errors.New("boom")
	err := NewProviderError("openai", "api error", 500, original)
	if !errors.Is(err, original) {
		t.Error("Expected error to unwrap to the original backend error")
	}
}
