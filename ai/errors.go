package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind categorizes a gateway error. The set is closed: every provider
// adapter must map backend failures onto exactly one of these.
type Kind string

const (
	KindRateLimited          Kind = "rate_limited"
	KindAuthenticationFailed Kind = "authentication_failed"
	KindModelNotFound        Kind = "model_not_found"
	KindQuotaExceeded        Kind = "quota_exceeded"
	KindProvider             Kind = "provider"
	KindInvalidMessage       Kind = "invalid_message"
	KindInvalidRequest       Kind = "invalid_request"
	KindConfiguration        Kind = "configuration"
)

// Error represents a provider-neutral gateway error.
type Error struct {
	Kind       Kind
	Provider   string // provider name, empty for caller-side errors
	Message    string
	StatusCode int   // backend HTTP status, 0 when not applicable
	Retryable  bool  // true only for rate limits
	Err        error // original backend error, diagnostics only
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the original backend error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsRateLimited checks if an error is a rate limit error.
func IsRateLimited(err error) bool {
	return kindOf(err) == KindRateLimited
}

// IsAuthenticationFailed checks if an error is an authentication failure.
func IsAuthenticationFailed(err error) bool {
	return kindOf(err) == KindAuthenticationFailed
}

// IsModelNotFound checks if an error reports an unknown model.
func IsModelNotFound(err error) bool {
	return kindOf(err) == KindModelNotFound
}

// IsQuotaExceeded checks if an error is a quota exceeded error.
func IsQuotaExceeded(err error) bool {
	return kindOf(err) == KindQuotaExceeded
}

// IsConfigurationError checks if an error is a construction-time
// configuration failure. Configuration errors are fatal and never retried.
func IsConfigurationError(err error) bool {
	return kindOf(err) == KindConfiguration
}

// IsInvalidInput checks if an error stems from caller misuse (bad message or
// empty request). Such errors are raised before any network call.
func IsInvalidInput(err error) bool {
	k := kindOf(err)
	return k == KindInvalidMessage || k == KindInvalidRequest
}

// IsRetryable reports whether an error is eligible for automatic re-attempt.
// Rate limits and generic connectivity/timeout failures are retryable;
// caller cancellation never is.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Retryable
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func kindOf(err error) Kind {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return ""
}

// NewRateLimitError creates a new rate limit error. Rate limits are the only
// taxonomy kind marked retryable.
func NewRateLimitError(provider, message string, statusCode int, err error) *Error {
	return &Error{
		Kind:       KindRateLimited,
		Provider:   provider,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  true,
		Err:        err,
	}
}

// NewAuthenticationError creates a new authentication failure error.
func NewAuthenticationError(provider, message string, statusCode int, err error) *Error {
	return &Error{
		Kind:       KindAuthenticationFailed,
		Provider:   provider,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NewModelNotFoundError creates an error for an unknown model. The message
// names the requested identifier and the provider's supported list.
func NewModelNotFoundError(provider, model string, supported []string, statusCode int, err error) *Error {
	return &Error{
		Kind:       KindModelNotFound,
		Provider:   provider,
		Message:    fmt.Sprintf("model not found: %s (supported: %s)", model, strings.Join(supported, ", ")),
		StatusCode: statusCode,
		Err:        err,
	}
}

// NewQuotaExceededError creates a new quota exceeded error.
func NewQuotaExceededError(provider, message string, statusCode int, err error) *Error {
	return &Error{
		Kind:       KindQuotaExceeded,
		Provider:   provider,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NewProviderError creates the catch-all backend failure error.
func NewProviderError(provider, message string, statusCode int, err error) *Error {
	return &Error{
		Kind:       KindProvider,
		Provider:   provider,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NewConfigurationError creates a construction-time configuration error.
func NewConfigurationError(provider, message string) *Error {
	return &Error{
		Kind:     KindConfiguration,
		Provider: provider,
		Message:  message,
	}
}

func newInvalidMessageError(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidMessage, Message: fmt.Sprintf(format, args...)}
}

func newInvalidRequestError(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}
