package ai

import (
	"context"
	"strings"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message represents a single turn in a conversation.
// It is provider-neutral and immutable once constructed.
type Message struct {
	Role    Role
	Content string
}

// NewMessage constructs a validated Message. It returns an InvalidMessage
// error when the role is outside the closed set or the content is empty
// after trimming.
func NewMessage(role Role, content string) (Message, error) {
	if !role.Valid() {
		return Message{}, newInvalidMessageError("invalid role %q: must be one of system, user, assistant", role)
	}
	if strings.TrimSpace(content) == "" {
		return Message{}, newInvalidMessageError("message content cannot be empty")
	}
	return Message{Role: role, Content: content}, nil
}

// Request represents a complete generation request.
// Messages are ordered: insertion order is conversational order.
type Request struct {
	Messages    []Message
	Model       string         // empty means the provider's default model
	MaxTokens   int            // 0 means the provider's default
	Temperature *float64       // optional sampling temperature
	Extra       map[string]any // backend-specific options, keys not validated here
}

// Validate checks the request before any network call is made.
// An empty message sequence or an invalid message yields an InvalidRequest
// or InvalidMessage error respectively.
func (r *Request) Validate() error {
	if r == nil || len(r.Messages) == 0 {
		return newInvalidRequestError("request must contain at least one message")
	}
	for _, m := range r.Messages {
		if !m.Role.Valid() {
			return newInvalidMessageError("invalid role %q: must be one of system, user, assistant", m.Role)
		}
		if strings.TrimSpace(m.Content) == "" {
			return newInvalidMessageError("message content cannot be empty")
		}
	}
	return nil
}

// Usage represents token accounting for a response.
// TotalTokens is always the sum of the two counted fields, never a value
// reported by the backend.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response represents a complete generation response.
type Response struct {
	Content string
	Model   string
	Usage   Usage
	Raw     any // original backend response, diagnostics only
}

// Provider is the uniform interface every backend adapter implements.
//
// Generate and GenerateSync have identical semantics and identical error
// mapping; GenerateSync blocks the calling goroutine with a background
// context. Implementations must be safe for concurrent use: they hold only
// immutable configuration plus the backend client handle.
type Provider interface {
	// Generate sends the request and returns the translated response.
	// The context aborts the in-flight backend call when cancelled.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// GenerateSync is the blocking twin of Generate.
	GenerateSync(req *Request) (*Response, error)

	// DefaultModel returns the model used when a request does not name one.
	DefaultModel() string

	// SupportedModels returns the known model identifiers for this provider.
	// The list is used in error messages only and never enforced at request
	// time; callers may pass unknown identifiers and let the backend reject
	// them.
	SupportedModels() []string
}
