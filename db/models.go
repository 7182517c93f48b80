// Package db persists users, conversations, messages, profiles, and
// ponderings in SQLite.
package db

import (
	"time"

	"github.com/google/uuid"
)

// OnboardingStatus tracks a user's progress through onboarding.
// Transitions are monotonic: pending -> started -> completed. The only
// exception is a deliberate recalibration, which moves a completed user back
// to started.
type OnboardingStatus string

const (
	OnboardingPending   OnboardingStatus = "pending"
	OnboardingStarted   OnboardingStatus = "started"
	OnboardingCompleted OnboardingStatus = "completed"
)

// MessageRole attributes a stored turn. System prompts are assembled at
// request time and never persisted.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// PonderingCategory classifies a stored pondering.
type PonderingCategory string

const (
	PonderingThought     PonderingCategory = "thought"
	PonderingObservation PonderingCategory = "observation"
	PonderingFeeling     PonderingCategory = "feeling"
	PonderingInvalid     PonderingCategory = "invalid"
)

// User is an account keyed by the messaging platform's opaque identifier.
type User struct {
	ID               uuid.UUID
	ExternalID       string
	Name             string
	Username         string
	OnboardingStatus OnboardingStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Conversation groups the messages of one chat.
type Conversation struct {
	ID             uuid.UUID
	ExternalChatID string
	UserID         uuid.UUID
	StartedAt      time.Time
	LastMessageAt  *time.Time
}

// Message is one persisted conversation turn.
type Message struct {
	ID             uuid.UUID
	ConversationID uuid.UUID
	Role           MessageRole
	Content        string
	SentAt         time.Time
}

// UserProfile holds what onboarding extracted about a user.
type UserProfile struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	DailyIntentions []string
	Values          []string
	Goals           []string
	RawExtraction   string // original extraction as JSON, diagnostics only
	ExtractedAt     time.Time
	UpdatedAt       time.Time
}

// Pondering is a classified, stored user reflection.
type Pondering struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	ConversationID uuid.UUID
	RawContent     string
	CleanedContent string // empty when the pondering is invalid
	Interpretation string // empty when the pondering is invalid
	Category       PonderingCategory
	IsValid        bool
	ReceivedAt     time.Time
	ProcessedAt    time.Time
}
