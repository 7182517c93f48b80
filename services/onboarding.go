// Package services orchestrates the coaching flows on top of the ai gateway
// and the store: the onboarding conversation, pondering classification, and
// the command routing that ties them together.
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gatsby003/alain-bot/ai"
	"github.com/gatsby003/alain-bot/db"
	"github.com/gatsby003/alain-bot/prompts"
)

const (
	// OnboardingModel is pinned rather than left to the provider default;
	// onboarding quality depends on it.
	OnboardingModel     = "claude-sonnet-4-20250514"
	onboardingMaxTokens = 1024

	// historyLimit caps how many stored turns are replayed into the prompt.
	historyLimit = 20
)

// OnboardingStore is the persistence surface the onboarding flow needs.
// *db.Store satisfies it.
type OnboardingStore interface {
	AppendMessage(ctx context.Context, conversationID uuid.UUID, role db.MessageRole, content string) (*db.Message, error)
	ConversationMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]db.Message, error)
	UpsertProfile(ctx context.Context, userID uuid.UUID, intentions, values, goals []string, rawExtraction string) (*db.UserProfile, error)
	UpdateOnboardingStatus(ctx context.Context, userID uuid.UUID, status db.OnboardingStatus) error
}

// OnboardingService runs the onboarding conversation for one message at a
// time. It is stateless between calls; everything lives in the store.
type OnboardingService struct {
	store    OnboardingStore
	provider ai.Provider
	policy   ai.Policy
	logger   zerolog.Logger
}

// NewOnboardingService creates an onboarding service using the given backend
// provider and retry policy.
func NewOnboardingService(store OnboardingStore, provider ai.Provider, policy ai.Policy, logger zerolog.Logger) *OnboardingService {
	return &OnboardingService{
		store:    store,
		provider: provider,
		policy:   policy,
		logger:   logger.With().Str("service", "onboarding").Logger(),
	}
}

// HandleMessage processes one user turn of the onboarding conversation:
// store the turn, replay recent history through the coach prompt, store the
// reply, and on a completed extraction persist the profile and flip the
// user's status. Returns the reply text to send back.
func (s *OnboardingService) HandleMessage(ctx context.Context, user *db.User, conversation *db.Conversation, text string) (string, error) {
	if _, err := s.store.AppendMessage(ctx, conversation.ID, db.MessageRoleUser, text); err != nil {
		return "", fmt.Errorf("store user message: %w", err)
	}

	history, err := s.store.ConversationMessages(ctx, conversation.ID, historyLimit)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}

	req := &ai.Request{
		Messages:  prompts.OnboardingMessages(historyToMessages(history)),
		Model:     OnboardingModel,
		MaxTokens: onboardingMaxTokens,
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("calling backend for onboarding turn")
	resp, err := s.policy.Do(ctx, func(ctx context.Context) (*ai.Response, error) {
		return s.provider.Generate(ctx, req)
	})
	if err != nil {
		return "", fmt.Errorf("onboarding generation: %w", err)
	}

	result := prompts.ParseOnboarding(resp.Content)
	s.logger.Info().
		Str("user_id", user.ID.String()).
		Bool("complete", result.IsComplete).
		Msg("onboarding turn parsed")

	if _, err := s.store.AppendMessage(ctx, conversation.ID, db.MessageRoleAssistant, result.Reply); err != nil {
		return "", fmt.Errorf("store assistant message: %w", err)
	}

	// Completion is idempotent: a user already marked completed keeps the
	// first extraction.
	if result.IsComplete && user.OnboardingStatus != db.OnboardingCompleted {
		if err := s.completeOnboarding(ctx, user, result); err != nil {
			return "", err
		}
		user.OnboardingStatus = db.OnboardingCompleted
	}

	return result.Reply, nil
}

func (s *OnboardingService) completeOnboarding(ctx context.Context, user *db.User, result prompts.OnboardingResult) error {
	s.logger.Info().Str("user_id", user.ID.String()).Msg("completing onboarding")

	raw, err := json.Marshal(map[string][]string{
		"daily_intentions": result.DailyIntentions,
		"values":           result.Values,
		"goals":            result.Goals,
	})
	if err != nil {
		return fmt.Errorf("marshal extraction: %w", err)
	}

	if _, err := s.store.UpsertProfile(ctx, user.ID, result.DailyIntentions, result.Values, result.Goals, string(raw)); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if err := s.store.UpdateOnboardingStatus(ctx, user.ID, db.OnboardingCompleted); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

func historyToMessages(history []db.Message) []ai.Message {
	messages := make([]ai.Message, 0, len(history))
	for _, m := range history {
		messages = append(messages, ai.Message{Role: ai.Role(m.Role), Content: m.Content})
	}
	return messages
}
