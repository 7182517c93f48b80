package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gatsby003/alain-bot/ai"
	"github.com/gatsby003/alain-bot/db"
	"github.com/gatsby003/alain-bot/prompts"
)

const (
	// PonderingModel matches the onboarding model; classification shares its
	// quality requirements.
	PonderingModel     = "claude-sonnet-4-20250514"
	ponderingMaxTokens = 768
)

// PonderingStore is the persistence surface the classification flow needs.
// *db.Store satisfies it.
type PonderingStore interface {
	CreatePondering(ctx context.Context, p *db.Pondering) (*db.Pondering, error)
}

// PonderingService classifies free-form user reflections and stores them.
type PonderingService struct {
	store    PonderingStore
	provider ai.Provider
	policy   ai.Policy
	logger   zerolog.Logger
}

// NewPonderingService creates a pondering service using the given backend
// provider and retry policy.
func NewPonderingService(store PonderingStore, provider ai.Provider, policy ai.Policy, logger zerolog.Logger) *PonderingService {
	return &PonderingService{
		store:    store,
		provider: provider,
		policy:   policy,
		logger:   logger.With().Str("service", "pondering").Logger(),
	}
}

// ProcessMessage classifies one raw message and stores the result.
// A backend failure is logged and swallowed: the caller gets (nil, nil) and
// the conversation continues without a stored pondering. Store failures are
// returned; losing an accepted pondering is not acceptable.
func (s *PonderingService) ProcessMessage(ctx context.Context, userID, conversationID uuid.UUID, text string) (*db.Pondering, error) {
	req := &ai.Request{
		Messages:  prompts.PonderingMessages(text),
		Model:     PonderingModel,
		MaxTokens: ponderingMaxTokens,
	}

	s.logger.Info().Str("user_id", userID.String()).Msg("classifying pondering")
	resp, err := s.policy.Do(ctx, func(ctx context.Context) (*ai.Response, error) {
		return s.provider.Generate(ctx, req)
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("pondering classification failed")
		return nil, nil
	}

	result := prompts.ParsePondering(resp.Content)
	s.logger.Info().
		Bool("valid", result.IsValid).
		Str("category", string(result.Category)).
		Msg("pondering classified")

	stored, err := s.store.CreatePondering(ctx, &db.Pondering{
		UserID:         userID,
		ConversationID: conversationID,
		RawContent:     text,
		CleanedContent: result.Cleaned,
		Interpretation: result.Interpretation,
		Category:       db.PonderingCategory(result.Category),
		IsValid:        result.IsValid,
	})
	if err != nil {
		return nil, fmt.Errorf("store pondering: %w", err)
	}

	s.logger.Info().
		Str("pondering_id", stored.ID.String()).
		Bool("valid", stored.IsValid).
		Msg("pondering stored")
	return stored, nil
}
