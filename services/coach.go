package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gatsby003/alain-bot/db"
)

// Canned replies sent by the command flows. These are product copy, not
// backend output.
const (
	WelcomeReply = "Hey! Excited to get started.\n\n" +
		"What are the top 3 things you want to do in your day?"

	NorthstarReply = "Let's recalibrate your north star.\n\n" +
		"What are the top 3 things you want to focus on now?"

	ResetReply = "All your data has been deleted.\n\n" +
		"Use /start to begin fresh!"

	NothingToResetReply = "No data found for your account. Nothing to reset."

	NotStartedReply = "You haven't started yet. Use /start to begin!"

	StartFirstReply = "Please use /start to begin!"

	// CompletionSuffix is appended to the reply of the turn that finishes
	// onboarding.
	CompletionSuffix = "\n\nGot it! I've captured your intentions and what drives you.\n\n" +
		"This chat is now your pondering space. Drop any thought, observation, " +
		"or feeling here, whether it's about your goals or just what's on your mind. " +
		"The more you share, the better I understand you and can help you move forward."
)

// CoachStore is the persistence surface the command router needs on top of
// what the two services use.
type CoachStore interface {
	OnboardingStore
	PonderingStore
	GetUserByExternalID(ctx context.Context, externalID string) (*db.User, error)
	CreateUser(ctx context.Context, externalID, name, username string) (*db.User, error)
	GetOrCreateConversation(ctx context.Context, externalChatID string, userID uuid.UUID) (*db.Conversation, error)
	DeleteUserData(ctx context.Context, userID uuid.UUID) error
}

// Coach routes incoming commands and messages to the right flow based on the
// user's onboarding status.
type Coach struct {
	store      CoachStore
	onboarding *OnboardingService
	pondering  *PonderingService
	logger     zerolog.Logger
}

// NewCoach wires the router over the store and the two services.
func NewCoach(store CoachStore, onboarding *OnboardingService, pondering *PonderingService, logger zerolog.Logger) *Coach {
	return &Coach{
		store:      store,
		onboarding: onboarding,
		pondering:  pondering,
		logger:     logger.With().Str("service", "coach").Logger(),
	}
}

// Start handles the start command: register the user on first contact, move
// a pending user into onboarding, and return the opening question. The reply
// is stored so the onboarding history starts with it.
func (c *Coach) Start(ctx context.Context, externalUserID, externalChatID, name, username string) (string, error) {
	user, err := c.store.GetUserByExternalID(ctx, externalUserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		user, err = c.store.CreateUser(ctx, externalUserID, name, username)
		if err != nil {
			return "", err
		}
		c.logger.Info().Str("user_id", user.ID.String()).Msg("new user registered")
	}

	conversation, err := c.store.GetOrCreateConversation(ctx, externalChatID, user.ID)
	if err != nil {
		return "", err
	}

	if user.OnboardingStatus == db.OnboardingPending {
		if err := c.store.UpdateOnboardingStatus(ctx, user.ID, db.OnboardingStarted); err != nil {
			return "", err
		}
	}

	if _, err := c.store.AppendMessage(ctx, conversation.ID, db.MessageRoleAssistant, WelcomeReply); err != nil {
		return "", err
	}
	return WelcomeReply, nil
}

// Reset handles the reset command: every trace of the user is removed in one
// transaction.
func (c *Coach) Reset(ctx context.Context, externalUserID string) (string, error) {
	user, err := c.store.GetUserByExternalID(ctx, externalUserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return NothingToResetReply, nil
	}

	if err := c.store.DeleteUserData(ctx, user.ID); err != nil {
		return "", fmt.Errorf("reset user: %w", err)
	}
	c.logger.Info().Str("user_id", user.ID.String()).Msg("user data deleted")
	return ResetReply, nil
}

// Northstar handles the recalibration command: a known user is moved back
// into onboarding so goals get re-extracted. The existing profile stays until
// the re-run completes and overwrites it.
func (c *Coach) Northstar(ctx context.Context, externalUserID, externalChatID string) (string, error) {
	user, err := c.store.GetUserByExternalID(ctx, externalUserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return NotStartedReply, nil
	}

	if err := c.store.UpdateOnboardingStatus(ctx, user.ID, db.OnboardingStarted); err != nil {
		return "", err
	}

	conversation, err := c.store.GetOrCreateConversation(ctx, externalChatID, user.ID)
	if err != nil {
		return "", err
	}
	if _, err := c.store.AppendMessage(ctx, conversation.ID, db.MessageRoleAssistant, NorthstarReply); err != nil {
		return "", err
	}
	return NorthstarReply, nil
}

// HandleText routes a plain message: onboarding turns while the user is in
// the started state, pondering classification once completed, and a nudge
// towards the start command otherwise.
func (c *Coach) HandleText(ctx context.Context, externalUserID, externalChatID, text string) (string, error) {
	user, err := c.store.GetUserByExternalID(ctx, externalUserID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return StartFirstReply, nil
	}

	conversation, err := c.store.GetOrCreateConversation(ctx, externalChatID, user.ID)
	if err != nil {
		return "", err
	}

	switch user.OnboardingStatus {
	case db.OnboardingStarted:
		return c.handleOnboardingTurn(ctx, user, conversation, text)
	case db.OnboardingCompleted:
		return c.handlePonderingTurn(ctx, user, conversation, text)
	default:
		return StartFirstReply, nil
	}
}

func (c *Coach) handleOnboardingTurn(ctx context.Context, user *db.User, conversation *db.Conversation, text string) (string, error) {
	wasStarted := user.OnboardingStatus == db.OnboardingStarted

	reply, err := c.onboarding.HandleMessage(ctx, user, conversation, text)
	if err != nil {
		return "", err
	}

	if wasStarted && user.OnboardingStatus == db.OnboardingCompleted {
		reply += CompletionSuffix
		c.logger.Info().Str("user_id", user.ID.String()).Msg("onboarding completed")
	}
	return reply, nil
}

func (c *Coach) handlePonderingTurn(ctx context.Context, user *db.User, conversation *db.Conversation, text string) (string, error) {
	if _, err := c.store.AppendMessage(ctx, conversation.ID, db.MessageRoleUser, text); err != nil {
		return "", err
	}

	pondering, err := c.pondering.ProcessMessage(ctx, user.ID, conversation.ID, text)
	if err != nil {
		return "", err
	}

	reply := "Got it."
	if pondering != nil && pondering.IsValid {
		reply = "Noted."
	}

	if _, err := c.store.AppendMessage(ctx, conversation.ID, db.MessageRoleAssistant, reply); err != nil {
		return "", err
	}
	return reply, nil
}
