package services

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gatsby003/alain-bot/ai"
	"github.com/gatsby003/alain-bot/db"
)

func newTestCoach(t *testing.T, store *db.Store, provider *fakeProvider) *Coach {
	t.Helper()
	return NewCoach(
		store,
		NewOnboardingService(store, provider, testPolicy, zerolog.Nop()),
		NewPonderingService(store, provider, testPolicy, zerolog.Nop()),
		zerolog.Nop(),
	)
}

func TestStartRegistersAndWelcomes(t *testing.T) {
	store := newTestStore(t)
	coach := newTestCoach(t, store, &fakeProvider{})
	ctx := context.Background()

	reply, err := coach.Start(ctx, "tg:9", "chat:9", "Ada", "ada")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if reply != WelcomeReply {
		t.Errorf("Unexpected reply: %q", reply)
	}

	user, _ := store.GetUserByExternalID(ctx, "tg:9")
	if user == nil {
		t.Fatal("Expected the user registered")
	}
	if user.OnboardingStatus != db.OnboardingStarted {
		t.Errorf("Expected started, got %q", user.OnboardingStatus)
	}

	conv, _ := store.GetOrCreateConversation(ctx, "chat:9", user.ID)
	msgs, _ := store.ConversationMessages(ctx, conv.ID, 0)
	if len(msgs) != 1 || msgs[0].Role != db.MessageRoleAssistant || msgs[0].Content != WelcomeReply {
		t.Errorf("Expected the welcome stored as the first assistant turn, got %+v", msgs)
	}
}

func TestStartIsIdempotentForKnownUsers(t *testing.T) {
	store := newTestStore(t)
	coach := newTestCoach(t, store, &fakeProvider{})
	ctx := context.Background()

	if _, err := coach.Start(ctx, "tg:9", "chat:9", "Ada", "ada"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	first, _ := store.GetUserByExternalID(ctx, "tg:9")

	if _, err := coach.Start(ctx, "tg:9", "chat:9", "Ada", "ada"); err != nil {
		t.Fatalf("Start again: %v", err)
	}
	second, _ := store.GetUserByExternalID(ctx, "tg:9")
	if second.ID != first.ID {
		t.Error("Expected no duplicate user on repeated start")
	}
}

func TestStartDoesNotDemoteCompletedUsers(t *testing.T) {
	store := newTestStore(t)
	coach := newTestCoach(t, store, &fakeProvider{})
	ctx := context.Background()

	user, _ := store.CreateUser(ctx, "tg:9", "Ada", "ada")
	store.UpdateOnboardingStatus(ctx, user.ID, db.OnboardingCompleted) //nolint:errcheck

	if _, err := coach.Start(ctx, "tg:9", "chat:9", "Ada", "ada"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	fresh, _ := store.GetUserByExternalID(ctx, "tg:9")
	if fresh.OnboardingStatus != db.OnboardingCompleted {
		t.Errorf("Expected completed preserved, got %q", fresh.OnboardingStatus)
	}
}

func TestResetUnknownUser(t *testing.T) {
	store := newTestStore(t)
	coach := newTestCoach(t, store, &fakeProvider{})

	reply, err := coach.Reset(context.Background(), "tg:ghost")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if reply != NothingToResetReply {
		t.Errorf("Unexpected reply: %q", reply)
	}
}

func TestResetDeletesEverything(t *testing.T) {
	store := newTestStore(t)
	provider := &fakeProvider{responses: []string{incompleteTurn}}
	coach := newTestCoach(t, store, provider)
	ctx := context.Background()

	if _, err := coach.Start(ctx, "tg:9", "chat:9", "Ada", "ada"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := coach.HandleText(ctx, "tg:9", "chat:9", "I want to write"); err != nil {
		t.Fatalf("HandleText: %v", err)
	}

	reply, err := coach.Reset(ctx, "tg:9")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if reply != ResetReply {
		t.Errorf("Unexpected reply: %q", reply)
	}
	gone, _ := store.GetUserByExternalID(ctx, "tg:9")
	if gone != nil {
		t.Error("Expected the user gone after reset")
	}
}

func TestNorthstarUnknownUser(t *testing.T) {
	store := newTestStore(t)
	coach := newTestCoach(t, store, &fakeProvider{})

	reply, err := coach.Northstar(context.Background(), "tg:ghost", "chat:1")
	if err != nil {
		t.Fatalf("Northstar: %v", err)
	}
	if reply != NotStartedReply {
		t.Errorf("Unexpected reply: %q", reply)
	}
}

func TestNorthstarReopensOnboarding(t *testing.T) {
	store := newTestStore(t)
	coach := newTestCoach(t, store, &fakeProvider{})
	ctx := context.Background()

	user, _ := store.CreateUser(ctx, "tg:9", "Ada", "ada")
	store.UpdateOnboardingStatus(ctx, user.ID, db.OnboardingCompleted) //nolint:errcheck
	if _, err := store.UpsertProfile(ctx, user.ID, []string{"old"}, nil, nil, "{}"); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}

	reply, err := coach.Northstar(ctx, "tg:9", "chat:9")
	if err != nil {
		t.Fatalf("Northstar: %v", err)
	}
	if reply != NorthstarReply {
		t.Errorf("Unexpected reply: %q", reply)
	}

	fresh, _ := store.GetUserByExternalID(ctx, "tg:9")
	if fresh.OnboardingStatus != db.OnboardingStarted {
		t.Errorf("Expected started again, got %q", fresh.OnboardingStatus)
	}
	// The old profile survives until the re-run completes and overwrites it.
	profile, _ := store.GetProfile(ctx, user.ID)
	if profile == nil || profile.DailyIntentions[0] != "old" {
		t.Errorf("Expected the old profile kept, got %+v", profile)
	}
}

func TestHandleTextUnknownUser(t *testing.T) {
	store := newTestStore(t)
	coach := newTestCoach(t, store, &fakeProvider{})

	reply, err := coach.HandleText(context.Background(), "tg:ghost", "chat:1", "hello")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if reply != StartFirstReply {
		t.Errorf("Unexpected reply: %q", reply)
	}
}

func TestHandleTextPendingUser(t *testing.T) {
	store := newTestStore(t)
	coach := newTestCoach(t, store, &fakeProvider{})
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, "tg:9", "Ada", "ada"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	reply, err := coach.HandleText(ctx, "tg:9", "chat:9", "hello")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if reply != StartFirstReply {
		t.Errorf("Expected a nudge to start, got %q", reply)
	}
}

func TestHandleTextCompletionSuffix(t *testing.T) {
	store := newTestStore(t)
	provider := &fakeProvider{responses: []string{completeTurn}}
	coach := newTestCoach(t, store, provider)
	ctx := context.Background()

	if _, err := coach.Start(ctx, "tg:9", "chat:9", "Ada", "ada"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	reply, err := coach.HandleText(ctx, "tg:9", "chat:9", "that is everything")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if !strings.HasPrefix(reply, "All set.") {
		t.Errorf("Expected the parsed reply first, got %q", reply)
	}
	if !strings.HasSuffix(reply, CompletionSuffix) {
		t.Errorf("Expected the completion suffix appended, got %q", reply)
	}
}

func TestHandleTextPondering(t *testing.T) {
	store := newTestStore(t)
	provider := &fakeProvider{responses: []string{validClassification}}
	coach := newTestCoach(t, store, provider)
	ctx := context.Background()

	user, _ := store.CreateUser(ctx, "tg:9", "Ada", "ada")
	store.UpdateOnboardingStatus(ctx, user.ID, db.OnboardingCompleted) //nolint:errcheck

	reply, err := coach.HandleText(ctx, "tg:9", "chat:9", "mornings feel calmer")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if reply != "Noted." {
		t.Errorf("Expected acknowledgment for a valid pondering, got %q", reply)
	}

	conv, _ := store.GetOrCreateConversation(ctx, "chat:9", user.ID)
	msgs, _ := store.ConversationMessages(ctx, conv.ID, 0)
	if len(msgs) != 2 || msgs[0].Content != "mornings feel calmer" || msgs[1].Content != "Noted." {
		t.Errorf("Expected both turns stored, got %+v", msgs)
	}
}

func TestHandleTextPonderingFailureStillReplies(t *testing.T) {
	store := newTestStore(t)
	provider := &fakeProvider{errs: []error{
		ai.NewProviderError("anthropic", "api error", 500, nil),
	}}
	coach := newTestCoach(t, store, provider)
	ctx := context.Background()

	user, _ := store.CreateUser(ctx, "tg:9", "Ada", "ada")
	store.UpdateOnboardingStatus(ctx, user.ID, db.OnboardingCompleted) //nolint:errcheck

	reply, err := coach.HandleText(ctx, "tg:9", "chat:9", "a thought")
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if reply != "Got it." {
		t.Errorf("Expected the fallback acknowledgment, got %q", reply)
	}
}
