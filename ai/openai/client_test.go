package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/gatsby003/alain-bot/ai"
)

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient(ai.ProviderSettings{}, zerolog.Nop())
	if err == nil {
		t.Fatal("Expected error without an API key")
	}
	if !ai.IsConfigurationError(err) {
		t.Errorf("Expected configuration error, got %v", err)
	}
}

func TestToChatMessagesKeepsOrder(t *testing.T) {
	msgs := toChatMessages([]ai.Message{
		{Role: ai.RoleSystem, Content: "be brief"},
		{Role: ai.RoleUser, Content: "hi"},
		{Role: ai.RoleAssistant, Content: "hello"},
	})
	if len(msgs) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(msgs))
	}
	// The system role travels inline, in sequence position.
	if msgs[0].Role != "system" || msgs[1].Role != "user" || msgs[2].Role != "assistant" {
		t.Errorf("Expected roles preserved in order, got %+v", msgs)
	}
}

func TestUsageFromRecomputesTotal(t *testing.T) {
	u := usageFrom(openai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 99})
	if u.TotalTokens != 15 {
		t.Errorf("Expected computed total 15, got %d", u.TotalTokens)
	}
}

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{"rate limited", 429, "rate limit", ai.IsRateLimited},
		{"unauthorized", 401, "bad key", ai.IsAuthenticationFailed},
		{"forbidden", 403, "forbidden", ai.IsAuthenticationFailed},
		{"unknown model", 404, "the model `gpt-nope` does not exist", ai.IsModelNotFound},
		{"plain 404", 404, "no such route", func(err error) bool { return !ai.IsModelNotFound(err) }},
		{"quota wording", 400, "you exceeded your current quota", ai.IsQuotaExceeded},
		{"plain 400", 400, "invalid request", func(err error) bool { return !ai.IsQuotaExceeded(err) }},
	}
	for _, tc := range cases {
		err := classifyStatus(tc.status, tc.body, "gpt-nope", errors.New(tc.body))
		if !tc.check(err) {
			t.Errorf("%s: classification failed: %v", tc.name, err)
		}
	}
}

func TestTranslateError(t *testing.T) {
	client := &Client{logger: zerolog.Nop()}
	apiErr := &openai.APIError{HTTPStatusCode: 429, Message: "rate limited"}
	if !ai.IsRateLimited(client.translateError(apiErr, "gpt-4o-mini")) {
		t.Error("Expected SDK API error to classify by status")
	}

	plain := errors.New("dial tcp: connection refused")
	translated := client.translateError(plain, "gpt-4o-mini")
	var gwErr *ai.Error
	if !errors.As(translated, &gwErr) || gwErr.Kind != ai.KindProvider {
		t.Errorf("Expected non-API errors to become provider errors, got %v", translated)
	}
	if !errors.Is(translated, plain) {
		t.Error("Expected the original error preserved for diagnostics")
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(ai.ProviderSettings{APIKey: "sk-test", BaseURL: server.URL + "/v1"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func completionJSON(text string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": text},
			"finish_reason": "stop",
		}},
		"usage": map[string]int{"prompt_tokens": 8, "completion_tokens": 3, "total_tokens": 42},
	}
}

func TestGenerate(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completionJSON("Hi from the other side")) //nolint:errcheck
	}))

	resp, err := client.Generate(context.Background(), &ai.Request{
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: "be brief"},
			{Role: ai.RoleUser, Content: "hi"},
		},
		MaxTokens: 32,
		Extra:     map[string]any{"top_p": 0.9, "unknown_option": true},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Content != "Hi from the other side" {
		t.Errorf("Unexpected content: %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 11 {
		t.Errorf("Expected computed total 11, got %d", resp.Usage.TotalTokens)
	}

	msgs, ok := captured["messages"].([]any)
	if !ok || len(msgs) != 2 {
		t.Fatalf("Expected both messages sent inline, got %v", captured["messages"])
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" {
		t.Errorf("Expected system message first, got %v", first)
	}
	if captured["top_p"] != 0.9 {
		t.Errorf("Expected top_p mapped from extras, got %v", captured["top_p"])
	}
	if _, present := captured["unknown_option"]; present {
		t.Error("Expected unknown extras to be skipped")
	}
}

func TestGenerateTranslatesErrors(t *testing.T) {
	status := 429
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"error": map[string]any{"message": "rate limited", "type": "rate_limit_error"},
		})
	}))

	req := &ai.Request{Messages: []ai.Message{{Role: ai.RoleUser, Content: "hi"}}}
	_, err := client.Generate(context.Background(), req)
	if !ai.IsRateLimited(err) {
		t.Fatalf("Expected rate limit error, got %v", err)
	}

	status = 401
	_, err = client.GenerateSync(req)
	if !ai.IsAuthenticationFailed(err) {
		t.Fatalf("Expected authentication error on sync path too, got %v", err)
	}
}
