// Package ollama implements the ai.Provider interface for a local Ollama
// server.
package ollama

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"

	"github.com/gatsby003/alain-bot/ai"
)

const (
	// ProviderName identifies this adapter in errors and logs.
	ProviderName = ai.ProviderOllama

	defaultHost = "http://localhost:11434"
)

// Client implements the ai.Provider interface for Ollama.
// Safe to share across concurrent calls.
type Client struct {
	client       *api.Client
	defaultModel string
	logger       zerolog.Logger
}

// NewClient creates a new Ollama Client. Ollama needs no credential, only a
// reachable host (settings, OLLAMA_HOST, or the local default) and a default
// model name, whose absence is a configuration error.
func NewClient(cfg ai.ProviderSettings, logger zerolog.Logger) (*Client, error) {
	model := cfg.DefaultModel
	if model == "" {
		model = os.Getenv("OLLAMA_MODEL")
	}
	if model == "" {
		return nil, ai.NewConfigurationError(ProviderName, "default model is required: set OLLAMA_MODEL or pass DefaultModel")
	}

	host := cfg.Host
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = defaultHost
	}
	baseURL, err := parseHost(host)
	if err != nil {
		return nil, ai.NewConfigurationError(ProviderName, "invalid host: "+err.Error())
	}

	return &Client{
		client:       api.NewClient(baseURL, &http.Client{}),
		defaultModel: model,
		logger:       logger.With().Str("provider", ProviderName).Logger(),
	}, nil
}

// parseHost parses a host string into a URL, defaulting the scheme to http.
func parseHost(host string) (*url.URL, error) {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return url.Parse(host)
}

// DefaultModel implements ai.Provider.
func (c *Client) DefaultModel() string {
	return c.defaultModel
}

// SupportedModels implements ai.Provider. Ollama serves whatever models are
// pulled locally, so only the configured default is reported.
func (c *Client) SupportedModels() []string {
	return []string{c.defaultModel}
}

// Generate implements ai.Provider.Generate.
func (c *Client) Generate(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	messages := make([]api.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		// Ollama accepts the system role inline, in order.
		messages = append(messages, api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	options := make(map[string]any, len(req.Extra)+2)
	for key, value := range req.Extra {
		options[key] = value
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if req.Temperature != nil {
		options["temperature"] = *req.Temperature
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &stream,
		Options:  options,
	}

	// With streaming disabled the callback fires once, but fragments are
	// concatenated in order either way.
	var content string
	var resp ai.Response
	err := c.client.Chat(ctx, chatReq, func(r api.ChatResponse) error {
		content += r.Message.Content
		if r.Done {
			resp.Model = r.Model
			resp.Usage = ai.Usage{
				PromptTokens:     r.Metrics.PromptEvalCount,
				CompletionTokens: r.Metrics.EvalCount,
			}
			resp.Usage.TotalTokens = resp.Usage.PromptTokens + resp.Usage.CompletionTokens
			resp.Raw = r
		}
		return nil
	})
	if err != nil {
		return nil, c.translateError(err, model)
	}

	resp.Content = content
	if resp.Model == "" {
		resp.Model = model
	}
	return &resp, nil
}

// GenerateSync implements ai.Provider.GenerateSync.
func (c *Client) GenerateSync(req *ai.Request) (*ai.Response, error) {
	return c.Generate(context.Background(), req)
}

// translateError maps an Ollama API error onto the gateway taxonomy.
func (c *Client) translateError(err error, model string) error {
	var statusErr api.StatusError
	if !errors.As(err, &statusErr) {
		return ai.NewProviderError(ProviderName, "unexpected error", 0, err)
	}
	return classifyStatus(statusErr.StatusCode, statusErr.ErrorMessage, model, err, c.defaultModel)
}

// classifyStatus mirrors the table used by the other adapters.
func classifyStatus(status int, body, model string, err error, defaultModel string) error {
	lower := strings.ToLower(body)
	switch status {
	case 429:
		return ai.NewRateLimitError(ProviderName, "rate limit exceeded", status, err)
	case 401, 403:
		return ai.NewAuthenticationError(ProviderName, "authentication failed", status, err)
	case 404:
		if strings.Contains(lower, "model") {
			return ai.NewModelNotFoundError(ProviderName, model, []string{defaultModel}, status, err)
		}
		return ai.NewProviderError(ProviderName, "not found", status, err)
	case 400:
		if strings.Contains(lower, "quota") || strings.Contains(lower, "limit") {
			return ai.NewQuotaExceededError(ProviderName, "quota exceeded", status, err)
		}
		return ai.NewProviderError(ProviderName, "bad request", status, err)
	default:
		return ai.NewProviderError(ProviderName, "api error", status, err)
	}
}

var _ ai.Provider = (*Client)(nil)
