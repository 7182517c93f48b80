// Package openai implements the ai.Provider interface for the OpenAI chat
// completions API.
package openai

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/gatsby003/alain-bot/ai"
)

const (
	// ProviderName identifies this adapter in errors and logs.
	ProviderName = ai.ProviderOpenAI

	defaultModel = openai.GPT4oMini
)

// supportedModels is used in error messages only, never enforced at request
// time.
var supportedModels = []string{
	openai.GPT4o,
	openai.GPT4oMini,
	openai.GPT4Turbo,
	openai.GPT3Dot5Turbo,
}

// Client implements the ai.Provider interface for OpenAI's API.
// Safe to share across concurrent calls: immutable configuration plus the
// SDK client handle, nothing more.
type Client struct {
	client       *openai.Client
	defaultModel string
	logger       zerolog.Logger
}

// NewClient creates a new OpenAI Client. The API key comes from the settings
// or falls back to OPENAI_API_KEY; a missing key is a configuration error
// raised here, not at call time.
func NewClient(cfg ai.ProviderSettings, logger zerolog.Logger) (*Client, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, ai.NewConfigurationError(ProviderName, "api key is required: set OPENAI_API_KEY or pass APIKey")
	}

	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Organization != "" {
		clientCfg.OrgID = cfg.Organization
	}

	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}

	return &Client{
		client:       openai.NewClientWithConfig(clientCfg),
		defaultModel: model,
		logger:       logger.With().Str("provider", ProviderName).Logger(),
	}, nil
}

// DefaultModel implements ai.Provider.
func (c *Client) DefaultModel() string {
	return c.defaultModel
}

// SupportedModels implements ai.Provider.
func (c *Client) SupportedModels() []string {
	models := make([]string, len(supportedModels))
	copy(models, supportedModels)
	return models
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

	chatReq := openai.ChatCompletionRequest{
		Model:    model,
		Messages: toChatMessages(req.Messages),
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}
	if req.Temperature != nil {
		chatReq.Temperature = float32(*req.Temperature)
	}
	c.applyExtra(&chatReq, req.Extra)

	chatResp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, c.translateError(err, model)
	}
	if len(chatResp.Choices) == 0 {
		return nil, ai.NewProviderError(ProviderName, "no choices in response", 0, nil)
	}

	return &ai.Response{
		Content: collectText(chatResp.Choices),
		Model:   chatResp.Model,
		Usage:   usageFrom(chatResp.Usage),
		Raw:     chatResp,
	}, nil
}

// GenerateSync implements ai.Provider.GenerateSync.
func (c *Client) GenerateSync(req *ai.Request) (*ai.Response, error) {
	return c.Generate(context.Background(), req)
}

// applyExtra maps recognized pass-through options onto the typed request.
// The SDK builds a typed body, so arbitrary keys cannot be injected; unknown
// keys are logged and skipped rather than rejected.
func (c *Client) applyExtra(chatReq *openai.ChatCompletionRequest, extra map[string]any) {
	for key, value := range extra {
		switch key {
		case "top_p":
			if v, ok := value.(float64); ok {
				chatReq.TopP = float32(v)
			}
		case "presence_penalty":
			if v, ok := value.(float64); ok {
				chatReq.PresencePenalty = float32(v)
			}
		case "frequency_penalty":
			if v, ok := value.(float64); ok {
				chatReq.FrequencyPenalty = float32(v)
			}
		case "user":
			if v, ok := value.(string); ok {
				chatReq.User = v
			}
		default:
			c.logger.Debug().Str("key", key).Msg("Ignoring unrecognized extra option")
		}
	}
}

// translateError maps an SDK error onto the gateway taxonomy.
func (c *Client) translateError(err error, model string) error {
	var apierr *openai.APIError
	if !errors.As(err, &apierr) {
		return ai.NewProviderError(ProviderName, "unexpected error", 0, err)
	}
	return classifyStatus(apierr.HTTPStatusCode, apierr.Message, model, err)
}

// classifyStatus maps an HTTP status plus response wording onto the
// taxonomy. The table mirrors the Anthropic adapter so both providers honor
// the same contract.
func classifyStatus(status int, body, model string, err error) error {
	lower := strings.ToLower(body)
	switch status {
	case 429:
		return ai.NewRateLimitError(ProviderName, "rate limit exceeded", status, err)
	case 401, 403:
		return ai.NewAuthenticationError(ProviderName, "authentication failed", status, err)
	case 404:
		if strings.Contains(lower, "model") {
			return ai.NewModelNotFoundError(ProviderName, model, supportedModels, status, err)
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
