// Package anthropic implements the ai.Provider interface for Anthropic's
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/gatsby003/alain-bot/ai"
)

const (
	// ProviderName identifies this adapter in errors and logs.
	ProviderName = ai.ProviderAnthropic

	defaultModel     = "claude-3-5-haiku-20241022"
	defaultMaxTokens = 1024
)

// supportedModels is used in error messages only, never enforced at request
// time.
var supportedModels = []string{
	"claude-sonnet-4-20250514",
	"claude-3-5-sonnet-20241022",
	"claude-3-5-haiku-20241022",
	"claude-3-opus-20240229",
	"claude-3-sonnet-20240229",
	"claude-3-haiku-20240307",
}

// Client implements the ai.Provider interface for Anthropic's API.
// It holds only immutable configuration plus the SDK client handle, so it is
// safe to share across concurrent calls.
type Client struct {
	client       *anthropic.Client
	defaultModel string
	logger       zerolog.Logger
}

// NewClient creates a new Anthropic Client. The API key comes from the
// settings or falls back to ANTHROPIC_API_KEY; a missing key is a
// configuration error raised here, not at call time.
func NewClient(cfg ai.ProviderSettings, logger zerolog.Logger) (*Client, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("ANTHROPIC_API_KEY")
	}
	if key == "" {
		return nil, ai.NewConfigurationError(ProviderName, "api key is required: set ANTHROPIC_API_KEY or pass APIKey")
	}

	// The SDK retries 429s internally by default; retrying is the job of
	// ai.Policy, so it is disabled here.
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}

	client := anthropic.NewClient(opts...)
	return &Client{
		client:       &client,
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
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	system, turns, dropped := splitSystem(req.Messages)
	if dropped > 0 {
		c.logger.Debug().Int("dropped", dropped).Msg("Dropped extra system messages beyond the first")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  toMessageParams(turns),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}

	// Escape hatch: unvalidated options are injected into the request body
	// verbatim and left for the backend to accept or reject.
	var reqOpts []option.RequestOption
	for key, value := range req.Extra {
		reqOpts = append(reqOpts, option.WithJSONSet(key, value))
	}

	message, err := c.client.Messages.New(ctx, params, reqOpts...)
	if err != nil {
		return nil, c.translateError(err, model)
	}

	return &ai.Response{
		Content: collectText(message.Content),
		Model:   string(message.Model),
		Usage:   usageFrom(message),
		Raw:     message,
	}, nil
}

// GenerateSync implements ai.Provider.GenerateSync.
func (c *Client) GenerateSync(req *ai.Request) (*ai.Response, error) {
	return c.Generate(context.Background(), req)
}

// translateError maps an SDK error onto the gateway taxonomy. The mapping is
// the adapter's primary contract: every backend failure must land on exactly
// one kind, with the original error preserved for diagnostics.
func (c *Client) translateError(err error, model string) error {
	var apierr *anthropic.Error
	if !errors.As(err, &apierr) {
		return ai.NewProviderError(ProviderName, "unexpected error", 0, err)
	}
	return classifyStatus(apierr.StatusCode, apierr.Error(), model, err)
}

// classifyStatus maps an HTTP status plus response wording onto the
// taxonomy:
//
//	429                      -> RateLimited
//	401, 403                 -> AuthenticationFailed
//	404 mentioning "model"   -> ModelNotFound (with the supported list)
//	404 otherwise            -> ProviderError
//	400 with quota wording   -> QuotaExceeded
//	400 otherwise            -> ProviderError
//	anything else            -> ProviderError
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
