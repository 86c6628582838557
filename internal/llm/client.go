package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"bizdash/internal/config"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

var (
	ErrNotConfigured = errors.New("llm is not configured")
	ErrEmptyResponse = errors.New("llm returned empty response")
)

type Client struct {
	client  *openrouter.Client
	model   string
	logger  *zap.Logger
	enabled bool
}

func NewClient(cfg config.Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("llm")
	model := strings.TrimSpace(cfg.LLMModel)
	apiKey := strings.TrimSpace(cfg.LLMAPIKey)

	if model == "" || apiKey == "" {
		logger.Info("LLM config is incomplete; insights will use built-in rules",
			zap.Bool("has_model", model != ""),
			zap.Bool("has_api_key", apiKey != ""),
		)
		return &Client{
			model:  model,
			logger: logger,
		}, nil
	}

	cfgClient := openrouter.DefaultConfig(apiKey)
	if strings.TrimSpace(cfg.LLMBaseURL) != "" {
		cfgClient.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.LLMBaseURL), "/")
	}
	cfgClient.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		client:  openrouter.NewClientWithConfig(*cfgClient),
		model:   model,
		logger:  logger,
		enabled: true,
	}, nil
}

func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// ChatWithMessages sends one completion request. The first choice's
// message is returned; usage is logged when the provider reports it.
func (c *Client) ChatWithMessages(ctx context.Context, messages []openrouter.ChatCompletionMessage, tools []openrouter.Tool) (openrouter.ChatCompletionMessage, error) {
	if c == nil || !c.enabled || c.client == nil {
		return openrouter.ChatCompletionMessage{}, ErrNotConfigured
	}

	request := openrouter.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return openrouter.ChatCompletionMessage{}, err
	}
	c.logUsage(resp)
	if len(resp.Choices) == 0 {
		return openrouter.ChatCompletionMessage{}, ErrEmptyResponse
	}

	msg := resp.Choices[0].Message
	c.logger.Debug("llm response",
		zap.String("content", msg.Content.Text),
		zap.Int("tool_calls", len(msg.ToolCalls)),
	)
	return msg, nil
}

func (c *Client) logUsage(resp openrouter.ChatCompletionResponse) {
	if resp.Usage == nil {
		return
	}
	c.logger.Info("llm usage",
		zap.String("model", c.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Float64("cost", resp.Usage.Cost),
	)
}
