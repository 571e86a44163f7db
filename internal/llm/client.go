// ABOUTME: Adapter over the OpenAI chat completions API
// ABOUTME: One prompt in, one reply out; retry policy belongs to the caller

package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/2389/parley/internal/prompt"
	"github.com/2389/parley/internal/store"
)

// Generator is the completion contract the pipeline depends on.
type Generator interface {
	Complete(ctx context.Context, messages []prompt.Message, settings store.Settings) (string, error)
}

// Client calls the OpenAI chat completions endpoint. It applies the
// conversation's model, temperature and max-token settings verbatim and
// never substitutes a different model. Calls are safe to retry from the
// caller's perspective, but Client itself performs no retries.
type Client struct {
	api    openai.Client
	logger *slog.Logger
}

// Options configures a Client.
type Options struct {
	APIKey  string
	BaseURL string // optional, for OpenAI-compatible endpoints
}

// NewClient creates an OpenAI-backed generator. Pass nil logger for default.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &Client{
		api:    openai.NewClient(reqOpts...),
		logger: logger.With("component", "llm"),
	}
}

// Complete sends the assembled prompt and returns the generated text, or a
// *Failure describing why nothing came back. Timeouts are imposed by the
// caller through ctx and surface as KindTimeout.
func (c *Client) Complete(ctx context.Context, messages []prompt.Message, settings store.Settings) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(settings.Model),
		Messages: toOpenAIMessages(messages),
	}
	if settings.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(settings.MaxTokens))
	}
	params.Temperature = openai.Float(settings.Temperature)

	started := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", Classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", &Failure{Kind: KindInvalidResponse}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &Failure{Kind: KindInvalidResponse}
	}

	c.logger.Debug("completion finished",
		"model", settings.Model,
		"prompt_messages", len(messages),
		"duration", time.Since(started))
	return text, nil
}

func toOpenAIMessages(messages []prompt.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case prompt.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case prompt.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
