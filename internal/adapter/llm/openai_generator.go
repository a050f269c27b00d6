package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
)

// OpenAIGenerator runs chat completions against the OpenAI API (or any
// compatible endpoint configured through the client).
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
}

func NewOpenAIGenerator(client *openai.Client, model string, limiter *rate.Limiter) *OpenAIGenerator {
	return &OpenAIGenerator{client: client, model: model, limiter: limiter}
}

func (g *OpenAIGenerator) Complete(ctx context.Context, messages []domain.Message, opts domain.CompleteOptions) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    chatMessages,
		Temperature: opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil && isUnsupportedParam(err) {
		// newer reasoning models reject sampling params; retry bare
		req.Temperature = 0
		req.MaxTokens = 0
		resp, err = g.client.CreateChatCompletion(ctx, req)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (g *OpenAIGenerator) Version() string {
	return g.model
}

// isUnsupportedParam detects the API error for models that refuse
// temperature or max_tokens.
func isUnsupportedParam(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok && code == "unsupported_parameter" {
			return true
		}
		return strings.Contains(apiErr.Message, "unsupported") ||
			strings.Contains(apiErr.Message, "does not support")
	}
	return false
}

var _ domain.LLMClient = (*OpenAIGenerator)(nil)
