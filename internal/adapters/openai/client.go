package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/mikey/phishscope/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient is an implementation of the core.Backend interface using
// the OpenAI chat completion API.
type OpenAIClient struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
	topP        float32
	timeout     time.Duration
	logger      *zap.Logger
}

// NewOpenAIClient creates a new OpenAI backend client
func NewOpenAIClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	timeout time.Duration,
	logger *zap.Logger,
) *OpenAIClient {
	return &OpenAIClient{
		client:      client,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		topP:        topP,
		timeout:     timeout,
		logger:      logger,
	}
}

// Invoke sends the instruction as the system message and the input as the
// user message, returning the raw completion text.
func (c *OpenAIClient) Invoke(ctx context.Context, instruction, input string) (string, error) {
	if instruction == "" {
		return "", fmt.Errorf("instruction must not be empty")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: instruction,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: input,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: openai chat completion failed: %v",
			core.ErrBackendUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response from OpenAI", core.ErrBackendUnavailable)
	}

	c.logger.Debug("OpenAI response received",
		zap.String("model", c.modelName),
		zap.String("id", resp.ID))

	return resp.Choices[0].Message.Content, nil
}
