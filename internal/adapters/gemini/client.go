package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/phishscope/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient is an implementation of the core.Backend interface using
// Google Gemini.
type GeminiClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewGeminiClient creates a new Gemini backend client
func NewGeminiClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	timeout time.Duration,
	logger *zap.Logger,
) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClient{
		client:    client,
		model:     model,
		modelName: modelName,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Invoke sends the instruction and input to Gemini and returns the raw text
// of the first candidate. Gemini has no separate system role on this API
// surface, so the instruction is carried as a system instruction on the
// model and the input as the user content.
func (c *GeminiClient) Invoke(ctx context.Context, instruction, input string) (string, error) {
	if instruction == "" {
		return "", fmt.Errorf("instruction must not be empty")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// Concurrent calls share this client, so the instruction goes on a
	// per-call copy of the model, never the shared one.
	model := *c.model
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(instruction)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(input))
	if err != nil {
		return "", fmt.Errorf("%w: gemini generation failed: %v",
			core.ErrBackendUnavailable, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response from Gemini", core.ErrBackendUnavailable)
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	c.logger.Debug("Gemini response received",
		zap.String("model", c.modelName),
		zap.Int("content_length", len(responseText)))

	return responseText, nil
}
