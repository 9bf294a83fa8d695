package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mikey/phishscope/internal/core"
	"go.uber.org/zap"
)

// OllamaClient is an implementation of the core.Backend interface talking to
// a local Ollama server over its chat endpoint.
type OllamaClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
	logger     *zap.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// NewOllamaClient creates a new Ollama backend client. timeout bounds each
// round trip; expiry surfaces as a backend-unavailable failure.
func NewOllamaClient(baseURL, model string, timeout time.Duration, logger *zap.Logger) *OllamaClient {
	return &OllamaClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		model:      model,
		logger:     logger,
	}
}

// Invoke sends the instruction and input as an ordered system/user pair and
// returns the raw text of the model's reply.
func (c *OllamaClient) Invoke(ctx context.Context, instruction, input string) (string, error) {
	if instruction == "" {
		return "", fmt.Errorf("instruction must not be empty")
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: instruction},
			{Role: "user", Content: input},
		},
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: ollama returned status %d: %s",
			core.ErrBackendUnavailable, resp.StatusCode, body)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode ollama response: %v",
			core.ErrBackendUnavailable, err)
	}

	c.logger.Debug("Ollama response received",
		zap.String("model", c.model),
		zap.Int("content_length", len(chatResp.Message.Content)))

	return chatResp.Message.Content, nil
}
