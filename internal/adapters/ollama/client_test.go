package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phishscope/internal/core"
)

func TestInvoke(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: `{"verdict": "phishing"}`},
		})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama3", 5*time.Second, zap.NewNop())
	out, err := client.Invoke(context.Background(), "classify this", "Subject: hi")
	require.NoError(t, err)
	assert.Equal(t, `{"verdict": "phishing"}`, out)

	assert.Equal(t, "llama3", gotReq.Model)
	assert.False(t, gotReq.Stream)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "classify this", gotReq.Messages[0].Content)
	assert.Equal(t, "user", gotReq.Messages[1].Role)
	assert.Equal(t, "Subject: hi", gotReq.Messages[1].Content)
}

func TestInvokeEmptyInstruction(t *testing.T) {
	client := NewOllamaClient("http://127.0.0.1:1", "llama3", time.Second, zap.NewNop())
	_, err := client.Invoke(context.Background(), "", "input")
	assert.Error(t, err)
}

func TestInvokeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama3", time.Second, zap.NewNop())
	_, err := client.Invoke(context.Background(), "classify", "input")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrBackendUnavailable)
}

func TestInvokeUnreachableHost(t *testing.T) {
	client := NewOllamaClient("http://127.0.0.1:1", "llama3", time.Second, zap.NewNop())
	_, err := client.Invoke(context.Background(), "classify", "input")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrBackendUnavailable)
}
