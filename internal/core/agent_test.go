package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBackend records the last invocation and replies with a canned response
// or error.
type fakeBackend struct {
	response        string
	err             error
	lastInstruction string
	lastInput       string
	calls           int
}

func (f *fakeBackend) Invoke(ctx context.Context, instruction, input string) (string, error) {
	f.calls++
	f.lastInstruction = instruction
	f.lastInput = input
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestTextAgentAnalyze(t *testing.T) {
	backend := &fakeBackend{
		response: `The analysis follows: {"verdict": "phishing", "confidence": 0.9, "phishing_indicators": ["urgency"]}`,
	}
	agent, err := NewTextAgent(backend, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ViewText, agent.View())

	result, err := agent.Analyze(context.Background(), &Email{
		Subject: "Your account will be closed",
		Body:    "Click here immediately to verify your password.",
	})
	require.NoError(t, err)
	assert.Equal(t, VerdictPhishing, result.Verdict)
	assert.Equal(t, 0.9, result.Confidence)

	assert.Equal(t, 1, backend.calls)
	assert.Contains(t, backend.lastInput, "Subject: Your account will be closed")
	assert.Contains(t, backend.lastInput, "Click here immediately")
	assert.NotEmpty(t, backend.lastInstruction)
}

func TestURLAgentInputFormat(t *testing.T) {
	backend := &fakeBackend{
		response: `{"verdict": "phishing", "confidence": 0.8, "urls_analyzed": 2}`,
	}
	agent, err := NewURLAgent(backend, zap.NewNop())
	require.NoError(t, err)

	_, err = agent.Analyze(context.Background(), &Email{
		Subject: "hello",
		Body:    "ignored by the url view",
		URLs:    []string{"http://evil.test/login", "https://example.com"},
	})
	require.NoError(t, err)

	assert.Contains(t, backend.lastInput, "http://evil.test/login")
	assert.Contains(t, backend.lastInput, "https://example.com")
	assert.NotContains(t, backend.lastInput, "ignored by the url view")
}

func TestURLAgentNoURLsMarker(t *testing.T) {
	backend := &fakeBackend{
		response: `{"verdict": "legitimate", "confidence": 0.5, "urls_analyzed": 0}`,
	}
	agent, err := NewURLAgent(backend, zap.NewNop())
	require.NoError(t, err)

	_, err = agent.Analyze(context.Background(), &Email{Subject: "plain", Body: "no links here"})
	require.NoError(t, err)
	assert.Contains(t, backend.lastInput, "(no URLs provided)")
}

func TestAgentBackendFailure(t *testing.T) {
	backend := &fakeBackend{
		err: fmt.Errorf("%w: connection refused", ErrBackendUnavailable),
	}
	agent, err := NewTextAgent(backend, zap.NewNop())
	require.NoError(t, err)

	result, err := agent.Analyze(context.Background(), &Email{Subject: "x", Body: "y"})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestAgentMalformedOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "no json", response: "I am unable to comply."},
		{name: "invalid verdict", response: `{"verdict": "maybe", "confidence": 0.5}`},
		{name: "confidence out of range", response: `{"verdict": "phishing", "confidence": 7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{response: tt.response}
			agent, err := NewTextAgent(backend, zap.NewNop())
			require.NoError(t, err)

			result, err := agent.Analyze(context.Background(), &Email{Subject: "x", Body: "y"})
			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrMalformedOutput)
		})
	}
}

func TestAgentRetainsRawOutput(t *testing.T) {
	raw := "completely free-form refusal text"
	backend := &fakeBackend{response: raw}
	agent, err := NewTextAgent(backend, zap.NewNop())
	require.NoError(t, err)

	_, err = agent.Analyze(context.Background(), &Email{Subject: "x", Body: "y"})
	var malformed *MalformedOutputError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, raw, malformed.Raw)
}

func TestNewAgentRejectsEmptyInstruction(t *testing.T) {
	_, err := NewAgent(ViewText, "", func(*Email) string { return "" }, &fakeBackend{}, zap.NewNop())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "instruction"))
}
