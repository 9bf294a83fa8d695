package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// routingBackend replies per view by sniffing the instruction text, so one
// fake serves both agents.
type routingBackend struct {
	mu           sync.Mutex
	textResponse string
	textErr      error
	urlResponse  string
	urlErr       error
	textCalls    int
	urlCalls     int
}

func (b *routingBackend) Invoke(ctx context.Context, instruction, input string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if strings.Contains(instruction, "URL AGENT") {
		b.urlCalls++
		if b.urlErr != nil {
			return "", b.urlErr
		}
		return b.urlResponse, nil
	}
	b.textCalls++
	if b.textErr != nil {
		return "", b.textErr
	}
	return b.textResponse, nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	results []*UnifiedResult
	err     error
}

func (p *recordingPublisher) Publish(ctx context.Context, email *Email, result *UnifiedResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, result)
	return p.err
}

func newTestService(t *testing.T, backend Backend, publisher VerdictPublisher) *AnalyzerService {
	t.Helper()
	textAgent, err := NewTextAgent(backend, zap.NewNop())
	require.NoError(t, err)
	urlAgent, err := NewURLAgent(backend, zap.NewNop())
	require.NoError(t, err)
	return NewAnalyzerService(textAgent, urlAgent, publisher, zap.NewNop())
}

func TestAnalyzeEmailBothAgents(t *testing.T) {
	backend := &routingBackend{
		textResponse: `{"verdict": "phishing", "confidence": 0.9, "phishing_indicators": ["urgency"]}`,
		urlResponse:  `{"verdict": "phishing", "confidence": 0.8, "urls_analyzed": 1}`,
	}
	svc := newTestService(t, backend, nil)

	result, err := svc.AnalyzeEmail(context.Background(), &Email{
		Subject: "Verify now",
		Body:    "Login at http://evil.test/login today",
		URLs:    []string{"http://evil.test/login"},
	})
	require.NoError(t, err)
	assert.Equal(t, VerdictPhishing, result.Verdict)
	assert.True(t, result.AgentsUsed[ViewURL])
	assert.Equal(t, 1, backend.textCalls)
	assert.Equal(t, 1, backend.urlCalls)
}

func TestAnalyzeEmailSkipsURLAgentWithoutURLs(t *testing.T) {
	backend := &routingBackend{
		textResponse: `{"verdict": "legitimate", "confidence": 0.85}`,
	}
	svc := newTestService(t, backend, nil)

	result, err := svc.AnalyzeEmail(context.Background(), &Email{
		Subject: "lunch?",
		Body:    "want to grab lunch tomorrow",
	})
	require.NoError(t, err)
	assert.Equal(t, VerdictLegitimate, result.Verdict)
	assert.False(t, result.AgentsUsed[ViewURL])
	assert.Nil(t, result.URLAgentResult)
	assert.Equal(t, 0, backend.urlCalls)
}

func TestAnalyzeEmailTextFailureAborts(t *testing.T) {
	backend := &routingBackend{
		textErr:     fmt.Errorf("%w: connection refused", ErrBackendUnavailable),
		urlResponse: `{"verdict": "phishing", "confidence": 0.8}`,
	}
	svc := newTestService(t, backend, nil)

	result, err := svc.AnalyzeEmail(context.Background(), &Email{
		Subject: "x",
		Body:    "y",
		URLs:    []string{"http://evil.test"},
	})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	var agentErr *AgentError
	require.True(t, errors.As(err, &agentErr))
	assert.Equal(t, ViewText, agentErr.View)
}

func TestAnalyzeEmailURLFailureReturnsPartial(t *testing.T) {
	backend := &routingBackend{
		textResponse: `{"verdict": "phishing", "confidence": 0.9}`,
		urlErr:       fmt.Errorf("%w: timeout", ErrBackendUnavailable),
	}
	svc := newTestService(t, backend, nil)

	result, err := svc.AnalyzeEmail(context.Background(), &Email{
		Subject: "x",
		Body:    "y",
		URLs:    []string{"http://evil.test"},
	})

	// Both the partial result and the url failure come back.
	require.Error(t, err)
	require.NotNil(t, result)

	var agentErr *AgentError
	require.True(t, errors.As(err, &agentErr))
	assert.Equal(t, ViewURL, agentErr.View)

	assert.Equal(t, VerdictPhishing, result.Verdict)
	assert.False(t, result.AgentsUsed[ViewURL])
	assert.Nil(t, result.URLAgentResult)
}

func TestAnalyzeEmailCanceledURLFailureSurfaces(t *testing.T) {
	backend := &routingBackend{
		textResponse: `{"verdict": "phishing", "confidence": 0.9}`,
		urlErr:       fmt.Errorf("request aborted: %w", context.Canceled),
	}
	svc := newTestService(t, backend, nil)

	result, err := svc.AnalyzeEmail(context.Background(), &Email{
		Subject: "x",
		Body:    "y",
		URLs:    []string{"http://evil.test"},
	})

	// The cancellation came from the url call itself, so it must be
	// reported alongside the text-only verdict, never dropped.
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)

	var agentErr *AgentError
	require.True(t, errors.As(err, &agentErr))
	assert.Equal(t, ViewURL, agentErr.View)
	assert.False(t, result.AgentsUsed[ViewURL])
}

func TestAnalyzeEmailPublishesVerdict(t *testing.T) {
	backend := &routingBackend{
		textResponse: `{"verdict": "legitimate", "confidence": 0.8}`,
	}
	publisher := &recordingPublisher{}
	svc := newTestService(t, backend, publisher)

	result, err := svc.AnalyzeEmail(context.Background(), &Email{Subject: "x", Body: "y"})
	require.NoError(t, err)
	require.Len(t, publisher.results, 1)
	assert.Equal(t, result, publisher.results[0])
}

func TestAnalyzeEmailPublishFailureIsNonFatal(t *testing.T) {
	backend := &routingBackend{
		textResponse: `{"verdict": "legitimate", "confidence": 0.8}`,
	}
	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestService(t, backend, publisher)

	result, err := svc.AnalyzeEmail(context.Background(), &Email{Subject: "x", Body: "y"})
	require.NoError(t, err)
	assert.Equal(t, VerdictLegitimate, result.Verdict)
}
