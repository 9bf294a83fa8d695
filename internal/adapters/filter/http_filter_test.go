package filter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phishscope/internal/core"
	"github.com/mikey/phishscope/internal/utils"
	"github.com/mikey/phishscope/internal/whitelist"
)

type stubBackend struct {
	mu           sync.Mutex
	textResponse string
	urlResponse  string
	err          error
	urlCalls     int
}

func (b *stubBackend) Invoke(ctx context.Context, instruction, input string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return "", b.err
	}
	if strings.Contains(instruction, "URL AGENT") {
		b.urlCalls++
		return b.urlResponse, nil
	}
	return b.textResponse, nil
}

func newTestFilter(t *testing.T, backend core.Backend, domains []string) *HTTPFilter {
	t.Helper()
	logger := zap.NewNop()
	textAgent, err := core.NewTextAgent(backend, logger)
	require.NoError(t, err)
	urlAgent, err := core.NewURLAgent(backend, logger)
	require.NoError(t, err)
	service := core.NewAnalyzerService(textAgent, urlAgent, nil, logger)
	return NewHTTPFilter(service, logger, "127.0.0.1:0",
		whitelist.NewChecker(domains, logger), utils.NewTextProcessor(logger), 4096)
}

func newTestRouter(f *HTTPFilter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/v1/analyze", f.handleAnalyze)
	return router
}

func postAnalyze(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleAnalyze(t *testing.T) {
	backend := &stubBackend{
		textResponse: `{"verdict": "phishing", "confidence": 0.9, "phishing_indicators": ["urgency"]}`,
		urlResponse:  `{"verdict": "phishing", "confidence": 0.8, "urls_analyzed": 1}`,
	}
	router := newTestRouter(newTestFilter(t, backend, nil))

	w := postAnalyze(t, router, `{
		"from": "support@evil.test",
		"subject": "Verify now",
		"body": "Login at http://evil.test/login today"
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Result core.UnifiedResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, core.VerdictPhishing, resp.Result.Verdict)
	assert.True(t, resp.Result.AgentsUsed[core.ViewURL])
	// URLs were extracted from the body text.
	assert.Equal(t, 1, backend.urlCalls)
}

func TestHandleAnalyzeMissingBody(t *testing.T) {
	router := newTestRouter(newTestFilter(t, &stubBackend{}, nil))
	w := postAnalyze(t, router, `{"from": "a@b.test", "subject": "no body"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAnalyzeWhitelistedSender(t *testing.T) {
	backend := &stubBackend{}
	router := newTestRouter(newTestFilter(t, backend, []string{"trusted.org"}))

	w := postAnalyze(t, router, `{"from": "alice@trusted.org", "body": "hi"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// Same envelope as an analyzed email, so callers decode one shape.
	var resp struct {
		Result core.UnifiedResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, core.VerdictLegitimate, resp.Result.Verdict)
	assert.Equal(t, 1.0, resp.Result.Confidence)
	assert.False(t, resp.Result.AgentsUsed[core.ViewText])
	assert.False(t, resp.Result.AgentsUsed[core.ViewURL])
	assert.Equal(t, 0, backend.urlCalls)
}

func TestHandleAnalyzeBackendUnavailable(t *testing.T) {
	backend := &stubBackend{err: core.ErrBackendUnavailable}
	router := newTestRouter(newTestFilter(t, backend, nil))

	w := postAnalyze(t, router, `{"from": "a@b.test", "body": "hello"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
