package filter

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mikey/phishscope/internal/core"
	"github.com/mikey/phishscope/internal/utils"
	"github.com/mikey/phishscope/internal/whitelist"
)

// HTTPFilter exposes the analyzer as a JSON API.
type HTTPFilter struct {
	service       *core.AnalyzerService
	logger        *zap.Logger
	listenAddr    string
	server        *http.Server
	whitelist     *whitelist.Checker
	textProcessor *utils.TextProcessor
	maxBodySize   int
}

// AnalyzeRequest is the POST /v1/analyze request body. URLs are optional;
// when absent they are extracted from the body text.
type AnalyzeRequest struct {
	From    string   `json:"from"`
	Subject string   `json:"subject"`
	Body    string   `json:"body" binding:"required"`
	URLs    []string `json:"urls"`
}

// NewHTTPFilter creates a new HTTP API frontend
func NewHTTPFilter(
	service *core.AnalyzerService,
	logger *zap.Logger,
	listenAddr string,
	wl *whitelist.Checker,
	textProcessor *utils.TextProcessor,
	maxBodySize int,
) *HTTPFilter {
	return &HTTPFilter{
		service:       service,
		logger:        logger,
		listenAddr:    listenAddr,
		whitelist:     wl,
		textProcessor: textProcessor,
		maxBodySize:   maxBodySize,
	}
}

// ProcessEmail analyzes an email directly, bypassing the HTTP layer. Used
// for testing and internal calls.
func (f *HTTPFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.UnifiedResult, error) {
	return f.service.AnalyzeEmail(ctx, email)
}

// Start starts the HTTP server
func (f *HTTPFilter) Start() error {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/v1/analyze", f.handleAnalyze)

	f.server = &http.Server{
		Addr:         f.listenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	f.logger.Info("HTTP filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts down the HTTP server
func (f *HTTPFilter) Stop() error {
	if f.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return f.server.Shutdown(ctx)
}

func (f *HTTPFilter) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if f.whitelist != nil && f.whitelist.IsWhitelisted(req.From) {
		c.JSON(http.StatusOK, gin.H{"result": &core.UnifiedResult{
			Task:       "email_phishing_detection",
			Verdict:    core.VerdictLegitimate,
			Confidence: 1.0,
			AgentsUsed: map[string]bool{
				core.ViewText: false,
				core.ViewURL:  false,
			},
			OverallRationale: "Sender domain is whitelisted; analysis skipped",
		}})
		return
	}

	urls := req.URLs
	if urls == nil {
		urls = utils.ExtractURLs(req.Subject + "\n\n" + req.Body)
	}

	email := &core.Email{
		From:    req.From,
		Subject: req.Subject,
		Body:    f.textProcessor.ProcessText(req.Body, f.maxBodySize),
		URLs:    urls,
	}

	result, err := f.service.AnalyzeEmail(c.Request.Context(), email)
	if result == nil && err != nil {
		f.logger.Error("Analysis failed",
			zap.String("from", req.From),
			zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrBackendUnavailable) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if err != nil {
		// A failed URL agent still yields a text-only verdict; surface both.
		c.JSON(http.StatusOK, gin.H{
			"result":  result,
			"warning": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
