package filter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/phishscope/internal/core"
	"go.uber.org/zap"
)

// CliFilter implements a command-line frontend for phishing analysis
type CliFilter struct {
	service *core.AnalyzerService
	logger  *zap.Logger
	verbose bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(service *core.AnalyzerService, logger *zap.Logger, verbose bool) (*CliFilter, error) {
	return &CliFilter{
		service: service,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// ProcessEmail analyzes an email and displays the unified verdict
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.UnifiedResult, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.From)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.Body))
	fmt.Printf("URLs found: %d\n", len(email.URLs))

	if f.verbose {
		preview := email.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
		for _, u := range email.URLs {
			fmt.Printf("URL: %s\n", u)
		}
	}

	fmt.Printf("\n=== Analysis ===\n")
	fmt.Printf("Running text and URL agents...\n")
	startTime := time.Now()
	result, err := f.service.AnalyzeEmail(ctx, email)
	if result == nil && err != nil {
		f.logger.Error("Failed to analyze email", zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	if err != nil {
		// Text-only verdict; the URL agent failed.
		fmt.Printf("Warning: %v (verdict is text-only)\n", err)
	}

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Verdict: %s\n", result.Verdict)
	fmt.Printf("Confidence: %.2f\n", result.Confidence)
	fmt.Printf("Agents used: text=%t url=%t\n", result.AgentsUsed[core.ViewText], result.AgentsUsed[core.ViewURL])
	if len(result.PhishingIndicators) > 0 {
		fmt.Printf("Phishing indicators: %s\n", strings.Join(result.PhishingIndicators, ", "))
	}
	if len(result.LegitimacyIndicators) > 0 {
		fmt.Printf("Legitimacy indicators: %s\n", strings.Join(result.LegitimacyIndicators, ", "))
	}
	fmt.Printf("Rationale: %s\n", result.OverallRationale)
	if result.SafetyNotes != "" {
		fmt.Printf("Safety notes: %s\n", result.SafetyNotes)
	}
	fmt.Printf("Processing time: %v\n", duration)

	return result, err
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
