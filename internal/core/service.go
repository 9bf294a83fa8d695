package core

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// VerdictPublisher receives unified verdicts after a successful analysis.
// Publishing is best-effort and never alters the verdict.
type VerdictPublisher interface {
	Publish(ctx context.Context, email *Email, result *UnifiedResult) error
}

// AnalyzerService orchestrates the per-view agents and merges their partial
// verdicts. Each analysis request is fully self-contained; the service holds
// no per-request state.
type AnalyzerService struct {
	textAgent *Agent
	urlAgent  *Agent
	publisher VerdictPublisher
	logger    *zap.Logger
}

// NewAnalyzerService creates a new analyzer service. publisher may be nil.
func NewAnalyzerService(
	textAgent *Agent,
	urlAgent *Agent,
	publisher VerdictPublisher,
	logger *zap.Logger,
) *AnalyzerService {
	return &AnalyzerService{
		textAgent: textAgent,
		urlAgent:  urlAgent,
		publisher: publisher,
		logger:    logger,
	}
}

// AnalyzeEmail runs the applicable agents over the evidence and merges their
// verdicts. The two agent calls are independent and read-only over the
// email, so they run concurrently; merging starts only once both completion
// states are known.
//
// Failure policy is asymmetric: a text-agent failure aborts the whole
// analysis (there is no URL-only scoring path), while a URL-agent failure
// returns the text-only unified result together with the url AgentError so
// the caller decides whether the partial verdict is acceptable. No failure
// is ever replaced with a guessed verdict.
func (s *AnalyzerService) AnalyzeEmail(ctx context.Context, email *Email) (*UnifiedResult, error) {
	var (
		textResult *AgentResult
		urlResult  *AgentResult
		urlErr     error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result, err := s.textAgent.Analyze(gctx, email)
		if err != nil {
			return &AgentError{View: ViewText, Err: err}
		}
		textResult = result
		return nil
	})

	if len(email.URLs) > 0 {
		g.Go(func() error {
			result, err := s.urlAgent.Analyze(gctx, email)
			if err != nil {
				urlErr = &AgentError{View: ViewURL, Err: err}
				return nil
			}
			urlResult = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("Text analysis failed, aborting",
			zap.String("subject", email.Subject),
			zap.Error(err))
		return nil, err
	}

	if urlErr != nil {
		s.logger.Warn("URL analysis failed, returning text-only verdict",
			zap.String("subject", email.Subject),
			zap.Error(urlErr))
		return Merge(textResult, nil), urlErr
	}

	unified := Merge(textResult, urlResult)

	s.logger.Info("Unified verdict",
		zap.String("verdict", string(unified.Verdict)),
		zap.Float64("confidence", unified.Confidence),
		zap.Bool("urls_analyzed", unified.AgentsUsed[ViewURL]))

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, email, unified); err != nil {
			s.logger.Error("Failed to publish verdict", zap.Error(err))
		}
	}

	return unified, nil
}
