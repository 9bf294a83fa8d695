package core

import (
	"fmt"
	"math"
)

// Merge policy constants. The weighting encodes the operator's prior trust
// in text evidence over URL evidence; it is fixed, not per-call
// configuration.
const (
	textWeight = 0.6
	urlWeight  = 0.4

	phishingThreshold   = 0.7
	legitimateThreshold = 0.3
)

// verdictScore maps a verdict to its numeric contribution.
func verdictScore(v Verdict) float64 {
	switch v {
	case VerdictPhishing:
		return 1.0
	case VerdictLegitimate:
		return 0.0
	default:
		return 0.5
	}
}

// Merge reconciles the agents' partial verdicts into one unified result.
// urlResult is nil when the evidence carried no URLs. Merge is a pure
// function of its inputs: calling it twice with identical results yields
// identical output.
func Merge(textResult *AgentResult, urlResult *AgentResult) *UnifiedResult {
	textScore := verdictScore(textResult.Verdict)
	textConfidence := textResult.Confidence

	var combinedScore, combinedConfidence float64
	urlsAnalyzed := false

	if urlResult != nil {
		urlScore := verdictScore(urlResult.Verdict)
		urlConfidence := urlResult.Confidence

		combinedScore = textScore*textWeight*textConfidence + urlScore*urlWeight*urlConfidence
		combinedConfidence = textConfidence*textWeight + urlConfidence*urlWeight
		urlsAnalyzed = true
	} else {
		combinedScore = textScore * textConfidence
		combinedConfidence = textConfidence
	}

	// Threshold on the unrounded score; only the reported confidence is
	// rounded.
	var finalVerdict Verdict
	switch {
	case combinedScore >= phishingThreshold:
		finalVerdict = VerdictPhishing
	case combinedScore <= legitimateThreshold:
		finalVerdict = VerdictLegitimate
	default:
		finalVerdict = VerdictUnsure
	}

	phishingIndicators := append([]string(nil), textResult.PhishingIndicators...)
	if urlResult != nil {
		for _, detail := range urlResult.URLDetails {
			phishingIndicators = append(phishingIndicators, detail.Indicators...)
		}
	}

	return &UnifiedResult{
		Task:                 "email_phishing_detection",
		Verdict:              finalVerdict,
		Confidence:           roundConfidence(combinedConfidence),
		PhishingIndicators:   dedupeIndicators(phishingIndicators),
		LegitimacyIndicators: append([]string(nil), textResult.LegitimacyIndicators...),
		AgentsUsed: map[string]bool{
			ViewText: true,
			ViewURL:  urlsAnalyzed,
		},
		TextAgentResult:  textResult,
		URLAgentResult:   urlResult,
		OverallRationale: buildRationale(textResult, urlResult),
		SafetyNotes:      textResult.SafetyNotes,
	}
}

// roundConfidence reports confidence to two decimal places.
func roundConfidence(c float64) float64 {
	return math.Round(c*100) / 100
}

// dedupeIndicators collapses duplicate tags while preserving first-occurrence
// order, keeping merge output deterministic.
func dedupeIndicators(indicators []string) []string {
	seen := make(map[string]struct{}, len(indicators))
	out := make([]string, 0, len(indicators))
	for _, tag := range indicators {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// buildRationale concatenates each agent's own rationale under a labeled
// section. When URL analysis did not run, that is stated explicitly.
func buildRationale(textResult *AgentResult, urlResult *AgentResult) string {
	if urlResult != nil {
		return fmt.Sprintf("Text analysis: %s\n\nURL analysis: %s",
			textResult.OverallRationale, urlResult.OverallRationale)
	}
	return fmt.Sprintf("Based on text analysis: %s", textResult.OverallRationale)
}
