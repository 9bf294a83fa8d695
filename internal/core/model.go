package core

// Verdict is the classification an agent (or the unified analysis) assigns
// to an email.
type Verdict string

const (
	VerdictPhishing   Verdict = "phishing"
	VerdictLegitimate Verdict = "legitimate"
	VerdictUnsure     Verdict = "unsure"
)

// Valid reports whether v is one of the three known verdicts.
func (v Verdict) Valid() bool {
	switch v {
	case VerdictPhishing, VerdictLegitimate, VerdictUnsure:
		return true
	}
	return false
}

// Agent view names. Each agent reasons over exactly one slice of the email.
const (
	ViewText = "text"
	ViewURL  = "url"
)

// Email represents the evidence for one analysis request. It is built once
// by the caller and never mutated by the pipeline.
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	URLs    []string
	Headers map[string][]string
}

// TextEvidence is one quoted excerpt backing a text-agent indicator.
type TextEvidence struct {
	Indicator   string `json:"indicator"`
	TextQuote   string `json:"text_quote"`
	Explanation string `json:"explanation"`
}

// URLDetail is the URL agent's per-URL assessment.
type URLDetail struct {
	URL         string   `json:"url"`
	Domain      string   `json:"domain"`
	IsHTTPS     bool     `json:"is_https"`
	RiskLevel   string   `json:"risk_level"`
	Indicators  []string `json:"indicators"`
	Explanation string   `json:"explanation"`
}

// AgentResult is the validated verdict produced by a single agent. Field
// values are taken as-is from the backend once they pass schema validation;
// indicator tags are an open vocabulary.
type AgentResult struct {
	Agent                string         `json:"agent"`
	Version              string         `json:"version,omitempty"`
	View                 string         `json:"view"`
	Task                 string         `json:"task,omitempty"`
	Verdict              Verdict        `json:"verdict"`
	Confidence           float64        `json:"confidence"`
	PhishingIndicators   []string       `json:"phishing_indicators"`
	LegitimacyIndicators []string       `json:"legitimacy_indicators,omitempty"`
	Evidence             []TextEvidence `json:"evidence,omitempty"`
	URLsAnalyzed         int            `json:"urls_analyzed,omitempty"`
	RiskSummary          string         `json:"risk_summary,omitempty"`
	URLDetails           []URLDetail    `json:"url_details,omitempty"`
	OverallRationale     string         `json:"overall_rationale"`
	SafetyNotes          string         `json:"safety_notes,omitempty"`
}

// UnifiedResult is the merged classification returned to the caller. It is a
// pure function of the agent results it embeds: no timestamps, no randomness,
// so identical inputs always produce identical output.
type UnifiedResult struct {
	Task                 string          `json:"task"`
	Verdict              Verdict         `json:"verdict"`
	Confidence           float64         `json:"confidence"`
	PhishingIndicators   []string        `json:"phishing_indicators"`
	LegitimacyIndicators []string        `json:"legitimacy_indicators"`
	AgentsUsed           map[string]bool `json:"agents_used"`
	TextAgentResult      *AgentResult    `json:"text_agent_result"`
	URLAgentResult       *AgentResult    `json:"url_agent_result"`
	OverallRationale     string          `json:"overall_rationale"`
	SafetyNotes          string          `json:"safety_notes"`
}
