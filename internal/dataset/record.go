package dataset

// Label values for normalized samples.
const (
	LabelPhishing   = "phishing"
	LabelLegitimate = "legitimate"
	LabelUnknown    = "unknown"
)

// Metadata carries provenance for a normalized sample.
type Metadata struct {
	From   string `json:"from"`
	Source string `json:"source"`
}

// Record is one normalized email sample. The shape is the only vocabulary
// shared with the analysis core: {subject, body, urls, label, metadata}.
type Record struct {
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	URLs     []string `json:"urls"`
	Metadata Metadata `json:"metadata"`
	Label    string   `json:"label"`
}
