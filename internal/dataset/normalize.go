package dataset

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"math/rand"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/phishscope/internal/utils"
)

// Candidate column names for the common fields, matched case-insensitively
// with a fuzzy substring fallback. Raw phishing corpora disagree wildly on
// naming.
var (
	subjectCandidates = []string{"subject", "title", "mail_subject", "email_subject"}
	bodyCandidates    = []string{"body", "message", "text", "content", "email_body", "raw_body", "mail_body"}
	fromCandidates    = []string{"from", "sender", "from_address", "email_from"}
	labelCandidates   = []string{"label", "class", "is_phishing", "target", "y", "category"}
	rawCandidates     = []string{"raw", "raw_email", "eml", "message_raw", "full_message", "original_message"}
)

// labelMap normalizes the common label spellings (lowercased).
var labelMap = map[string]string{
	"phishing":      LabelPhishing,
	"phish":         LabelPhishing,
	"malicious":     LabelPhishing,
	"spam_phishing": LabelPhishing,
	"1":             LabelPhishing,
	"true":          LabelPhishing,
	"legitimate":    LabelLegitimate,
	"ham":           LabelLegitimate,
	"not_phishing":  LabelLegitimate,
	"0":             LabelLegitimate,
	"false":         LabelLegitimate,
}

// FindColumn returns the first column matching one of the candidates,
// preferring exact (case-insensitive) matches over substring matches.
// Returns "" when nothing matches.
func FindColumn(columns []string, candidates []string) string {
	lowerToOrig := make(map[string]string, len(columns))
	for _, c := range columns {
		lowerToOrig[strings.ToLower(c)] = c
	}

	for _, cand := range candidates {
		if orig, ok := lowerToOrig[strings.ToLower(cand)]; ok {
			return orig
		}
	}
	for _, cand := range candidates {
		for colLower, orig := range lowerToOrig {
			if strings.Contains(colLower, strings.ToLower(cand)) {
				return orig
			}
		}
	}
	return ""
}

// NormalizeLabel maps a raw label value to one of the three normalized
// labels. sourceHint lets corpora that are known-phishing by provenance
// (e.g. the Nazario collection) label unlabeled rows.
func NormalizeLabel(raw string, sourceHint string) string {
	if raw == "" {
		if strings.Contains(strings.ToLower(sourceHint), "nazario") {
			return LabelPhishing
		}
		return LabelUnknown
	}

	lab := strings.ToLower(strings.TrimSpace(raw))
	if mapped, ok := labelMap[lab]; ok {
		return mapped
	}

	for _, k := range []string{"phish", "fraud", "malicious", "scam"} {
		if strings.Contains(lab, k) {
			return LabelPhishing
		}
	}
	for _, k := range []string{"legit", "ham", "not", "normal"} {
		if strings.Contains(lab, k) {
			return LabelLegitimate
		}
	}
	return LabelUnknown
}

// ParseRawEmail recovers subject, body, and sender from an RFC-822 message
// stored as a string. Partial recovery is fine; fields that cannot be read
// come back empty.
func ParseRawEmail(raw string) (subject, body, from string) {
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		return "", "", ""
	}

	subject = msg.Header.Get("Subject")
	from = msg.Header.Get("From")

	bodyBytes, err := io.ReadAll(msg.Body)
	if err == nil {
		body = string(bodyBytes)
	}
	return subject, body, from
}

// Normalizer turns heterogeneous tabular rows into normalized records.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a new Normalizer
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// NormalizeRows normalizes a table (header row plus one map per data row)
// from the named source file.
func (n *Normalizer) NormalizeRows(columns []string, rows []map[string]string, source string) []Record {
	subjCol := FindColumn(columns, subjectCandidates)
	bodyCol := FindColumn(columns, bodyCandidates)
	fromCol := FindColumn(columns, fromCandidates)
	labelCol := FindColumn(columns, labelCandidates)
	rawCol := FindColumn(columns, rawCandidates)

	n.logger.Debug("Detected columns",
		zap.String("source", source),
		zap.String("subject", subjCol),
		zap.String("body", bodyCol),
		zap.String("from", fromCol),
		zap.String("label", labelCol),
		zap.String("raw", rawCol))

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		subject := row[subjCol]
		body := row[bodyCol]
		sender := row[fromCol]
		label := NormalizeLabel(row[labelCol], source)

		// Attempt priority: explicit subject/body, then raw RFC-822 parse.
		if rawCol != "" && (subject == "" || body == "") {
			parsedSubject, parsedBody, parsedFrom := ParseRawEmail(row[rawCol])
			if subject == "" {
				subject = parsedSubject
			}
			if body == "" {
				body = parsedBody
			}
			if sender == "" {
				sender = parsedFrom
			}
		}

		records = append(records, Record{
			Subject: subject,
			Body:    body,
			URLs:    utils.ExtractURLs(subject + "\n\n" + body),
			Metadata: Metadata{
				From:   sender,
				Source: source,
			},
			Label: label,
		})
	}
	return records
}

// Dedupe removes duplicate samples by a stable hash of subject, body, and
// sender, keeping the first occurrence.
func Dedupe(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		h := sha1.Sum([]byte(rec.Subject + "\x00" + rec.Body + "\x00" + rec.Metadata.From))
		key := hex.EncodeToString(h[:])
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// Split shuffles the records with the given seed and splits them into train
// and test sets. trainFrac is clamped to [0, 1].
func Split(records []Record, trainFrac float64, seed int64) (train, test []Record) {
	if trainFrac < 0 {
		trainFrac = 0
	}
	if trainFrac > 1 {
		trainFrac = 1
	}

	shuffled := append([]Record(nil), records...)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	cut := int(float64(len(shuffled)) * trainFrac)
	return shuffled[:cut], shuffled[cut:]
}
