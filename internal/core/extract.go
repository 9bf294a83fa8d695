package core

import (
	"encoding/json"
	"strings"
)

// ExtractJSON recovers the single JSON object expected somewhere inside raw
// backend output. Backends are prompted to emit only a JSON object but
// occasionally wrap it in commentary, so the object is located by the first
// '{' and the last '}'. This is deliberately not a balanced-brace scan; a
// stray brace inside a string before the real object can mislocate the
// boundary, which is accepted as an occasional malformed-output failure
// rather than guarded against.
func ExtractJSON(raw string) ([]byte, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start == -1 || end == -1 || end <= start {
		return nil, &MalformedOutputError{
			Raw:    raw,
			Reason: "no JSON object found in model output",
		}
	}

	doc := []byte(raw[start : end+1])
	if !json.Valid(doc) {
		// Surface the parse error itself for diagnostics.
		var probe map[string]any
		err := json.Unmarshal(doc, &probe)
		return nil, &MalformedOutputError{
			Raw:    raw,
			Reason: "extracted substring is not valid JSON",
			Err:    err,
		}
	}

	return doc, nil
}
