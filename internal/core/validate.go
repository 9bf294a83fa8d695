package core

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// The backend is an untrusted text producer: every extracted object passes
// through a strict JSON Schema before it is decoded. Invalid values are
// rejected, never coerced. Indicator tags are an open vocabulary, so the
// schemas constrain their type only.

const textResultSchema = `{
	"type": "object",
	"required": ["verdict", "confidence"],
	"properties": {
		"agent": {"type": "string"},
		"version": {"type": "string"},
		"view": {"type": "string"},
		"task": {"type": "string"},
		"verdict": {"enum": ["phishing", "legitimate", "unsure"]},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"phishing_indicators": {"type": "array", "items": {"type": "string"}},
		"legitimacy_indicators": {"type": "array", "items": {"type": "string"}},
		"evidence": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"indicator": {"type": "string"},
					"text_quote": {"type": "string"},
					"explanation": {"type": "string"}
				}
			}
		},
		"overall_rationale": {"type": "string"},
		"safety_notes": {"type": "string"}
	}
}`

const urlResultSchema = `{
	"type": "object",
	"required": ["verdict", "confidence"],
	"properties": {
		"agent": {"type": "string"},
		"version": {"type": "string"},
		"view": {"type": "string"},
		"task": {"type": "string"},
		"urls_analyzed": {"type": "integer", "minimum": 0},
		"verdict": {"enum": ["phishing", "legitimate", "unsure"]},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"risk_summary": {"type": "string"},
		"url_details": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"url": {"type": "string"},
					"domain": {"type": "string"},
					"is_https": {"type": "boolean"},
					"risk_level": {"type": "string"},
					"indicators": {"type": "array", "items": {"type": "string"}},
					"explanation": {"type": "string"}
				}
			}
		},
		"overall_rationale": {"type": "string"},
		"safety_notes": {"type": "string"}
	}
}`

// ResultValidator validates extracted backend output for one agent view and
// decodes it into an AgentResult.
type ResultValidator struct {
	view   string
	schema *gojsonschema.Schema
}

// NewResultValidator compiles the result schema for the given view.
func NewResultValidator(view string) (*ResultValidator, error) {
	var src string
	switch view {
	case ViewText:
		src = textResultSchema
	case ViewURL:
		src = urlResultSchema
	default:
		return nil, fmt.Errorf("no result schema for view %q", view)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s result schema: %w", view, err)
	}

	return &ResultValidator{view: view, schema: schema}, nil
}

// Validate checks doc against the view schema and decodes it. Schema
// violations come back as *ValidationError with the raw document retained.
func (v *ResultValidator) Validate(doc []byte) (*AgentResult, error) {
	outcome, err := v.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, &MalformedOutputError{
			Raw:    string(doc),
			Reason: "schema validation could not run",
			Err:    err,
		}
	}

	if !outcome.Valid() {
		problems := make([]string, 0, len(outcome.Errors()))
		for _, desc := range outcome.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, &ValidationError{
			View:     v.view,
			Raw:      string(doc),
			Problems: problems,
		}
	}

	var result AgentResult
	if err := json.Unmarshal(doc, &result); err != nil {
		return nil, &MalformedOutputError{
			Raw:    string(doc),
			Reason: "failed to decode validated result",
			Err:    err,
		}
	}

	return &result, nil
}
