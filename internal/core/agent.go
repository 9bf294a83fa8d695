package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Agent runs one restricted-view analysis of an email. A variant is a small
// configuration value (view name, instruction text, input formatter) plus
// this shared invocation routine: format the input, call the backend once,
// extract the JSON object from the reply, validate it against the view
// schema. No retries, no post-processing of indicators or confidence.
type Agent struct {
	view        string
	instruction string
	formatInput func(email *Email) string
	backend     Backend
	validator   *ResultValidator
	logger      *zap.Logger
}

// NewAgent assembles an agent from its configuration. Prefer NewTextAgent
// and NewURLAgent; this constructor exists so tests can inject custom
// instructions and formatters.
func NewAgent(
	view string,
	instruction string,
	formatInput func(email *Email) string,
	backend Backend,
	logger *zap.Logger,
) (*Agent, error) {
	if instruction == "" {
		return nil, fmt.Errorf("%s agent: instruction must not be empty", view)
	}
	validator, err := NewResultValidator(view)
	if err != nil {
		return nil, err
	}
	return &Agent{
		view:        view,
		instruction: instruction,
		formatInput: formatInput,
		backend:     backend,
		validator:   validator,
		logger:      logger,
	}, nil
}

// View returns the evidence slice this agent reasons over.
func (a *Agent) View() string {
	return a.view
}

// Analyze produces this agent's verdict for the email. Backend and
// malformed-output failures propagate unchanged.
func (a *Agent) Analyze(ctx context.Context, email *Email) (*AgentResult, error) {
	input := a.formatInput(email)

	raw, err := a.backend.Invoke(ctx, a.instruction, input)
	if err != nil {
		return nil, err
	}

	doc, err := ExtractJSON(raw)
	if err != nil {
		a.logger.Warn("Failed to extract agent result",
			zap.String("view", a.view),
			zap.Error(err))
		return nil, err
	}

	result, err := a.validator.Validate(doc)
	if err != nil {
		a.logger.Warn("Agent result failed validation",
			zap.String("view", a.view),
			zap.Error(err))
		return nil, err
	}

	a.logger.Debug("Agent verdict",
		zap.String("view", a.view),
		zap.String("verdict", string(result.Verdict)),
		zap.Float64("confidence", result.Confidence))

	return result, nil
}
