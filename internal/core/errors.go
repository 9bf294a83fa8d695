package core

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable indicates a transport-level failure talking to
	// the reasoning backend (unreachable host, non-success status, timeout).
	// The pipeline never retries and never substitutes a default verdict.
	ErrBackendUnavailable = errors.New("reasoning backend unavailable")

	// ErrMalformedOutput indicates the backend responded but no valid result
	// object could be recovered from its output.
	ErrMalformedOutput = errors.New("malformed backend output")
)

// MalformedOutputError wraps a failure to extract or parse the backend's
// structured output. Raw retains the complete backend response for
// diagnostics.
type MalformedOutputError struct {
	Raw    string
	Reason string
	Err    error
}

func (e *MalformedOutputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed backend output: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed backend output: %s", e.Reason)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

func (e *MalformedOutputError) Is(target error) bool {
	return target == ErrMalformedOutput
}

// ValidationError indicates a structurally valid object whose field values
// violate the result schema (unknown verdict, confidence out of range,
// missing required fields). It propagates like malformed output but remains
// distinguishable for logging.
type ValidationError struct {
	View     string
	Raw      string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s agent result failed validation: %v", e.View, e.Problems)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrMalformedOutput
}

// AgentError wraps a failure from a single agent so the orchestrator's
// caller can tell which view failed.
type AgentError struct {
	View string
	Err  error
}

func (e *AgentError) Error() string {
	return fmt.Sprintf("%s agent: %v", e.View, e.Err)
}

func (e *AgentError) Unwrap() error { return e.Err }
