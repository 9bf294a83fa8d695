package ports

import (
	"context"

	"github.com/mikey/phishscope/internal/core"
)

// EmailFilter defines the interface for an analysis frontend (HTTP API,
// Postfix content filter, CLI).
type EmailFilter interface {
	// ProcessEmail analyzes one email and returns the unified verdict
	ProcessEmail(ctx context.Context, email *core.Email) (*core.UnifiedResult, error)

	// Start starts the filter frontend
	Start() error

	// Stop stops the filter frontend
	Stop() error
}
