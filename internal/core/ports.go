package core

import (
	"context"
)

// Backend is the reasoning backend invoked by every agent: one synchronous
// round trip carrying a system instruction and a user input, returning the
// raw text of the model's reply. Implementations wrap transport failures in
// ErrBackendUnavailable and perform no retries.
type Backend interface {
	Invoke(ctx context.Context, instruction, input string) (string, error)
}
