package gemini

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Two agents invoke one shared backend concurrently, so the client must not
// write the instruction onto shared state. Run with -race; the calls
// themselves fail fast against the unreachable test key.
func TestInvokeConcurrentLeavesSharedModelUntouched(t *testing.T) {
	client, err := NewGeminiClient("test-key", "gemini-pro", 256, 0.1, 0.9, time.Second, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	var wg sync.WaitGroup
	for _, instruction := range []string{"first instruction", "second instruction"} {
		wg.Add(1)
		go func(instruction string) {
			defer wg.Done()
			_, _ = client.Invoke(context.Background(), instruction, "some input")
		}(instruction)
	}
	wg.Wait()

	assert.Nil(t, client.model.SystemInstruction)
}

func TestInvokeEmptyInstruction(t *testing.T) {
	client, err := NewGeminiClient("test-key", "gemini-pro", 256, 0.1, 0.9, time.Second, zap.NewNop())
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Invoke(context.Background(), "", "input")
	assert.Error(t, err)
}
