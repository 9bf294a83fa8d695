package factory

import (
	"fmt"

	"github.com/mikey/phishscope/internal/adapters/bedrock"
	"github.com/mikey/phishscope/internal/adapters/gemini"
	"github.com/mikey/phishscope/internal/adapters/ollama"
	"github.com/mikey/phishscope/internal/adapters/openai"
	"github.com/mikey/phishscope/internal/config"
	"github.com/mikey/phishscope/internal/core"
	"go.uber.org/zap"
)

// BackendFactory creates reasoning backend clients
type BackendFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewBackendFactory creates a new backend factory
func NewBackendFactory(cfg *config.Config, logger *zap.Logger) *BackendFactory {
	return &BackendFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateBackend creates a new backend client based on the configuration
func (f *BackendFactory) CreateBackend() (core.Backend, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "ollama":
		return ollama.NewFactory(f.cfg, f.logger).CreateBackend()
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger).CreateBackend()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger).CreateBackend()
	case "openai":
		return openai.NewFactory(f.cfg, f.logger).CreateBackend()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}
