package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phishscope/internal/config"
	"github.com/mikey/phishscope/internal/core"
	"github.com/mikey/phishscope/internal/factory"
	"github.com/mikey/phishscope/internal/logging"
	"github.com/mikey/phishscope/internal/ports"
	"github.com/mikey/phishscope/internal/utils"
	"github.com/mikey/phishscope/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
// for the phishscope daemon.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewBackendFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewPublisherFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register reasoning backend
	if err := container.Provide(func(f *factory.BackendFactory) (core.Backend, error) {
		return f.CreateBackend()
	}); err != nil {
		return nil, err
	}

	// Register agents
	if err := container.Provide(core.NewTextAgent, dig.Name("text")); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewURLAgent, dig.Name("url")); err != nil {
		return nil, err
	}

	// Register verdict publisher
	if err := container.Provide(func(f *factory.PublisherFactory) (core.VerdictPublisher, error) {
		return f.CreatePublisher()
	}); err != nil {
		return nil, err
	}

	// Register whitelist checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		domains := cfg.GetStringSlice("analysis.whitelisted_domains")
		if len(domains) > 0 {
			logger.Info("Loaded whitelisted domains", zap.Strings("domains", domains))
		}
		return whitelist.NewChecker(domains, logger)
	}); err != nil {
		return nil, err
	}

	// Register analyzer service
	type serviceDeps struct {
		dig.In
		TextAgent *core.Agent `name:"text"`
		URLAgent  *core.Agent `name:"url"`
		Publisher core.VerdictPublisher
		Logger    *zap.Logger
	}
	if err := container.Provide(func(deps serviceDeps) *core.AnalyzerService {
		return core.NewAnalyzerService(deps.TextAgent, deps.URLAgent, deps.Publisher, deps.Logger)
	}); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
