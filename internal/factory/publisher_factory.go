package factory

import (
	"github.com/mikey/phishscope/internal/adapters/publish"
	"github.com/mikey/phishscope/internal/config"
	"github.com/mikey/phishscope/internal/core"
	"go.uber.org/zap"
)

// PublisherFactory creates verdict publishers
type PublisherFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewPublisherFactory creates a new publisher factory
func NewPublisherFactory(cfg *config.Config, logger *zap.Logger) *PublisherFactory {
	return &PublisherFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePublisher creates a verdict publisher, or nil when publishing is
// disabled.
func (f *PublisherFactory) CreatePublisher() (core.VerdictPublisher, error) {
	publishCfg := f.cfg.GetPublish()
	if !publishCfg.Enabled {
		return nil, nil
	}
	return publish.NewNATSPublisher(publishCfg.NATSURL, publishCfg.Subject, f.logger)
}
