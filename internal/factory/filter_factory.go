package factory

import (
	"fmt"

	"github.com/mikey/phishscope/internal/adapters/filter"
	"github.com/mikey/phishscope/internal/config"
	"github.com/mikey/phishscope/internal/core"
	"github.com/mikey/phishscope/internal/ports"
	"github.com/mikey/phishscope/internal/utils"
	"github.com/mikey/phishscope/internal/whitelist"
	"go.uber.org/zap"
)

// FilterFactory creates analysis frontends based on configuration
type FilterFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	service       *core.AnalyzerService
	whitelist     *whitelist.Checker
	textProcessor *utils.TextProcessor
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.AnalyzerService,
	wl *whitelist.Checker,
	textProcessor *utils.TextProcessor,
) *FilterFactory {
	return &FilterFactory{
		cfg:           cfg,
		logger:        logger,
		service:       service,
		whitelist:     wl,
		textProcessor: textProcessor,
	}
}

// CreateEmailFilter creates a frontend based on the configuration
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	filterType := f.cfg.GetString("server.filter_type")
	maxBodySize := f.cfg.GetInt("analysis.max_body_size")

	switch filterType {
	case "http":
		return filter.NewHTTPFilter(
			f.service,
			f.logger,
			f.cfg.GetString("server.listen_address"),
			f.whitelist,
			f.textProcessor,
			maxBodySize,
		), nil
	case "postfix":
		return filter.NewPostfixFilter(
			f.service,
			f.logger,
			f.cfg.GetString("server.listen_address"),
			f.cfg.GetBool("server.block_phishing"),
			f.cfg.GetString("server.headers.verdict"),
			f.cfg.GetString("server.headers.confidence"),
			f.cfg.GetString("server.headers.indicators"),
			f.cfg.GetString("server.postfix.address"),
			f.cfg.GetInt("server.postfix.port"),
			f.cfg.GetBool("server.postfix.enabled"),
			f.cfg.GetString("server.subject_prefix"),
			f.cfg.GetBool("server.modify_subject"),
			f.whitelist,
			f.textProcessor,
			maxBodySize,
		), nil
	case "cli":
		return filter.NewCliFilter(
			f.service,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		)
	default:
		return nil, fmt.Errorf("unsupported filter type: %s", filterType)
	}
}
