package factory

import (
	"fmt"

	"github.com/mikey/llm-email-agent/internal/adapters/filter"
	"github.com/mikey/llm-email-agent/internal/adapters/web"
	"github.com/mikey/llm-email-agent/internal/config"
	"github.com/mikey/llm-email-agent/internal/core"
	"github.com/mikey/llm-email-agent/internal/ports"
	"github.com/mikey/llm-email-agent/internal/whitelist"
	"go.uber.org/zap"
)

// FilterFactory creates the front end selected by server.frontend
type FilterFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.EmailAgentService
	bypass  *whitelist.Checker
}

// NewFilterFactory creates a new filter factory
func NewFilterFactory(cfg *config.Config, logger *zap.Logger, service *core.EmailAgentService, bypass *whitelist.Checker) *FilterFactory {
	return &FilterFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
		bypass:  bypass,
	}
}

// CreateEmailFilter creates an email front end based on the configuration
func (f *FilterFactory) CreateEmailFilter() (ports.EmailFilter, error) {
	serverCfg := f.cfg.GetServer()

	switch serverCfg.Frontend {
	case config.FrontendWeb:
		return web.NewServer(f.service, f.logger, serverCfg.ListenAddress, f.cfg.GetPipeline().MaxInputChars)
	case config.FrontendPostfix:
		return filter.NewPostfixFilter(f.service, f.logger, serverCfg, f.bypass), nil
	default:
		return nil, fmt.Errorf("unsupported front end: %s", serverCfg.Frontend)
	}
}
