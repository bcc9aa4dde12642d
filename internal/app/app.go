// Package app assembles the tool groups, resources and prompt catalog
// selected by the configuration into a ready-to-serve transport.
package app

import (
	"github.com/local-mcps/devtools-mcp/config"
	"github.com/local-mcps/devtools-mcp/internal/command"
	"github.com/local-mcps/devtools-mcp/internal/common"
	"github.com/local-mcps/devtools-mcp/internal/filesystem"
	"github.com/local-mcps/devtools-mcp/internal/math"
	"github.com/local-mcps/devtools-mcp/internal/prompts"
	"github.com/local-mcps/devtools-mcp/internal/system"
	"github.com/local-mcps/devtools-mcp/internal/transport"
	"github.com/local-mcps/devtools-mcp/pkg/mcp"
)

type App struct {
	Config    *config.Config
	Registry  *mcp.Registry
	Catalog   *prompts.Catalog
	Transport *transport.Server
}

func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	builder := mcp.NewBuilder()

	if cfg.Tools.Math {
		math.NewServer(logger).RegisterTools(builder)
	}
	if cfg.Tools.Filesystem {
		filesystem.NewServer(cfg.Limits, logger).RegisterTools(builder)
	}
	if cfg.Tools.Command {
		command.NewServer(cfg.Limits, logger).RegisterTools(builder)
	}
	system.NewServer(logger).RegisterResources(builder)

	registry, err := builder.Build(logger, cfg.Metrics.Enabled)
	if err != nil {
		return nil, err
	}

	catalog, err := prompts.Load()
	if err != nil {
		return nil, common.WrapError(err, "failed to load prompts")
	}

	logger.Info("server assembled",
		"tools", len(registry.Tools()),
		"resources", len(registry.Resources()),
		"prompts", len(catalog.List()),
	)

	return &App{
		Config:    cfg,
		Registry:  registry,
		Catalog:   catalog,
		Transport: transport.NewServer(cfg.Server, registry, catalog, logger),
	}, nil
}
