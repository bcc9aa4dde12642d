package command

import (
	"github.com/local-mcps/devtools-mcp/config"
	"github.com/local-mcps/devtools-mcp/internal/common"
	"github.com/local-mcps/devtools-mcp/pkg/mcp"
)

type Server struct {
	logger   *common.Logger
	executor *Executor
}

func NewServer(limits config.LimitsConfig, logger *common.Logger) *Server {
	return &Server{
		logger:   logger.WithField("component", "command"),
		executor: NewExecutor(limits),
	}
}

func (s *Server) RegisterTools(builder *mcp.Builder) {
	builder.RegisterTool(s.runCommandTool())
}
