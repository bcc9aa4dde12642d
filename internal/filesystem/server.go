package filesystem

import (
	"github.com/local-mcps/devtools-mcp/config"
	"github.com/local-mcps/devtools-mcp/internal/common"
	"github.com/local-mcps/devtools-mcp/pkg/mcp"
)

type Server struct {
	limits config.LimitsConfig
	logger *common.Logger
}

func NewServer(limits config.LimitsConfig, logger *common.Logger) *Server {
	return &Server{
		limits: limits,
		logger: logger.WithField("component", "filesystem"),
	}
}

func (s *Server) RegisterTools(builder *mcp.Builder) {
	builder.RegisterTool(s.listDirectoryTool())
	builder.RegisterTool(s.readFileTool())
	builder.RegisterTool(s.searchFilesTool())
	builder.RegisterTool(s.fileInfoTool())
}
