package math

import (
	"github.com/local-mcps/devtools-mcp/internal/common"
	"github.com/local-mcps/devtools-mcp/pkg/mcp"
)

type Server struct {
	logger *common.Logger
}

func NewServer(logger *common.Logger) *Server {
	return &Server{
		logger: logger.WithField("component", "math"),
	}
}

func (s *Server) RegisterTools(builder *mcp.Builder) {
	builder.RegisterTool(s.addTool())
	builder.RegisterTool(s.multiplyTool())
}
