package system

import (
	"github.com/local-mcps/devtools-mcp/internal/common"
	"github.com/local-mcps/devtools-mcp/pkg/mcp"
)

const (
	CurrentDirectoryURI = "file://current-directory"
	SystemInfoURI       = "file://system-info"
)

type Server struct {
	logger *common.Logger
}

func NewServer(logger *common.Logger) *Server {
	return &Server{
		logger: logger.WithField("component", "system"),
	}
}

func (s *Server) RegisterResources(builder *mcp.Builder) {
	builder.RegisterResource(s.currentDirectoryResource())
	builder.RegisterResource(s.systemInfoResource())
}
