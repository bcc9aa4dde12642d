package command

import (
	"context"

	"github.com/local-mcps/devtools-mcp/internal/common"
	"github.com/local-mcps/devtools-mcp/pkg/mcp"
)

func (s *Server) runCommandTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "run_command",
		Description: "Run a shell command and return its exit code and output",
		Params: []mcp.Param{
			mcp.StringParam("command", "Shell command line to execute", true),
			mcp.StringParam("working_dir", "Directory to run the command in (default: current directory)", false),
		},
		ReadOnly: false,
		Handler:  s.handleRunCommand,
	}
}

func (s *Server) handleRunCommand(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	command, err := mcp.GetStringParam(params, "command", true, "")
	if err != nil {
		return nil, err
	}
	if err := common.ValidateCommand(command); err != nil {
		return nil, err
	}

	workingDir, err := mcp.GetStringParam(params, "working_dir", false, ".")
	if err != nil {
		return nil, err
	}

	dir, err := common.ResolveDirectory(workingDir)
	if err != nil {
		return nil, err
	}

	s.logger.Info("running command", "command", command, "working_dir", dir)

	result, err := s.executor.Run(ctx, command, dir)
	if err != nil {
		s.logger.Warn("command failed", "command", command, "error", err)
		return nil, err
	}

	s.logger.Debug("command finished", "exit_code", result.ExitCode, "duration_ms", result.DurationMs)
	return result, nil
}
