//go:build !unix

package command

import (
	"os"
	"os/exec"
)

func shellInvocation(command string) (string, []string) {
	shell := os.Getenv("COMSPEC")
	if shell == "" {
		shell = "cmd.exe"
	}
	return shell, []string{"/C", command}
}

// configureProcessGroup relies on exec.CommandContext killing the process.
func configureProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) {}
