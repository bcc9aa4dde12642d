package system

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/local-mcps/devtools-mcp/internal/common"
	"github.com/local-mcps/devtools-mcp/pkg/mcp"
)

const bytesPerGB = 1024 * 1024 * 1024

type SystemInfo struct {
	OS              string      `json:"os"`
	Arch            string      `json:"arch"`
	GoVersion       string      `json:"go_version"`
	NumCPU          int         `json:"num_cpu"`
	CPUModel        string      `json:"cpu_model,omitempty"`
	Hostname        string      `json:"hostname"`
	Platform        string      `json:"platform,omitempty"`
	PlatformVersion string      `json:"platform_version,omitempty"`
	KernelVersion   string      `json:"kernel_version,omitempty"`
	Memory          *MemoryInfo `json:"memory,omitempty"`
	Executable      string      `json:"executable"`
	DefaultShell    string      `json:"default_shell"`
}

type MemoryInfo struct {
	TotalGB     float64 `json:"total_gb"`
	AvailableGB float64 `json:"available_gb"`
	UsedPercent float64 `json:"used_percent"`
}

func (s *Server) currentDirectoryResource() *mcp.Resource {
	return &mcp.Resource{
		URI:         CurrentDirectoryURI,
		Name:        "get_current_directory",
		Description: "Absolute path of the server's working directory",
		MIMEType:    "application/json",
		Handler:     s.handleCurrentDirectory,
	}
}

func (s *Server) handleCurrentDirectory(ctx context.Context) (interface{}, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot determine working directory: %v", common.ErrExecutionFailure, err)
	}
	return map[string]string{"path": wd}, nil
}

func (s *Server) systemInfoResource() *mcp.Resource {
	return &mcp.Resource{
		URI:         SystemInfoURI,
		Name:        "get_system_info",
		Description: "Operating system, runtime, CPU and memory details of the host",
		MIMEType:    "application/json",
		Handler:     s.handleSystemInfo,
	}
}

// handleSystemInfo degrades to the runtime fields when host probes fail.
func (s *Server) handleSystemInfo(ctx context.Context) (interface{}, error) {
	info := SystemInfo{
		OS:           runtime.GOOS,
		Arch:         runtime.GOARCH,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		DefaultShell: DefaultShell(),
	}

	if exe, err := os.Executable(); err == nil {
		info.Executable = exe
	}

	if hostInfo, err := host.InfoWithContext(ctx); err == nil {
		info.Hostname = hostInfo.Hostname
		info.Platform = hostInfo.Platform
		info.PlatformVersion = hostInfo.PlatformVersion
		info.KernelVersion = hostInfo.KernelVersion
	} else {
		s.logger.Debug("host probe failed", "error", err)
	}
	if info.Hostname == "" {
		info.Hostname, _ = os.Hostname()
	}

	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
	}

	if memInfo, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.Memory = &MemoryInfo{
			TotalGB:     float64(memInfo.Total) / bytesPerGB,
			AvailableGB: float64(memInfo.Available) / bytesPerGB,
			UsedPercent: memInfo.UsedPercent,
		}
	} else {
		s.logger.Debug("memory probe failed", "error", err)
	}

	return info, nil
}

// DefaultShell reports the user's login shell, falling back to the shell
// run_command uses.
func DefaultShell() string {
	if runtime.GOOS == "windows" {
		if comspec := os.Getenv("COMSPEC"); comspec != "" {
			return comspec
		}
		return "cmd.exe"
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}
