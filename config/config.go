package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const AppName = "devtools-mcp"

// Hard ceilings for the limits. A configured value above any of them is
// rejected at startup.
const (
	MaxFileSizeMBCeiling         = 1024
	CommandTimeoutSecondsCeiling = 3600
	MaxSearchResultsCeiling      = 1000
	MaxOutputBytesCeiling        = 64 * 1024 * 1024
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Limits    LimitsConfig    `yaml:"limits"`
	Transport TransportConfig `yaml:"transport"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Tools     ToolsConfig     `yaml:"tools"`
	Debug     bool            `yaml:"debug"`
}

type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type LimitsConfig struct {
	MaxFileSizeMB         int `yaml:"max_file_size_mb"`
	CommandTimeoutSeconds int `yaml:"command_timeout_seconds"`
	MaxSearchResults      int `yaml:"max_search_results"`
	MaxOutputBytes        int `yaml:"max_output_bytes"`
}

type TransportConfig struct {
	Mode               string `yaml:"mode"`
	HTTPAddr           string `yaml:"http_addr"`
	HTTPMaxConnections int    `yaml:"http_max_connections"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type ToolsConfig struct {
	Math       bool `yaml:"math"`
	Filesystem bool `yaml:"filesystem"`
	Command    bool `yaml:"command"`
}

func (l LimitsConfig) MaxFileSizeBytes() int64 {
	return int64(l.MaxFileSizeMB) * 1024 * 1024
}

func (l LimitsConfig) CommandTimeout() time.Duration {
	return time.Duration(l.CommandTimeoutSeconds) * time.Second
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "Dev Tools MCP Server",
			Version: "1.0.0",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   filepath.Join(xdg.StateHome, AppName, "server.log"),
		},
		Limits: LimitsConfig{
			MaxFileSizeMB:         10,
			CommandTimeoutSeconds: 30,
			MaxSearchResults:      10,
			MaxOutputBytes:        10485760,
		},
		Transport: TransportConfig{
			Mode:               "stdio",
			HTTPAddr:           "127.0.0.1:8080",
			HTTPMaxConnections: 64,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Tools: ToolsConfig{
			Math:       true,
			Filesystem: true,
			Command:    true,
		},
	}
}

// DefaultPath is where LoadConfig looks when no path is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// LoadConfig layers defaults, the YAML file, a .env file in the working
// directory and the process environment, then validates the result.
// A missing config file is not an error.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	config.ExpandPaths()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func applyEnvOverrides(config *Config) error {
	if v := os.Getenv("MCP_SERVER_NAME"); v != "" {
		config.Server.Name = v
	}
	if v := os.Getenv("MCP_SERVER_VERSION"); v != "" {
		config.Server.Version = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		config.Logging.Format = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv("LOG_FILE"); ok {
		config.Logging.File = v
	}
	if v := os.Getenv("MCP_TRANSPORT"); v != "" {
		config.Transport.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("MCP_HTTP_ADDR"); v != "" {
		config.Transport.HTTPAddr = v
	}

	ints := []struct {
		key    string
		target *int
	}{
		{"MAX_FILE_SIZE_MB", &config.Limits.MaxFileSizeMB},
		{"COMMAND_TIMEOUT_SECONDS", &config.Limits.CommandTimeoutSeconds},
		{"MAX_SEARCH_RESULTS", &config.Limits.MaxSearchResults},
		{"MAX_OUTPUT_BYTES", &config.Limits.MaxOutputBytes},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: must be an integer", e.key, v)
		}
		*e.target = n
	}

	bools := []struct {
		key    string
		target *bool
	}{
		{"DEBUG", &config.Debug},
		{"ENABLE_METRICS", &config.Metrics.Enabled},
	}
	for _, e := range bools {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: must be a boolean", e.key, v)
		}
		*e.target = b
	}

	return nil
}

func (c *Config) ExpandPaths() {
	c.Logging.File = os.ExpandEnv(c.Logging.File)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Name) == "" {
		return errors.New("server name must not be empty")
	}
	if err := c.Limits.Validate(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "json", "text", "logfmt":
	default:
		return fmt.Errorf("unsupported log format %q", c.Logging.Format)
	}
	switch c.Transport.Mode {
	case "stdio":
	case "http":
		if c.Transport.HTTPAddr == "" {
			return errors.New("http transport requires transport.http_addr")
		}
		if c.Transport.HTTPMaxConnections <= 0 {
			return fmt.Errorf("transport.http_max_connections must be positive, got %d", c.Transport.HTTPMaxConnections)
		}
	default:
		return fmt.Errorf("unsupported transport %q", c.Transport.Mode)
	}
	return nil
}

func (l LimitsConfig) Validate() error {
	checks := []struct {
		name    string
		value   int
		ceiling int
	}{
		{"max_file_size_mb", l.MaxFileSizeMB, MaxFileSizeMBCeiling},
		{"command_timeout_seconds", l.CommandTimeoutSeconds, CommandTimeoutSecondsCeiling},
		{"max_search_results", l.MaxSearchResults, MaxSearchResultsCeiling},
		{"max_output_bytes", l.MaxOutputBytes, MaxOutputBytesCeiling},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return fmt.Errorf("limit %s must be positive, got %d", c.name, c.value)
		}
		if c.value > c.ceiling {
			return fmt.Errorf("limit %s must not exceed %d, got %d", c.name, c.ceiling, c.value)
		}
	}
	return nil
}
