package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/local-mcps/devtools-mcp/config"
	"github.com/local-mcps/devtools-mcp/internal/app"
	"github.com/local-mcps/devtools-mcp/internal/common"
)

type options struct {
	configPath string
	transport  string
	httpAddr   string
	debug      bool
}

func main() {
	os.Exit(execute(newRootCmd()))
}

// execute runs root and reports a failure on its error stream, since
// SilenceErrors keeps cobra from printing it.
func execute(root *cobra.Command) int {
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "MCP server exposing developer tools, system resources and prompt templates",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to configuration file (default: "+config.DefaultPath()+")")
	flags.StringVar(&opts.transport, "transport", "", "transport to serve: stdio or http")
	flags.StringVar(&opts.httpAddr, "http-addr", "", "listen address for the http transport")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(newListCmd(opts), newVersionCmd(opts))
	return root
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.transport != "" {
		cfg.Transport.Mode = opts.transport
	}
	if opts.httpAddr != "" {
		cfg.Transport.HTTPAddr = opts.httpAddr
	}
	if opts.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(cfg *config.Config) (*common.Logger, io.Closer, error) {
	output, closer, err := common.OpenLogOutput(cfg.Logging.File)
	if err != nil {
		return nil, nil, err
	}

	level := common.ParseLogLevel(cfg.Logging.Level)
	if cfg.Debug {
		level = log.DebugLevel
	}

	logger := common.NewLogger(level, common.ParseLogFormat(cfg.Logging.Format), output, config.AppName)
	if cfg.Debug {
		logger.SetReportCaller(true)
	}
	return logger, closer, nil
}

func runServe(opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := setupLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closer.Close()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to assemble server", "error", err)
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("shutting down", "signal", sig.String())
		cancel()
	}()

	logger.Info("starting server",
		"name", cfg.Server.Name,
		"version", cfg.Server.Version,
		"transport", cfg.Transport.Mode,
	)

	if err := a.Transport.Serve(ctx, cfg.Transport, os.Stdin, os.Stdout); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tools, resources and prompts the server exposes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			logger := common.NewLogger(log.WarnLevel, common.LogFormatText, os.Stderr, config.AppName)
			a, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			return printCatalog(cmd.OutOrStdout(), a)
		},
	}
}

func printCatalog(out io.Writer, a *app.App) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "TOOLS")
	for _, tool := range a.Registry.Tools() {
		access := "read-only"
		if !tool.ReadOnly {
			access = "side-effects"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", tool.Name, access, tool.Description)
	}

	fmt.Fprintln(w, "RESOURCES")
	for _, res := range a.Registry.Resources() {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", res.URI, res.Name, res.Description)
	}

	fmt.Fprintln(w, "PROMPTS")
	for _, p := range a.Catalog.List() {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", p.Name, p.Category, p.Description)
	}

	return w.Flush()
}

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server name and version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", cfg.Server.Name, cfg.Server.Version)
			return nil
		},
	}
}
