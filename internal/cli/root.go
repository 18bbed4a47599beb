package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/macropower/gitprof/pkg/config"
	"github.com/macropower/gitprof/pkg/log"
	"github.com/macropower/gitprof/pkg/telemetry"
	"github.com/macropower/gitprof/pkg/version"
)

const (
	cmdName     = "gitprof"
	cmdDesc     = `Resolve the git identity profile for a repository.`
	cmdExamples = `  # Detect the profile for the current directory:
  gitprof detect

  # Show how every profile scored:
  gitprof detect ~/src/company/api --explain

  # Re-detect whenever the configuration or git config changes:
  gitprof detect --watch

  # Find profiles by name, email, user name, vault, or key title:
  gitprof match jane

  # Write the default configuration:
  gitprof config init`

	shutdownTimeout = 5 * time.Second
)

type RootArgs struct {
	LogLevel     string
	LogFormat    string
	ConfigPath   string
	OTLPEndpoint string

	shutdown telemetry.ShutdownFunc
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	cmd.PersistentFlags().
		StringVarP(&ra.ConfigPath, "config", "c", "", "Path to the gitprof configuration file")
	cmd.PersistentFlags().
		StringVar(&ra.OTLPEndpoint, "otlp-endpoint", "", "Export traces to this OTLP/gRPC endpoint")

	must(cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	))
	must(cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	))
	must(cmd.MarkPersistentFlagFilename("config", "yaml", "yml"))
}

// GetConfigPath returns the --config path, or the default path.
func (ra *RootArgs) GetConfigPath() string {
	if ra.ConfigPath != "" {
		return ra.ConfigPath
	}

	return config.GetPath()
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(NewRootArgs())
}

func newRootCmd(args *RootArgs) *cobra.Command {
	loadDotEnv(config.GetFilePath(".env"))

	cmd := &cobra.Command{
		Use:               cmdName,
		Short:             cmdDesc,
		Example:           cmdExamples,
		PersistentPreRunE: args.setup,
	}

	args.AddFlags(cmd)
	cmd.AddCommand(
		NewDetectCmd(args),
		NewMatchCmd(args),
		NewProfilesCmd(args),
		NewConfigCmd(args),
	)

	bindEnvVars(cmd)

	return cmd
}

// Execute runs the root command with fang and flushes telemetry on exit.
func Execute(ctx context.Context, opts ...fang.Option) error {
	args := NewRootArgs()

	opts = append([]fang.Option{
		fang.WithVersion(version.Info()),
		fang.WithErrorHandler(ErrorHandler),
	}, opts...)

	err := fang.Execute(ctx, newRootCmd(args), opts...)

	args.Shutdown()

	return err //nolint:wrapcheck // Already rendered by the error handler.
}

func (ra *RootArgs) setup(cmd *cobra.Command, _ []string) error {
	logHandler, err := log.CreateHandlerWithStrings(cmd.ErrOrStderr(), ra.LogLevel, ra.LogFormat)
	if err != nil {
		return fmt.Errorf("create log handler: %w", err)
	}

	slog.SetDefault(slog.New(logHandler))

	ra.shutdown, err = telemetry.Setup(cmd.Context(), ra.OTLPEndpoint,
		telemetry.WithVersion(version.GetVersion()),
	)
	if err != nil {
		return fmt.Errorf("set up telemetry: %w", err)
	}

	return nil
}

// Shutdown flushes telemetry set up by the last command run.
func (ra *RootArgs) Shutdown() {
	if ra.shutdown == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := ra.shutdown(ctx)
	if err != nil {
		slog.Warn("flush traces", slog.Any("error", err))
	}

	ra.shutdown = nil
}
