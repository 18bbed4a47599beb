package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/macropower/gitprof/pkg/config"
)

func NewConfigCmd(rootArgs *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the gitprof configuration",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(
		newConfigInitCmd(rootArgs),
		newConfigShowCmd(rootArgs),
		newConfigValidateCmd(rootArgs),
		newConfigPathCmd(rootArgs),
		newConfigSchemaCmd(),
	)

	return cmd
}

func newConfigInitCmd(ra *RootArgs) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Long: `Write the default configuration and its JSON schema.

An existing configuration is kept unless --force is set, in which case it is
renamed to a timestamped backup first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := ra.GetConfigPath()

			_, err := os.Stat(path)
			exists := err == nil
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("stat config: %w", err)
			}

			if exists && !force {
				return writeLines(cmd.OutOrStdout(),
					fmt.Sprintf("%s already exists, use --force to overwrite", path))
			}

			err = config.WriteDefaultConfig(path, force)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			return writeLines(cmd.OutOrStdout(), "Wrote "+path)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Back up and overwrite an existing configuration")

	return cmd
}

func newConfigShowCmd(ra *RootArgs) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration, including defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printer, err := NewPrinter(cmd.OutOrStdout(), output)
			if err != nil {
				return err
			}

			_, cfg, err := ra.loadConfig()
			if err != nil {
				return err
			}

			return printer.Print(cfg, func(w io.Writer) error {
				b, err := cfg.MarshalYAML()
				if err != nil {
					return err //nolint:wrapcheck // Annotated by config.
				}

				_, err = w.Write(b)
				if err != nil {
					return fmt.Errorf("write output: %w", err)
				}

				return nil
			})
		},
	}

	addOutputFlag(cmd, &output)

	return cmd
}

func newConfigValidateCmd(ra *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration for errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cfg, err := ra.loadConfig()
			if err != nil {
				return err
			}

			return writeLines(cmd.OutOrStdout(),
				fmt.Sprintf("%s is valid (%d profiles)", ra.GetConfigPath(), len(cfg.Profiles)))
		},
	}
}

func newConfigPathCmd(ra *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeLines(cmd.OutOrStdout(), ra.GetConfigPath())
		},
	}
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the configuration JSON schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(config.SchemaJSON())
			if err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			return nil
		},
	}
}
