package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/macropower/gitprof/pkg/profile"
)

type ProfilesArgs struct {
	*RootArgs

	Output string
}

func NewProfilesCmd(rootArgs *RootArgs) *cobra.Command {
	pa := &ProfilesArgs{RootArgs: rootArgs}

	cmd := &cobra.Command{
		Use:     "profiles [name...]",
		Aliases: []string{"profile", "ls"},
		Short:   "List configured profiles",
		Long: `List configured profiles.

With names, only those profiles are shown, in full.`,
		ValidArgsFunction: pa.completeProfiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return pa.run(cmd, args)
		},
	}

	addOutputFlag(cmd, &pa.Output)
	bindEnvVars(cmd)

	return cmd
}

func (pa *ProfilesArgs) run(cmd *cobra.Command, names []string) error {
	printer, err := NewPrinter(cmd.OutOrStdout(), pa.Output)
	if err != nil {
		return err
	}

	store, _, err := pa.loadConfig()
	if err != nil {
		return err
	}

	profiles, err := store.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}

	if len(names) == 0 {
		return printer.Print(profiles, func(w io.Writer) error {
			return writeProfiles(w, profiles)
		})
	}

	selected := make([]*profile.Profile, 0, len(names))

	for _, name := range names {
		p, err := profile.Find(profiles, name)
		if err != nil {
			return err //nolint:wrapcheck // Sentinel from profile.
		}

		selected = append(selected, p)
	}

	return printer.Print(selected, func(w io.Writer) error {
		for i, p := range selected {
			if i > 0 {
				err := writeLines(w, "")
				if err != nil {
					return err
				}
			}

			err := writeProfile(w, p)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

func writeProfiles(w io.Writer, profiles []*profile.Profile) error {
	if len(profiles) == 0 {
		return writeLines(w, subtleStyle.Render("No profiles configured."))
	}

	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, []string{p.Name, p.Identity(), p.VaultName, p.Description})
	}

	return writeLines(w, renderTable([]string{"Profile", "Identity", "Vault", "Description"}, rows))
}

func writeProfile(w io.Writer, p *profile.Profile) error {
	lines := []string{titleStyle.Render(p.Name)}

	field := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("  %s: %s", label, value))
		}
	}
	list := func(label string, values []string) {
		if len(values) > 0 {
			lines = append(lines, fmt.Sprintf("  %s: %s", label, strings.Join(values, ", ")))
		}
	}

	field("description", p.Description)
	field("identity", p.Identity())
	field("vault", p.VaultName)
	field("ssh key", p.SSHKeyTitle)
	list("repos", p.Repos)
	list("directories", p.MatchPatterns)
	list("includeIf directories", p.IncludeIfDirs)
	list("hosts", p.HostPatterns)
	field("when", p.When)

	return writeLines(w, lines...)
}
