package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/macropower/gitprof/pkg/config"
	"github.com/macropower/gitprof/pkg/match"
)

// ErrNoMatch is returned when no profile matches well enough.
var ErrNoMatch = errors.New("no matching profile")

type MatchArgs struct {
	*RootArgs

	Output        string
	Max           int
	MinScore      float64
	Best          bool
	NoName        bool
	NoEmail       bool
	NoUserName    bool
	NoVaultName   bool
	NoSSHKeyTitle bool
}

func NewMatchArgs(rootArgs *RootArgs) *MatchArgs {
	return &MatchArgs{RootArgs: rootArgs}
}

func (ma *MatchArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&ma.Best, "best", "b", false, "Print only the best match above the best match threshold")
	cmd.Flags().IntVarP(&ma.Max, "max", "n", 0, "Maximum number of results, 0 for unlimited (default from config)")
	cmd.Flags().Float64Var(&ma.MinScore, "min-score", 0, "Minimum score between 0 and 1 (default from config)")
	cmd.Flags().BoolVar(&ma.NoName, "no-name", false, "Do not match profile names")
	cmd.Flags().BoolVar(&ma.NoEmail, "no-email", false, "Do not match git user emails")
	cmd.Flags().BoolVar(&ma.NoUserName, "no-user-name", false, "Do not match git user names")
	cmd.Flags().BoolVar(&ma.NoVaultName, "no-vault-name", false, "Do not match vault names")
	cmd.Flags().BoolVar(&ma.NoSSHKeyTitle, "no-ssh-key-title", false, "Do not match SSH key titles")
	addOutputFlag(cmd, &ma.Output)
}

func NewMatchCmd(rootArgs *RootArgs) *cobra.Command {
	ma := NewMatchArgs(rootArgs)

	cmd := &cobra.Command{
		Use:   "match <query>",
		Short: "Find profiles matching a query",
		Long: `Find profiles matching a free-text query.

The query is compared with each profile's name, email, user name, vault name,
and SSH key title. Field scores are weighted and combined, and profiles are
listed best first.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: ma.completeProfiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ma.run(cmd, strings.Join(args, " "))
		},
	}

	ma.AddFlags(cmd)
	bindEnvVars(cmd)

	return cmd
}

func (ma *MatchArgs) run(cmd *cobra.Command, query string) error {
	printer, err := NewPrinter(cmd.OutOrStdout(), ma.Output)
	if err != nil {
		return err
	}

	store, cfg, err := ma.loadConfig()
	if err != nil {
		return err
	}

	ma.override(cmd, cfg.Matching)

	matcher, err := cfg.Matcher()
	if err != nil {
		return fmt.Errorf("create matcher: %w", err)
	}

	profiles, err := store.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}

	if ma.Best {
		best, ok := matcher.FindBestMatch(query, profiles)
		if !ok {
			return fmt.Errorf("%w: %q", ErrNoMatch, query)
		}

		return printer.Print(best, func(w io.Writer) error {
			return writeMatches(w, []match.Result{best})
		})
	}

	results := matcher.FindMatches(query, profiles)

	return printer.Print(results, func(w io.Writer) error {
		return writeMatches(w, results)
	})
}

// override applies flags that were set explicitly on top of the configuration.
func (ma *MatchArgs) override(cmd *cobra.Command, mc *config.MatchingConfig) {
	flags := cmd.Flags()

	if flags.Changed("max") {
		mc.MaxResults = &ma.Max
	}

	if flags.Changed("min-score") {
		mc.MinScore = &ma.MinScore
	}

	disabled := []struct {
		field **bool
		off   bool
	}{
		{&mc.Fields.Name, ma.NoName},
		{&mc.Fields.Email, ma.NoEmail},
		{&mc.Fields.UserName, ma.NoUserName},
		{&mc.Fields.VaultName, ma.NoVaultName},
		{&mc.Fields.SSHKeyTitle, ma.NoSSHKeyTitle},
	}
	for _, d := range disabled {
		if d.off {
			off := false
			*d.field = &off
		}
	}
}

func writeMatches(w io.Writer, results []match.Result) error {
	if len(results) == 0 {
		return writeLines(w, subtleStyle.Render("No matching profiles."))
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		fields := make([]string, 0, len(r.FieldMatches))
		for _, fm := range r.FieldMatches {
			fields = append(fields, fmt.Sprintf("%s=%s", fm.Field, formatScore(fm.Score)))
		}

		rows = append(rows, []string{
			r.Profile.Name,
			formatScore(r.Score),
			r.Profile.Identity(),
			strings.Join(fields, " "),
		})
	}

	return writeLines(w, renderTable([]string{"Profile", "Score", "Identity", "Fields"}, rows))
}
