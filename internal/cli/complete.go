package cli

import (
	"context"
	"log/slog"
	"slices"
	"sort"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/macropower/gitprof/pkg/config"
	"github.com/macropower/gitprof/pkg/profile"
)

// completeProfiles completes profile names, ranked by how well they match
// the partial input. Names already given as arguments are skipped.
func (ra *RootArgs) completeProfiles(
	cmd *cobra.Command,
	args []string,
	toComplete string,
) ([]cobra.Completion, cobra.ShellCompDirective) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	profiles, err := config.NewFileStore(ra.GetConfigPath()).List(ctx)
	if err != nil {
		slog.Debug("complete profiles", slog.Any("error", err))

		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	profiles = slices.DeleteFunc(profiles, func(p *profile.Profile) bool {
		return slices.Contains(args, p.Name)
	})

	return rankProfiles(profiles, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func rankProfiles(profiles []*profile.Profile, toComplete string) []cobra.Completion {
	completions := []cobra.Completion{}

	if toComplete == "" {
		for _, p := range profiles {
			completions = append(completions, cobra.CompletionWithDesc(p.Name, describe(p)))
		}

		return completions
	}

	matches := fuzzy.Find(toComplete, profile.Names(profiles))
	sort.Stable(matches)

	for _, m := range matches {
		completions = append(completions, cobra.CompletionWithDesc(m.Str, describe(profiles[m.Index])))
	}

	return completions
}

func describe(p *profile.Profile) string {
	if p.Description != "" {
		return p.Description
	}

	return p.Identity()
}
