package cli_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/macropower/gitprof/internal/cli"
	"github.com/macropower/gitprof/pkg/profile"
)

func TestRankProfiles(t *testing.T) {
	t.Parallel()

	profiles := []*profile.Profile{
		profile.MustNew("personal", profile.WithEmail("me@example.com")),
		profile.MustNew("work", profile.WithEmail("jane@company.com"), profile.WithUserName("Jane Doe")),
		profile.MustNew("work-oss", profile.WithEmail("jane@oss.dev"), profile.WithDescription("Open source")),
	}

	tcs := map[string]struct {
		toComplete string
		want       []cobra.Completion
	}{
		"empty lists all in order": {
			toComplete: "",
			want: []cobra.Completion{
				"personal\tme@example.com",
				"work\tJane Doe <jane@company.com>",
				"work-oss\tOpen source",
			},
		},
		"prefix": {
			toComplete: "work",
			want: []cobra.Completion{
				"work\tJane Doe <jane@company.com>",
				"work-oss\tOpen source",
			},
		},
		"no match": {
			toComplete: "xyz",
			want:       []cobra.Completion{},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, cli.RankProfiles(profiles, tc.toComplete))
		})
	}
}
