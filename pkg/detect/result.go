package detect

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/macropower/gitprof/pkg/profile"
	"github.com/macropower/gitprof/pkg/rule"
)

// MatchedRule records one rule's contribution to a [Result].
type MatchedRule struct {
	RuleName   string        `json:"rule"`
	Priority   rule.Priority `json:"priority"`
	Confidence float64       `json:"confidence"`
}

// Result is a profile scored against a repository context.
type Result struct {
	Profile      *profile.Profile `json:"profile"`
	Reason       string           `json:"reason"`
	MatchedRules []MatchedRule    `json:"matchedRules"`
	Reasons      []string         `json:"reasons"`
	Confidence   float64          `json:"confidence"`
}

// Phrases maps rule names to the text used in [Result.Reason].
var Phrases = map[string]string{
	rule.NameRemoteURL:     "repository URL matches",
	rule.NameDirectoryPath: "directory pattern matches",
	rule.NameIncludeIfDir:  "inside configured directory",
	rule.NameHostname:      "hostname matches",
	rule.NameGitConfig:     "git identity matches",
	rule.NameExpression:    "custom expression matches",
}

// reason describes the two strongest matched rules.
func reason(name string, matched []MatchedRule) string {
	ranked := slices.Clone(matched)
	slices.SortStableFunc(ranked, func(a, b MatchedRule) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}

		return cmp.Compare(b.Confidence, a.Confidence)
	})

	phrases := []string{}
	for _, m := range ranked[:min(2, len(ranked))] {
		if phrase, ok := Phrases[m.RuleName]; ok {
			phrases = append(phrases, phrase)
		}
	}

	text := fmt.Sprintf("Profile '%s' detected", name)
	if len(phrases) == 0 {
		return text
	}

	return text + ": " + strings.Join(phrases, ", ")
}

func sortResults(results []Result) {
	slices.SortStableFunc(results, func(a, b Result) int {
		if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
			return c
		}

		return strings.Compare(a.Profile.Name, b.Profile.Name)
	})
}
