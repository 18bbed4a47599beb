package rule

import (
	"context"
	"errors"
	"fmt"

	"github.com/macropower/gitprof/pkg/profile"
	"github.com/macropower/gitprof/pkg/repoctx"
)

// Rule names.
const (
	NameRemoteURL     = "remote_url"
	NameDirectoryPath = "directory_path"
	NameIncludeIfDir  = "include_if_dir"
	NameHostname      = "hostname"
	NameGitConfig     = "git_config"
	NameExpression    = "expression"
)

// ErrUnknownPriority is returned when a priority name cannot be parsed.
var ErrUnknownPriority = errors.New("unknown priority")

// Priority ranks rules. Higher priorities carry more weight.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityExact
)

// PriorityWeights holds the weight of each [Priority] in the detector's
// weighted average.
var PriorityWeights = map[Priority]float64{
	PriorityExact:  1.0,
	PriorityHigh:   0.75,
	PriorityMedium: 0.5,
	PriorityLow:    0.25,
}

var priorityNames = map[Priority]string{
	PriorityExact:  "exact",
	PriorityHigh:   "high",
	PriorityMedium: "medium",
	PriorityLow:    "low",
}

// Weight returns the priority's weight from [PriorityWeights].
func (p Priority) Weight() float64 {
	return PriorityWeights[p]
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}

	return fmt.Sprintf("priority(%d)", int(p))
}

// MarshalText implements [encoding.TextMarshaler].
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (p *Priority) UnmarshalText(text []byte) error {
	for prio, name := range priorityNames {
		if name == string(text) {
			*p = prio

			return nil
		}
	}

	return fmt.Errorf("%w: %q", ErrUnknownPriority, text)
}

// Rule scores a profile against a repository context.
type Rule interface {
	// Name returns the rule's stable identifier.
	Name() string
	// Priority returns the rule's priority.
	Priority() Priority
	// Match returns a confidence in [0, 1], or false to abstain.
	Match(ctx context.Context, p *profile.Profile, c *repoctx.Context) (float64, bool)
}
