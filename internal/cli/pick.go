package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/macropower/gitprof/pkg/profile"
)

// ErrNotInteractive is returned by the picker when stdin is not a terminal.
var ErrNotInteractive = errors.New("not running interactively")

// Picker asks the user to choose one of profiles.
type Picker func(ctx context.Context, title string, profiles []*profile.Profile) (*profile.Profile, error)

// PromptPicker is a [Picker] that shows a select prompt on the terminal.
func PromptPicker(ctx context.Context, title string, profiles []*profile.Profile) (*profile.Profile, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) { //nolint:gosec // G115: file descriptor.
		return nil, ErrNotInteractive
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: no profiles configured", profile.ErrNotFound)
	}

	options := make([]huh.Option[string], 0, len(profiles))
	for _, p := range profiles {
		options = append(options, huh.NewOption(p.String(), p.Name))
	}

	var name string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Value(&name),
		),
	).WithShowHelp(false)

	err := form.RunWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("run profile prompt: %w", err)
	}

	return profile.Find(profiles, name) //nolint:wrapcheck // Sentinel from profile.
}
