package cli

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/macropower/gitprof/pkg/detect"
	"github.com/macropower/gitprof/pkg/profile"
	"github.com/macropower/gitprof/pkg/repoctx"
)

// ErrNoProfile is returned when no profile is detected.
var ErrNoProfile = errors.New("no profile detected")

type DetectArgs struct {
	*RootArgs

	picker Picker

	Output  string
	All     bool
	Explain bool
	Watch   bool
	Pick    bool
}

func NewDetectArgs(rootArgs *RootArgs) *DetectArgs {
	return &DetectArgs{
		RootArgs: rootArgs,
		picker:   PromptPicker,
	}
}

func (da *DetectArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&da.All, "all", "a", false, "List every detected profile, best first")
	cmd.Flags().BoolVar(&da.Explain, "explain", false, "Show the repository context and every profile's score")
	cmd.Flags().BoolVarP(&da.Watch, "watch", "w", false, "Detect again when the configuration or git config changes")
	cmd.Flags().BoolVar(&da.Pick, "pick", false, "Prompt for a profile when none is detected")
	addOutputFlag(cmd, &da.Output)

	cmd.MarkFlagsMutuallyExclusive("all", "explain", "watch")
	cmd.MarkFlagsMutuallyExclusive("pick", "all")
	cmd.MarkFlagsMutuallyExclusive("pick", "explain")
	cmd.MarkFlagsMutuallyExclusive("pick", "watch")
}

func NewDetectCmd(rootArgs *RootArgs) *cobra.Command {
	return newDetectCmd(NewDetectArgs(rootArgs))
}

func newDetectCmd(da *DetectArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect [path]",
		Short: "Detect the profile for a directory",
		Long: `Detect the profile for a directory, the current one by default.

Each profile is scored by rules that compare it with the repository: remote
URLs, directory patterns, includeIf directories, the hostname, the current git
identity, and an optional CEL expression. The profile with the highest
confidence wins.`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return nil, cobra.ShellCompDirectiveFilterDirs
			}

			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			return da.run(cmd, path)
		},
	}

	da.AddFlags(cmd)
	bindEnvVars(cmd)

	return cmd
}

func (da *DetectArgs) run(cmd *cobra.Command, path string) error {
	printer, err := NewPrinter(cmd.OutOrStdout(), da.Output)
	if err != nil {
		return err
	}

	a, err := da.newApp()
	if err != nil {
		return err
	}

	switch {
	case da.Watch:
		return da.watch(cmd, a, printer, path)
	case da.Explain:
		return da.explain(cmd, a, printer, path)
	case da.All:
		results, err := a.detector.DetectAll(cmd.Context(), path)
		if err != nil {
			return fmt.Errorf("detect: %w", err)
		}

		return printer.Print(results, func(w io.Writer) error {
			return writeResults(w, results)
		})
	}

	result, ok, err := a.detector.DetectIn(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	if !ok {
		if !da.Pick {
			return ErrNoProfile
		}

		result, err = da.pick(cmd, a)
		if err != nil {
			return err
		}
	}

	return printer.Print(result, func(w io.Writer) error {
		return writeResult(w, result)
	})
}

func (da *DetectArgs) pick(cmd *cobra.Command, a *app) (detect.Result, error) {
	profiles, err := a.store.List(cmd.Context())
	if err != nil {
		return detect.Result{}, fmt.Errorf("list profiles: %w", err)
	}

	p, err := da.picker(cmd.Context(), "No profile detected. Choose one:", profiles)
	if err != nil {
		return detect.Result{}, errors.Join(ErrNoProfile, err)
	}

	return detect.Result{
		Profile:    p,
		Confidence: 1,
		Reason:     fmt.Sprintf("Profile '%s' selected manually", p.Name),
		Reasons:    []string{fmt.Sprintf("Profile '%s' selected manually", p.Name)},
	}, nil
}

func (da *DetectArgs) watch(cmd *cobra.Command, a *app, printer *Printer, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	files := watchFiles(a.store.Path(), a.builder, abs)

	w := detect.NewWatcher(a.detector, abs, files)

	return w.Run(cmd.Context(), func(result detect.Result, ok bool, err error) { //nolint:wrapcheck // Sentinel from detect.
		switch {
		case err != nil:
			slog.Error("detect", slog.Any("error", err))
		case !ok:
			slog.Info("no profile detected", slog.String("path", abs))
		default:
			err = printer.Print(result, func(w io.Writer) error {
				return writeResult(w, result)
			})
			if err != nil {
				slog.Error("print result", slog.Any("error", err))
			}
		}
	})
}

// watchFiles returns the configuration file and, when dir is inside a
// repository, the repository's local git config file.
func watchFiles(configPath string, builder *repoctx.Builder, dir string) []string {
	files := []string{configPath}

	root, err := builder.FindRepoRoot(dir)
	if err != nil {
		slog.Warn("could not find repository root", slog.Any("error", err))

		return files
	}

	if root == "" {
		return files
	}

	gitConfig, err := repoctx.ConfigFile(root)
	if err != nil {
		slog.Warn("could not locate repository config", slog.Any("error", err))

		return files
	}

	return append(files, gitConfig)
}

type explanation struct {
	Context       *repoctx.Context `json:"context"`
	Profiles      []profileScore   `json:"profiles"`
	MinConfidence float64          `json:"minConfidence"`
}

type profileScore struct {
	Name         string               `json:"name"`
	MatchedRules []detect.MatchedRule `json:"matchedRules"`
	Confidence   float64              `json:"confidence"`
	Detected     bool                 `json:"detected"`
}

func (da *DetectArgs) explain(cmd *cobra.Command, a *app, printer *Printer, path string) error {
	ctx := cmd.Context()

	profiles, err := a.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}

	rc, err := a.builder.Build(ctx, path)
	if err != nil {
		return fmt.Errorf("build repository context: %w", err)
	}

	// Score with no threshold so profiles below it still show their scores.
	cfg := a.detector.Config()
	minConfidence := cfg.MinConfidence
	cfg.MinConfidence = 0
	cfg.EnableCache = false

	scorer, err := detect.NewDetector(a.store, a.builder, cfg)
	if err != nil {
		return fmt.Errorf("create detector: %w", err)
	}

	ex := explanation{
		Context:       rc,
		MinConfidence: minConfidence,
		Profiles:      make([]profileScore, 0, len(profiles)),
	}

	for _, p := range profiles {
		ps := profileScore{Name: p.Name, MatchedRules: []detect.MatchedRule{}}

		result, ok := scorer.ScoreProfile(ctx, p, rc)
		if ok {
			ps.Confidence = result.Confidence
			ps.MatchedRules = result.MatchedRules
			ps.Detected = result.Confidence >= ex.MinConfidence
		}

		ex.Profiles = append(ex.Profiles, ps)
	}

	slices.SortStableFunc(ex.Profiles, func(x, y profileScore) int {
		if c := cmp.Compare(y.Confidence, x.Confidence); c != 0 {
			return c
		}

		return strings.Compare(x.Name, y.Name)
	})

	return printer.Print(ex, func(w io.Writer) error {
		return writeExplanation(w, ex)
	})
}

func writeResult(w io.Writer, r detect.Result) error {
	return writeLines(w,
		titleStyle.Render(r.Profile.Name)+" "+r.Profile.Identity(),
		r.Reason,
		subtleStyle.Render("confidence "+formatScore(r.Confidence)),
	)
}

func writeResults(w io.Writer, results []detect.Result) error {
	if len(results) == 0 {
		return writeLines(w, subtleStyle.Render("No profile detected."))
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Profile.Name,
			formatScore(r.Confidence),
			r.Profile.Identity(),
			ruleSummary(r.MatchedRules),
		})
	}

	return writeLines(w, renderTable([]string{"Profile", "Confidence", "Identity", "Rules"}, rows))
}

func writeExplanation(w io.Writer, ex explanation) error {
	c := ex.Context

	repo := c.RepoRoot
	if repo == "" {
		repo = subtleStyle.Render("(not a repository)")
	}

	lines := []string{
		titleStyle.Render("Context"),
		"  directory: " + c.WorkingDir,
		"  repository: " + repo,
		"  hostname: " + c.Hostname,
		"  identity: " + identity(c.CurrentName, c.CurrentEmail),
	}
	for _, r := range c.Remotes {
		lines = append(lines, fmt.Sprintf("  remote %s: %s", r.Name, strings.Join(r.URLs(), ", ")))
	}

	rows := make([][]string, 0, len(ex.Profiles))
	for _, ps := range ex.Profiles {
		detected := ""
		if ps.Detected {
			detected = "yes"
		}

		rows = append(rows, []string{ps.Name, formatScore(ps.Confidence), detected, ruleSummary(ps.MatchedRules)})
	}

	lines = append(lines,
		"",
		titleStyle.Render("Profiles")+subtleStyle.Render(" (minimum confidence "+formatScore(ex.MinConfidence)+")"),
		renderTable([]string{"Profile", "Confidence", "Detected", "Rules"}, rows),
	)

	return writeLines(w, lines...)
}

func ruleSummary(matched []detect.MatchedRule) string {
	parts := make([]string, 0, len(matched))
	for _, m := range matched {
		parts = append(parts, fmt.Sprintf("%s=%s", m.RuleName, formatScore(m.Confidence)))
	}

	return strings.Join(parts, " ")
}

func identity(name, email string) string {
	switch {
	case name == "" && email == "":
		return subtleStyle.Render("(unset)")
	case name == "":
		return email
	case email == "":
		return name
	}

	return (&profile.Profile{GitUserName: name, GitUserEmail: email}).Identity()
}
