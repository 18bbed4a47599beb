package rule_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/gitprof/pkg/expr"
	"github.com/macropower/gitprof/pkg/log"
	"github.com/macropower/gitprof/pkg/profile"
	"github.com/macropower/gitprof/pkg/repoctx"
	"github.com/macropower/gitprof/pkg/rule"
)

func workContext() *repoctx.Context {
	return &repoctx.Context{
		WorkingDir:   "/home/me/src/company/project",
		RepoRoot:     "/home/me/src/company/project",
		CurrentEmail: "me@company.com",
		CurrentName:  "Jane Doe",
		Hostname:     "work-laptop",
		HomeDir:      "/home/me",
		Remotes: []repoctx.Remote{{
			Name:    "origin",
			URL:     "git@github.com:company/project.git",
			PushURL: "https://github.com/company/project.git",
		}},
		ParentDirs: []string{
			"/home/me/src/company/project",
			"/home/me/src/company",
			"/home/me/src",
		},
	}
}

type ruleCase struct {
	p     *profile.Profile
	c     *repoctx.Context
	want  float64
	match bool
}

func runRuleCases(t *testing.T, r rule.Rule, tcs map[string]ruleCase) {
	t.Helper()

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := tc.c
			if c == nil {
				c = workContext()
			}

			got, ok := r.Match(t.Context(), tc.p, c)
			assert.Equal(t, tc.match, ok, "abstain")
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestRemoteURL(t *testing.T) {
	t.Parallel()

	runRuleCases(t, rule.RemoteURL{}, map[string]ruleCase{
		"no repos abstains": {
			p: profile.MustNew("work"),
		},
		"exact": {
			p:     profile.MustNew("work", profile.WithRepos("git@github.com:company/project.git")),
			want:  1.0,
			match: true,
		},
		"glob": {
			p:     profile.MustNew("work", profile.WithRepos("git@github.com:company/*")),
			want:  0.95,
			match: true,
		},
		"glob on push url": {
			p:     profile.MustNew("work", profile.WithRepos("https://github.com/company/*")),
			want:  0.95,
			match: true,
		},
		"substring": {
			p:     profile.MustNew("work", profile.WithRepos("github.com:company")),
			want:  0.7,
			match: true,
		},
		"best of several patterns": {
			p: profile.MustNew("work", profile.WithRepos(
				"github.com:company",
				"git@github.com:company/*",
			)),
			want:  0.95,
			match: true,
		},
		"no match scores zero": {
			p:     profile.MustNew("work", profile.WithRepos("git@gitlab.com:other/*")),
			want:  0,
			match: true,
		},
		"no remotes scores zero": {
			p:     profile.MustNew("work", profile.WithRepos("git@github.com:company/*")),
			c:     &repoctx.Context{WorkingDir: "/tmp"},
			want:  0,
			match: true,
		},
		"question matches one character": {
			p:     profile.MustNew("work", profile.WithRepos("git@github?com:company/*", "git@githubxcom:*")),
			want:  0.95,
			match: true,
		},
	})

	assert.Equal(t, rule.NameRemoteURL, rule.RemoteURL{}.Name())
	assert.Equal(t, rule.PriorityHigh, rule.RemoteURL{}.Priority())
}

func TestDirectoryPath(t *testing.T) {
	t.Parallel()

	runRuleCases(t, rule.DirectoryPath{}, map[string]ruleCase{
		"no patterns abstains": {
			p: profile.MustNew("work"),
		},
		"whole path": {
			p:     profile.MustNew("work", profile.WithMatchPatterns("*/company/*")),
			want:  0.8,
			match: true,
		},
		"component": {
			p:     profile.MustNew("work", profile.WithMatchPatterns("comp*")),
			want:  0.8,
			match: true,
		},
		"nearest parent": {
			p:     profile.MustNew("work", profile.WithMatchPatterns("/home/me/src/company")),
			want:  0.6,
			match: true,
		},
		"farther parent": {
			p:     profile.MustNew("work", profile.WithMatchPatterns("/home/me/src")),
			want:  0.5,
			match: true,
		},
		"parent score floor": {
			p: profile.MustNew("work", profile.WithMatchPatterns("/a")),
			c: &repoctx.Context{
				WorkingDir: "/a/b/c/d/e/f",
				ParentDirs: []string{"/a/b/c/d/e/f", "/a/b/c/d/e", "/a/b/c/d", "/a/b/c", "/a/b", "/a"},
			},
			want:  0.4,
			match: true,
		},
		"no match scores zero": {
			p:     profile.MustNew("work", profile.WithMatchPatterns("personal")),
			want:  0,
			match: true,
		},
	})
}

func TestIncludeIfDir(t *testing.T) {
	t.Parallel()

	runRuleCases(t, rule.IncludeIfDir{}, map[string]ruleCase{
		"no dirs abstains": {
			p: profile.MustNew("work"),
		},
		"inside": {
			p:     profile.MustNew("work", profile.WithIncludeIfDirs("/home/me/src/company")),
			want:  0.9,
			match: true,
		},
		"equal": {
			p:     profile.MustNew("work", profile.WithIncludeIfDirs("/home/me/src/company/project/")),
			want:  0.9,
			match: true,
		},
		"home expansion": {
			p:     profile.MustNew("work", profile.WithIncludeIfDirs("~/src/company")),
			want:  0.9,
			match: true,
		},
		"sibling prefix is not inside": {
			p: profile.MustNew("work", profile.WithIncludeIfDirs("/home/me/src/comp")),
		},
		"outside abstains": {
			p: profile.MustNew("work", profile.WithIncludeIfDirs("/home/me/personal")),
		},
		"parent equals dir": {
			p: profile.MustNew("work", profile.WithIncludeIfDirs("/srv/work")),
			c: &repoctx.Context{
				WorkingDir: "../work/repo",
				ParentDirs: []string{"/srv/work/repo", "/srv/work", "/srv"},
			},
			want:  0.85,
			match: true,
		},
	})
}

func TestExpandHome(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/home/me", rule.ExpandHome("~", "/home/me"))
	assert.Equal(t, "/home/me/work", rule.ExpandHome("~/work/", "/home/me"))
	assert.Equal(t, "~/work", rule.ExpandHome("~/work", ""))
	assert.Equal(t, "~other/work", rule.ExpandHome("~other/work", "/home/me"))
	assert.Equal(t, "/srv/work", rule.ExpandHome("/srv//work", "/home/me"))
}

func TestHostname(t *testing.T) {
	t.Parallel()

	runRuleCases(t, rule.Hostname{}, map[string]ruleCase{
		"no patterns abstains": {
			p: profile.MustNew("work"),
		},
		"exact": {
			p:     profile.MustNew("work", profile.WithHostPatterns("work-*", "work-laptop")),
			want:  0.9,
			match: true,
		},
		"glob": {
			p:     profile.MustNew("work", profile.WithHostPatterns("work-*")),
			want:  0.7,
			match: true,
		},
		"no match abstains": {
			p: profile.MustNew("work", profile.WithHostPatterns("home-*")),
		},
	})
}

func TestGitConfig(t *testing.T) {
	t.Parallel()

	runRuleCases(t, rule.GitConfig{}, map[string]ruleCase{
		"email": {
			p:     profile.MustNew("work", profile.WithEmail("me@company.com")),
			want:  0.6,
			match: true,
		},
		"email and name capped": {
			p: profile.MustNew("work",
				profile.WithEmail("me@company.com"),
				profile.WithUserName("Jane Doe"),
			),
			want:  1.0,
			match: true,
		},
		"name only": {
			p: profile.MustNew("work",
				profile.WithEmail("other@company.com"),
				profile.WithUserName("Jane Doe"),
			),
			want:  0.5,
			match: true,
		},
		"no match abstains": {
			p: profile.MustNew("work", profile.WithEmail("me@personal.dev")),
		},
		"empty identity abstains": {
			p: profile.MustNew("work"),
			c: &repoctx.Context{},
		},
	})
}

func TestExpression(t *testing.T) {
	t.Parallel()

	env, err := expr.NewContextEnvironment()
	require.NoError(t, err)

	runRuleCases(t, rule.NewExpression(env), map[string]ruleCase{
		"no expression abstains": {
			p: profile.MustNew("work"),
		},
		"true": {
			p:     profile.MustNew("work", profile.WithWhen(`remotes.exists(r, glob("*company*", r))`)),
			want:  1.0,
			match: true,
		},
		"false": {
			p:     profile.MustNew("work", profile.WithWhen(`hostname == "home-desktop"`)),
			want:  0,
			match: true,
		},
		"parents": {
			p:     profile.MustNew("work", profile.WithWhen(`"/home/me/src" in parents && email != ""`)),
			want:  1.0,
			match: true,
		},
		"error abstains": {
			p: profile.MustNew("work", profile.WithWhen(`remotes[9] == ""`)),
		},
	})
}

func TestExpressionLogsToContextLogger(t *testing.T) {
	t.Parallel()

	env, err := expr.NewContextEnvironment()
	require.NoError(t, err)

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := log.NewContext(t.Context(), logger)

	p := profile.MustNew("work", profile.WithWhen(`remotes[9] == ""`))

	_, ok := rule.NewExpression(env).Match(ctx, p, workContext())
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "profile expression failed")
	assert.Contains(t, buf.String(), "profile=work")
}

func TestAll(t *testing.T) {
	t.Parallel()

	names := func(rules []rule.Rule) []string {
		out := []string{}
		for _, r := range rules {
			out = append(out, r.Name())
		}

		return out
	}

	assert.Equal(t, []string{
		rule.NameRemoteURL,
		rule.NameIncludeIfDir,
		rule.NameDirectoryPath,
		rule.NameHostname,
		rule.NameGitConfig,
	}, names(rule.All(nil)))

	rules := rule.All(expr.MustNewEnvironment())
	assert.Len(t, rules, 6)
	assert.Contains(t, names(rules), rule.NameExpression)

	for i := 1; i < len(rules); i++ {
		assert.GreaterOrEqual(t, rules[i-1].Priority(), rules[i].Priority())
	}
}

func TestPriority(t *testing.T) {
	t.Parallel()

	tcs := map[rule.Priority]struct {
		name   string
		weight float64
	}{
		rule.PriorityExact:  {name: "exact", weight: 1.0},
		rule.PriorityHigh:   {name: "high", weight: 0.75},
		rule.PriorityMedium: {name: "medium", weight: 0.5},
		rule.PriorityLow:    {name: "low", weight: 0.25},
	}

	for prio, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.InDelta(t, tc.weight, prio.Weight(), 1e-9)

			text, err := prio.MarshalText()
			require.NoError(t, err)
			assert.Equal(t, tc.name, string(text))

			var got rule.Priority
			require.NoError(t, got.UnmarshalText(text))
			assert.Equal(t, prio, got)
		})
	}

	var p rule.Priority
	require.ErrorIs(t, p.UnmarshalText([]byte("urgent")), rule.ErrUnknownPriority)
	assert.Equal(t, "priority(9)", rule.Priority(9).String())
}
