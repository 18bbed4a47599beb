package rule

import (
	"context"
	"log/slog"

	"github.com/macropower/gitprof/pkg/expr"
	"github.com/macropower/gitprof/pkg/log"
	"github.com/macropower/gitprof/pkg/profile"
	"github.com/macropower/gitprof/pkg/repoctx"
)

// Expression evaluates the profile's "when" CEL expression. A true result
// scores 1.0 and false scores 0. Evaluation errors abstain.
type Expression struct {
	env *expr.Environment
}

// NewExpression creates a new [Expression] rule evaluating in env, which
// should be created with [expr.NewContextEnvironment].
func NewExpression(env *expr.Environment) *Expression {
	return &Expression{env: env}
}

func (*Expression) Name() string { return NameExpression }

func (*Expression) Priority() Priority { return PriorityHigh }

func (e *Expression) Match(ctx context.Context, p *profile.Profile, c *repoctx.Context) (float64, bool) {
	if p.When == "" {
		return 0, false
	}

	ok, err := e.env.EvalBool(p.When, Vars(c))
	if err != nil {
		log.WithContext(ctx).DebugContext(ctx, "profile expression failed",
			slog.String("profile", p.Name),
			slog.String("expression", p.When),
			slog.Any("error", err),
		)

		return 0, false
	}

	if ok {
		return 1.0, true
	}

	return 0, true
}

// Vars returns the CEL variables for c.
func Vars(c *repoctx.Context) map[string]any {
	return map[string]any{
		expr.VarDir:      c.WorkingDir,
		expr.VarRepoRoot: c.RepoRoot,
		expr.VarRemotes:  c.RemoteURLs(),
		expr.VarHostname: c.Hostname,
		expr.VarEmail:    c.CurrentEmail,
		expr.VarName:     c.CurrentName,
		expr.VarParents:  append([]string{}, c.ParentDirs...),
	}
}
