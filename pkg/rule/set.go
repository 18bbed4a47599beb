package rule

import "github.com/macropower/gitprof/pkg/expr"

// All returns every rule, in descending priority order. The [Expression]
// rule evaluates in env, and is omitted when env is nil.
func All(env *expr.Environment) []Rule {
	rules := []Rule{
		RemoteURL{},
		IncludeIfDir{},
	}
	if env != nil {
		rules = append(rules, NewExpression(env))
	}

	return append(rules,
		DirectoryPath{},
		Hostname{},
		GitConfig{},
	)
}
