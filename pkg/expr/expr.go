package expr

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// Variable names declared by [NewContextEnvironment].
const (
	VarDir      = "dir"
	VarRepoRoot = "repoRoot"
	VarRemotes  = "remotes"
	VarHostname = "hostname"
	VarEmail    = "email"
	VarName     = "name"
	VarParents  = "parents"
)

var (
	// ErrCompile is returned when an expression fails to compile.
	ErrCompile = errors.New("compile expression")

	// ErrEvaluate is returned when an expression fails to evaluate.
	ErrEvaluate = errors.New("evaluate expression")

	// ErrNotBool is returned when an expression does not produce a bool.
	ErrNotBool = errors.New("expression result is not a bool")
)

// Protect CEL environment creation and compilation from concurrent access.
var celMutex sync.Mutex

// Environment provides a thread-safe wrapper around a [*cel.Env], with a
// cache of compiled programs.
type Environment struct {
	env      *cel.Env
	programs map[string]cel.Program
	mu       sync.RWMutex
}

// NewEnvironment creates a new [Environment].
func NewEnvironment(opts ...cel.EnvOption) (*Environment, error) {
	env, err := createEnvironment(opts...)
	if err != nil {
		return nil, err
	}

	return &Environment{
		env:      env,
		programs: map[string]cel.Program{},
	}, nil
}

// MustNewEnvironment creates a new [Environment] and panics on error.
func MustNewEnvironment(opts ...cel.EnvOption) *Environment {
	env, err := NewEnvironment(opts...)
	if err != nil {
		panic(err)
	}

	return env
}

// NewContextEnvironment creates an [Environment] declaring the repository
// context variables.
func NewContextEnvironment() (*Environment, error) {
	return NewEnvironment(
		cel.Variable(VarDir, cel.StringType),
		cel.Variable(VarRepoRoot, cel.StringType),
		cel.Variable(VarRemotes, cel.ListType(cel.StringType)),
		cel.Variable(VarHostname, cel.StringType),
		cel.Variable(VarEmail, cel.StringType),
		cel.Variable(VarName, cel.StringType),
		cel.Variable(VarParents, cel.ListType(cel.StringType)),
	)
}

// createEnvironment creates the [*cel.Env] using the global mutex.
func createEnvironment(opts ...cel.EnvOption) (*cel.Env, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	opts = append(opts, cel.Lib(&lib{}))

	celEnv, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return celEnv, nil
}

// Compile compiles a CEL expression and returns a program.
//
//nolint:ireturn // Following CEL's function signature.
func (e *Environment) Compile(expression string) (cel.Program, error) {
	celMutex.Lock()
	defer celMutex.Unlock()

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, issues.Err())
	}

	if !ast.OutputType().IsAssignableType(cel.BoolType) {
		return nil, fmt.Errorf("%w: %w: got %s", ErrCompile, ErrNotBool, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("create program: %w", err)
	}

	return program, nil
}

// Program returns the compiled program for expression, compiling it on
// first use.
//
//nolint:ireturn // Following CEL's function signature.
func (e *Environment) Program(expression string) (cel.Program, error) {
	e.mu.RLock()
	program, ok := e.programs[expression]
	e.mu.RUnlock()

	if ok {
		return program, nil
	}

	program, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.programs[expression] = program
	e.mu.Unlock()

	return program, nil
}

// EvalBool evaluates expression with vars and returns its boolean result.
func (e *Environment) EvalBool(expression string, vars map[string]any) (bool, error) {
	program, err := e.Program(expression)
	if err != nil {
		return false, err
	}

	out, _, err := program.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrEvaluate, err)
	}

	b, ok := out.(types.Bool)
	if !ok {
		return false, fmt.Errorf("%w: %w: got %s", ErrEvaluate, ErrNotBool, out.Type().TypeName())
	}

	return bool(b), nil
}
