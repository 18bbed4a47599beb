package execs

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-shellwords"
)

var (
	// ErrCommandExecution is returned when command execution fails.
	ErrCommandExecution = errors.New("run")

	// ErrEmptyCommand is returned when a command is empty.
	ErrEmptyCommand = errors.New("empty command")

	// ErrParseCommand is returned when a command line cannot be split.
	ErrParseCommand = errors.New("parse command")
)

// Result represents the result of a command execution.
type Result struct {
	Stdout string
	Stderr string
}

// Command describes an executable and its leading arguments.
type Command struct {
	// Command is the command to execute.
	Command string `json:"command" jsonschema:"title=Command,pattern=^\\S+$"`
	// Args contains the command line arguments.
	Args []string `json:"args,omitempty" jsonschema:"title=Arguments" yaml:"args,flow,omitempty"`
	// Env contains additional KEY=VALUE pairs, applied on top of the caller's
	// environment.
	Env []string `json:"env,omitempty" jsonschema:"title=Environment Variables"`
}

// ParseCommand splits a shell-style command line into a [Command].
// Quotes and backslash escapes are honored, but no shell expansion is done.
func ParseCommand(line string) (Command, error) {
	parser := shellwords.NewParser()

	words, err := parser.Parse(line)
	if err != nil {
		return Command{}, fmt.Errorf("%w %q: %w", ErrParseCommand, line, err)
	}

	if len(words) == 0 {
		return Command{}, ErrEmptyCommand
	}

	return Command{
		Command: words[0],
		Args:    words[1:],
	}, nil
}

// GetEnv returns the environment for command execution.
func (c Command) GetEnv() []string {
	env := os.Environ()
	if len(c.Env) == 0 {
		return env
	}

	// Later entries win in [os/exec].
	return append(env, c.Env...)
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Command
	}

	return fmt.Sprintf("%s %s", c.Command, strings.Join(c.Args, " "))
}
