// Package runner runs external tools (git, patch, tar) for the pipeline.
// Everything that shells out goes through the Runner interface so the
// pipeline can be exercised without real subprocesses.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/thomas-vilte/patchrelease/internal/logger"
)

// Command describes a single invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes commands and blocks until they exit.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	env map[string]string
}

type Option func(*ExecRunner)

// WithEnv adds a variable to the environment of every command.
func WithEnv(key, value string) Option {
	return func(r *ExecRunner) {
		r.env[key] = value
	}
}

func New(opts ...Option) *ExecRunner {
	r := &ExecRunner{env: make(map[string]string)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cmd. A non-zero exit returns the populated Result together
// with an error wrapping *exec.ExitError. A missing binary returns an error
// wrapping exec.ErrNotFound and ExitCode -1.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	log := logger.FromContext(ctx)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(r.env) > 0 {
		c.Env = os.Environ()
		for k, v := range r.env {
			c.Env = append(c.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	log.Debug("running command",
		"command", cmd.String(),
		"dir", cmd.Dir)

	start := time.Now()
	err := c.Run()
	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(c, err),
	}

	log.Debug("command finished",
		"command", cmd.Name,
		"exit_code", result.ExitCode,
		"duration", time.Since(start).Round(time.Millisecond))

	if err != nil {
		return result, fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return result, nil
}

func exitCode(c *exec.Cmd, err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if c.ProcessState != nil {
		return c.ProcessState.ExitCode()
	}
	return -1
}
