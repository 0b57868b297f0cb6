// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package process runs external programs such as the container runtime,
// ssh and editors.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Command describes a single program invocation.
type Command struct {
	Name string
	Args []string
	// Env is added on top of the current process environment.
	Env map[string]string
	Dir string
}

// String renders the command line for logs and errors. Env values are
// never included.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes commands.
type Runner interface {
	// Capture runs cmd and returns its stdout. A non-zero exit yields a
	// *CommandError that still carries the captured output.
	Capture(ctx context.Context, cmd Command) (string, error)
	// Run streams output to the terminal and fails on a non-zero exit.
	Run(ctx context.Context, cmd Command) error
	// Attach connects cmd to the terminal and returns its exit code. The
	// error is only set when the command could not be started.
	Attach(ctx context.Context, cmd Command) (int, error)
}

// CommandError reports a command that exited with a non-zero status.
type CommandError struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Error surfaces stderr, falling back to stdout, verbatim.
func (e *CommandError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(e.Stdout); msg != "" {
		return msg
	}
	return fmt.Sprintf("command %s failed with exit code %d", e.Command, e.ExitCode)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Compile-time check that ExecRunner implements Runner
var _ Runner = (*ExecRunner)(nil)

// NewExecRunner returns a runner wired to the process's standard streams.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) Capture(ctx context.Context, cmd Command) (string, error) {
	c := r.command(ctx, cmd)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	return stdout.String(), wrapExit(cmd, err, stdout.String(), stderr.String())
}

func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	c := r.command(ctx, cmd)
	var stderr bytes.Buffer
	c.Stdin = r.Stdin
	c.Stdout = r.Stdout
	c.Stderr = &stderr
	if r.Stderr != nil {
		c.Stderr = io.MultiWriter(r.Stderr, &stderr)
	}

	return wrapExit(cmd, c.Run(), "", stderr.String())
}

func (r *ExecRunner) Attach(ctx context.Context, cmd Command) (int, error) {
	c := r.command(ctx, cmd)
	c.Stdin = r.Stdin
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr

	err := c.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, fmt.Errorf("failed to run %s: %w", cmd.Name, err)
	}
	return 0, nil
}

func (r *ExecRunner) command(ctx context.Context, cmd Command) *exec.Cmd {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), EnvList(cmd.Env)...)
	}
	return c
}

// EnvList renders env as sorted KEY=VALUE pairs.
func EnvList(env map[string]string) []string {
	return lo.Map(EnvNames(env), func(k string, _ int) string {
		return k + "=" + env[k]
	})
}

// EnvNames returns the sorted variable names of env.
func EnvNames(env map[string]string) []string {
	keys := lo.Keys(env)
	slices.Sort(keys)
	return keys
}

func wrapExit(cmd Command, err error, stdout, stderr string) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandError{
			Command:  cmd.String(),
			ExitCode: exitErr.ExitCode(),
			Stdout:   stdout,
			Stderr:   stderr,
		}
	}
	return fmt.Errorf("failed to run %s: %w", cmd.Name, err)
}
