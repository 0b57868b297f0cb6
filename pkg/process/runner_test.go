// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package process

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func sh(script string, env map[string]string) Command {
	return Command{Name: "sh", Args: []string{"-c", script}, Env: env}
}

func TestExecRunner_Capture(t *testing.T) {
	skipWithoutShell(t)
	runner := &ExecRunner{}

	out, err := runner.Capture(context.Background(), sh(`printf '%s' "$GREETING"`, map[string]string{"GREETING": "hello"}))
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestExecRunner_CaptureFailure(t *testing.T) {
	skipWithoutShell(t)
	runner := &ExecRunner{}

	out, err := runner.Capture(context.Background(), sh(`echo '[]'; echo 'no such container' >&2; exit 3`, nil))
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 3, cmdErr.ExitCode)
	assert.Equal(t, "[]\n", out)
	assert.Equal(t, "no such container", err.Error())
}

func TestCommandError_FallsBackToStdout(t *testing.T) {
	err := &CommandError{Command: "docker pull", ExitCode: 1, Stdout: "denied\n"}
	assert.Equal(t, "denied", err.Error())

	err = &CommandError{Command: "docker pull", ExitCode: 1}
	assert.Equal(t, "command docker pull failed with exit code 1", err.Error())
}

func TestExecRunner_Run(t *testing.T) {
	skipWithoutShell(t)
	var stdout, stderr bytes.Buffer
	runner := &ExecRunner{Stdout: &stdout, Stderr: &stderr}

	require.NoError(t, runner.Run(context.Background(), sh(`echo out; echo err >&2`, nil)))
	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())

	err := runner.Run(context.Background(), sh(`echo boom >&2; exit 2`, nil))
	assert.EqualError(t, err, "boom")
}

func TestExecRunner_RunForwardsStdin(t *testing.T) {
	skipWithoutShell(t)
	var stdout bytes.Buffer
	runner := &ExecRunner{Stdin: strings.NewReader("hello\n"), Stdout: &stdout}

	require.NoError(t, runner.Run(context.Background(), Command{Name: "cat"}))
	assert.Equal(t, "hello\n", stdout.String())
}

func TestExecRunner_Attach(t *testing.T) {
	skipWithoutShell(t)
	var stdout bytes.Buffer
	runner := &ExecRunner{Stdin: bytes.NewBufferString("ping"), Stdout: &stdout, Stderr: &bytes.Buffer{}}

	code, err := runner.Attach(context.Background(), sh(`cat; exit 7`, nil))
	require.NoError(t, err)
	assert.Equal(t, 7, code)
	assert.Equal(t, "ping", stdout.String())

	_, err = runner.Attach(context.Background(), Command{Name: "/nonexistent/binary"})
	assert.Error(t, err)
}

func TestEnvList_Sorted(t *testing.T) {
	assert.Equal(t, []string{"A=1", "B=2", "C="}, EnvList(map[string]string{"C": "", "B": "2", "A": "1"}))
}
