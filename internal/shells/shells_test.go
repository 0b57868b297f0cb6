// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package shells

import (
	"testing"

	"github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	for _, name := range []string{"bash", "zsh", "nu"} {
		shell, err := Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, shell.Name())
	}

	_, err := Get("fish")
	var unknown *UnknownShellError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Unknown shell `fish`, must be one of: bash, nu, zsh", err.Error())
}

func TestPosixShell(t *testing.T) {
	shell, err := Get("zsh")
	require.NoError(t, err)

	assert.Equal(t, "cd /root/repos/datadog-agent && zsh -l -i", shell.LoginCommand("/root/repos/datadog-agent"))
	assert.Equal(t, "cd /root && git dd-clone datadog-agent", shell.FormatCommand([]string{"git", "dd-clone", "datadog-agent"}, "/root"))
}

func TestPosixShell_QuotesArguments(t *testing.T) {
	shell, err := Get("bash")
	require.NoError(t, err)

	command := shell.FormatCommand([]string{"echo", "hello world", "a&b"}, "/root/my repo")

	words, err := shellquote.Split(command)
	require.NoError(t, err)
	assert.Equal(t, []string{"cd", "/root/my repo", "&&", "echo", "hello world", "a&b"}, words)
}

func TestNuShell(t *testing.T) {
	shell, err := Get("nu")
	require.NoError(t, err)

	words, err := shellquote.Split(shell.LoginCommand("/root/repos/datadog-agent"))
	require.NoError(t, err)
	assert.Equal(t, []string{"sh", "-l", "-c", "cd /root/repos/datadog-agent && nu -l -i"}, words)

	words, err = shellquote.Split(shell.FormatCommand([]string{"ls", "-la"}, "/root"))
	require.NoError(t, err)
	assert.Equal(t, []string{"sh", "-l", "-c", "cd /root && nu -c 'ls -la'"}, words)
}
