// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/agentconfig"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/config"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/env"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/env/registry"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/events"
	"github.com/DataDog/datadog-agent-dev-sub000/test/testutil"
)

type fixture struct {
	config   *config.AppConfig
	host     env.Host
	runner   *testutil.RecordingRunner
	recorder *events.Recorder
}

// newFixture loads configYAML through the regular config loader and
// points the host at temporary directories.
func newFixture(t *testing.T, configYAML string) *fixture {
	t.Helper()
	root := t.TempDir()
	data := filepath.Join(root, "data")

	path := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  data: "+data+"\n"+configYAML), 0o644))
	cfg, err := config.NewConfig(path)
	require.NoError(t, err)

	runner := testutil.NewRecordingRunner()
	recorder := &events.Recorder{}
	return &fixture{
		config: cfg,
		host: env.Host{
			DataDir:      data,
			SSHDir:       filepath.Join(root, ".ssh"),
			WorkDir:      t.TempDir(),
			OS:           "linux",
			UID:          1000,
			GID:          1000,
			Hostname:     "devbox",
			Orgs:         agentconfig.Orgs{Getenv: func(string) string { return "" }},
			Runner:       runner,
			Publisher:    recorder,
			WaitTimeout:  time.Second,
			WaitInterval: time.Millisecond,
		},
		runner:   runner,
		recorder: recorder,
	}
}

// run executes the command line args and returns its standard output.
func (f *fixture) run(args ...string) (string, error) {
	out := &bytes.Buffer{}
	host := f.host
	app := &App{
		Config:   f.config,
		Host:     &host,
		Registry: registry.New("linux"),
		Out:      out,
		Err:      io.Discard,
	}
	cmd := NewRootCommand(app)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected an exit error, got %v", err)
	return exitErr.Code
}

func TestUnknownEnvironmentType(t *testing.T) {
	f := newFixture(t, "")

	_, err := f.run("env", "dev", "status", "-t", "nope")
	assert.EqualError(t, err, "Unknown developer environment: nope (available: linux-container, windows-cloud)")

	_, err = f.run("env", "qa", "status", "--type", "nope")
	assert.EqualError(t, err, "Unknown QA environment: nope (available: linux-container)")

	_, err = f.run("env", "dev", "status", "-t", "windows-cloud")
	assert.EqualError(t, err, "Developer environment type is not implemented: windows-cloud")
	assert.Empty(t, f.runner.Calls())
}

func TestConfiguredDefaultType(t *testing.T) {
	f := newFixture(t, `
env:
  qa:
    default_type: nope
`)

	_, err := f.run("env", "qa", "status")
	assert.EqualError(t, err, "Unknown QA environment: nope (available: linux-container)")
}

func TestExitError(t *testing.T) {
	assert.EqualError(t, &ExitError{Code: 3}, "exit status 3")
}
