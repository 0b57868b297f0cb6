// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package dev

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/editors"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/env"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/events"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/transfer"
	"github.com/DataDog/datadog-agent-dev-sub000/test/testutil"
)

const containerName = "dda-linux-container-default"

type fixture struct {
	host     env.Host
	runner   *testutil.RecordingRunner
	recorder *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	work := filepath.Join(root, "src", "datadog-agent")
	require.NoError(t, os.MkdirAll(work, 0o755))

	runner := testutil.NewRecordingRunner()
	recorder := &events.Recorder{}
	return &fixture{
		host: env.Host{
			DataDir:      filepath.Join(root, "data"),
			SSHDir:       filepath.Join(root, ".ssh"),
			WorkDir:      work,
			OS:           "linux",
			UID:          1000,
			GID:          1001,
			Hostname:     "devbox",
			Runner:       runner,
			Publisher:    recorder,
			WaitTimeout:  time.Second,
			WaitInterval: time.Millisecond,
		},
		runner:   runner,
		recorder: recorder,
	}
}

func (f *fixture) container(t *testing.T, mutate func(*Config)) *LinuxContainer {
	t.Helper()
	config := DefaultConfig()
	if mutate != nil {
		mutate(&config)
	}
	c, err := New(f.host, "", config)
	require.NoError(t, err)
	return c
}

func (f *fixture) dockerVerbs() []string {
	var verbs []string
	for _, call := range f.runner.Calls() {
		if call.Command.Name == "docker" {
			verbs = append(verbs, call.Command.Args[0])
		}
	}
	return verbs
}

func (f *fixture) sshCommands() []string {
	var commands []string
	for _, call := range f.runner.Calls() {
		if call.Command.Name == "ssh" {
			args := call.Command.Args
			commands = append(commands, args[len(args)-1])
		}
	}
	return commands
}

func TestLinuxContainer_Naming(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, nil)

	assert.Equal(t, containerName, c.ContainerName())
	assert.Equal(t, 61938, c.SSHPort())
	assert.Equal(t, 50069, c.MCPPort())
	assert.Equal(t, filepath.Join(f.host.DataDir, "env", "dev", "linux-container", "default", "config.json"), c.ConfigFile())
	assert.Equal(t, "/root/repos/datadog-agent", c.RepoPath(""))
	assert.Equal(t, "/root/repos/integrations-core", c.RepoPath("integrations-core"))
}

func TestLinuxContainer_StartFromNothing(t *testing.T) {
	f := newFixture(t)
	f.host.GitName = "Jane Doe"
	f.host.GitEmail = "jane@example.com"
	f.runner.On([]string{"logs"}, testutil.Response{Stdout: "Server listening on :: port 22\n"})
	c := f.container(t, nil)

	err := c.Start(context.Background(), models.Status(models.StateNonexistent))

	require.NoError(t, err)
	assert.Equal(t, []string{"pull", "run", "logs"}, f.dockerVerbs())

	shared := filepath.Join(f.host.DataDir, "env", "dev", "linux-container", ".shared")
	staging := filepath.Join(f.host.DataDir, "env", "dev", "linux-container", "default", ".shared")
	expected := []string{
		"docker", "run", "--pull", "never", "-d", "--name", containerName,
		"-p", "61938:22",
		"-p", "50069:9000",
		"-v", "/var/run/docker.sock:/var/run/docker.sock",
		"-e", "HOST_UID=1000",
		"-e", "HOST_GID=1001",
		"-e", "DD_SHELL",
		"-e", "DDA_USER_MACHINE_ID",
		"-e", "GIT_AUTHOR_NAME",
		"-e", "GIT_AUTHOR_EMAIL",
		"--mount", "type=bind,src=" + shared + ",dst=/root/.shared",
		"--mount", "type=bind,src=" + staging + ",dst=/root/.staging",
	}
	for _, category := range cacheCategories {
		expected = append(expected, "--mount",
			"type=volume,src=dda-env-dev-linux-container-"+category.name+",dst="+category.path)
	}
	expected = append(expected,
		"-v", f.host.WorkDir+":/root/repos/datadog-agent",
		"datadog/agent-dev-env-linux",
	)

	run := testutil.SingleCall(t, f.runner, "run")
	assert.Equal(t, expected, run.Argv())

	machineID, err := env.MachineID(f.host.DataDir)
	require.NoError(t, err)
	assert.Equal(t, "zsh", run.Command.Env["DD_SHELL"])
	assert.Equal(t, machineID, run.Command.Env["DDA_USER_MACHINE_ID"])
	assert.Equal(t, "Jane Doe", run.Command.Env["GIT_AUTHOR_NAME"])
	assert.Equal(t, "jane@example.com", run.Command.Env["GIT_AUTHOR_EMAIL"])

	assert.DirExists(t, shared)
	assert.DirExists(t, staging)
	assert.FileExists(t, c.ConfigFile())

	sshConfig, err := os.ReadFile(filepath.Join(f.host.SSHDir, ".dda", "localhost"))
	require.NoError(t, err)
	assert.NotContains(t, string(sshConfig), "Port")

	assert.Equal(t, []string{
		"Pulling image: datadog/agent-dev-env-linux",
		"Creating and starting container: " + containerName,
		"Waiting for container: " + containerName,
	}, f.recorder.Messages())
}

func TestLinuxContainer_StartOptionalFlags(t *testing.T) {
	f := newFixture(t)
	f.host.OS = "windows"
	f.runner.On([]string{"logs"}, testutil.Response{Stdout: "Server listening on :: port 22"})
	c := f.container(t, func(config *Config) {
		config.NoPull = true
		config.Arch = "arm64"
		config.Shell = "bash"
		config.ExtraVolumeSpecs = []string{"/tmp/data:/data:ro"}
		config.ExtraMountSpecs = []string{"type=tmpfs,dst=/scratch"}
	})

	require.NoError(t, c.Start(context.Background(), models.Status(models.StateNonexistent)))

	testutil.AssertNoCallsWith(t, f.runner, "pull")
	argv := testutil.SingleCall(t, f.runner, "run").Argv()
	assert.Equal(t, []string{"--platform", "linux/arm64"}, argv[7:9])
	assert.NotContains(t, argv, "HOST_UID=1000")
	assert.NotContains(t, argv, "GIT_AUTHOR_NAME")
	assert.Contains(t, argv, "type=volume,src=dda-env-dev-linux-container-arm64-go_mod_cache,dst=/go/pkg/mod")
	assert.Equal(t, []string{
		"-v", "/tmp/data:/data:ro",
		"--mount", "type=tmpfs,dst=/scratch",
		"datadog/agent-dev-env-linux",
	}, argv[len(argv)-5:])
}

func TestLinuxContainer_StartResolvesWorktree(t *testing.T) {
	f := newFixture(t)
	worktree := filepath.Join(filepath.Dir(f.host.WorkDir), "agent-feature")
	require.NoError(t, os.MkdirAll(worktree, 0o755))
	f.host.WorkDir = worktree
	f.runner.On([]string{"-C", worktree, "remote"}, testutil.Response{Stdout: "git@github.com:DataDog/datadog-agent.git\n"})
	f.runner.On([]string{"logs"}, testutil.Response{Stdout: "Server listening on :: port 22"})
	c := f.container(t, func(config *Config) { config.NoPull = true })

	require.NoError(t, c.Start(context.Background(), models.Status(models.StateNonexistent)))

	assert.Contains(t, testutil.SingleCall(t, f.runner, "run").Argv(), worktree+":/root/repos/datadog-agent")
}

func TestLinuxContainer_StartRepositoryNotFound(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, func(config *Config) { config.Repos = []string{"integrations-core"} })

	err := c.Start(context.Background(), models.Status(models.StateNonexistent))

	var notFound *env.RepositoryNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "integrations-core", notFound.Repo)
	assert.Empty(t, f.dockerVerbs())
	assert.NoFileExists(t, c.ConfigFile())
}

func TestLinuxContainer_StartClone(t *testing.T) {
	f := newFixture(t)
	f.host.WorkDir = t.TempDir()
	f.runner.On([]string{"logs"}, testutil.Response{Stdout: "Server listening on :: port 22"})
	c := f.container(t, func(config *Config) {
		config.Clone = true
		config.NoPull = true
		config.Repos = []string{"datadog-agent@7.50.x", "integrations-core"}
	})

	require.NoError(t, c.Start(context.Background(), models.Status(models.StateNonexistent)))

	for _, arg := range testutil.SingleCall(t, f.runner, "run").Argv() {
		assert.NotContains(t, arg, "/root/repos/")
	}
	assert.Equal(t, []string{
		"cd /root && git dd-clone datadog-agent 7.50.x",
		"cd /root && git dd-clone integrations-core",
	}, f.sshCommands())
	assert.Contains(t, f.recorder.Messages(), "Cloning repository: datadog-agent@7.50.x")
	assert.Contains(t, f.recorder.Messages(), "Cloning repository: integrations-core")
}

func TestLinuxContainer_StartReadinessTimeout(t *testing.T) {
	f := newFixture(t)
	f.host.WaitTimeout = 20 * time.Millisecond
	f.runner.On([]string{"logs"}, testutil.Response{Stdout: "booting"})
	c := f.container(t, func(config *Config) { config.NoPull = true })

	err := c.Start(context.Background(), models.Status(models.StateNonexistent))

	require.Error(t, err)
	assert.NoFileExists(t, c.ConfigFile())
	testutil.AssertNoCallsWith(t, f.runner, "rm")
}

func TestLinuxContainer_StartFromStopped(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, nil)

	require.NoError(t, c.Start(context.Background(), models.Status(models.StateStopped)))

	assert.Equal(t, []string{"start"}, f.dockerVerbs())
	assert.Equal(t, []string{"docker", "start", containerName}, testutil.SingleCall(t, f.runner, "start").Argv())
	assert.FileExists(t, c.ConfigFile())
}

func TestLinuxContainer_StopAndRemove(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, nil)
	require.NoError(t, env.SaveJSON(c.ConfigFile(), c.Config()))

	require.NoError(t, c.Stop(context.Background(), models.Status(models.StateStarted)))
	require.NoError(t, c.Remove(context.Background(), models.Status(models.StateStopped)))

	assert.Equal(t, []string{"docker", "stop", "-t", "0", containerName}, testutil.SingleCall(t, f.runner, "stop").Argv())
	assert.Equal(t, []string{"docker", "rm", "-f", containerName}, testutil.SingleCall(t, f.runner, "rm").Argv())
	assert.NoFileExists(t, c.ConfigFile())
}

func TestLinuxContainer_Guards(t *testing.T) {
	states := []models.EnvironmentState{
		models.StateStarted, models.StateStopped, models.StateStarting, models.StateStopping,
		models.StateError, models.StateNonexistent, models.StateUnknown,
	}
	ops := map[env.Operation]func(*LinuxContainer, models.EnvironmentStatus) error{
		env.OpStart: func(c *LinuxContainer, s models.EnvironmentStatus) error { return c.Start(context.Background(), s) },
		env.OpStop:  func(c *LinuxContainer, s models.EnvironmentStatus) error { return c.Stop(context.Background(), s) },
		env.OpRemove: func(c *LinuxContainer, s models.EnvironmentStatus) error {
			return c.Remove(context.Background(), s)
		},
		env.OpRemoveCache: func(c *LinuxContainer, s models.EnvironmentStatus) error {
			return c.RemoveCache(context.Background(), s)
		},
	}

	for op, call := range ops {
		for _, state := range states {
			allowed := env.AllowedStates(op)
			if slices.Contains(allowed, state) {
				continue
			}
			t.Run(string(op)+"/"+string(state), func(t *testing.T) {
				f := newFixture(t)
				c := f.container(t, nil)

				err := call(c, models.Status(state))

				var precondition *env.PreconditionError
				require.ErrorAs(t, err, &precondition)
				assert.Empty(t, f.runner.Calls())
				assert.Empty(t, f.recorder.Events())
			})
		}
	}
}

func TestLinuxContainer_AccessRequiresStarted(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, nil)
	ctx := context.Background()
	stopped := models.Status(models.StateStopped)
	editor, err := editors.Get("vscode", f.runner)
	require.NoError(t, err)

	_, shellErr := c.LaunchShell(ctx, stopped, "")
	errs := []error{
		shellErr,
		c.RunCommand(ctx, stopped, []string{"ls"}, ""),
		c.Code(ctx, stopped, editor, ""),
		c.LaunchGUI(ctx, stopped),
		c.ExportFiles(ctx, stopped, []string{"/a"}, t.TempDir(), transfer.ImportOptions{}),
		c.ImportFiles(ctx, stopped, []string{"/a"}, "/b", transfer.ImportOptions{}),
	}
	for _, err := range errs {
		var precondition *env.PreconditionError
		require.ErrorAs(t, err, &precondition)
		assert.Equal(t, "Developer environment `linux-container` is in state `stopped`, must be `started`", err.Error())
	}
	assert.Empty(t, f.runner.Calls())
	assert.NoDirExists(t, f.host.SSHDir)
}

func TestLinuxContainer_LaunchShell(t *testing.T) {
	f := newFixture(t)
	f.runner.On([]string{"-A"}, testutil.Response{ExitCode: 3})
	c := f.container(t, nil)

	code, err := c.LaunchShell(context.Background(), models.Status(models.StateStarted), "")

	require.NoError(t, err)
	assert.Equal(t, 3, code)
	calls := f.runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, testutil.ModeAttach, calls[0].Mode)
	assert.Equal(t, []string{
		"ssh", "-A", "-q", "-t", "-p", "61938", "root@localhost", "--",
		"cd /root/repos/datadog-agent && zsh -l -i",
	}, calls[0].Argv())
	assert.FileExists(t, filepath.Join(f.host.SSHDir, "config"))
}

func TestLinuxContainer_SSHConfigSharedAcrossInstances(t *testing.T) {
	f := newFixture(t)
	started := models.Status(models.StateStarted)

	var ports []string
	for _, instance := range []string{"alpha", "beta"} {
		c, err := New(f.host, instance, DefaultConfig())
		require.NoError(t, err)
		_, err = c.LaunchShell(context.Background(), started, "")
		require.NoError(t, err)
		ports = append(ports, strconv.Itoa(c.SSHPort()))
	}

	data, err := os.ReadFile(filepath.Join(f.host.SSHDir, ".dda", "localhost"))
	require.NoError(t, err)
	config := string(data)
	assert.True(t, strings.HasPrefix(config, "Host localhost\n"))
	assert.NotContains(t, config, "Port")
	assert.NotContains(t, config, "User")
	assert.NotContains(t, config, "HostName")

	calls := f.runner.Calls()
	require.Len(t, calls, 2)
	for i, call := range calls {
		assert.Equal(t, []string{"-p", ports[i]}, call.Command.Args[3:5])
	}
	assert.NotEqual(t, ports[0], ports[1])
}

func TestLinuxContainer_RunCommand(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, func(config *Config) { config.Shell = "nu" })

	err := c.RunCommand(context.Background(), models.Status(models.StateStarted), []string{"go", "build", "./..."}, "integrations-core")

	require.NoError(t, err)
	require.Len(t, f.sshCommands(), 1)
	words, err := shellquote.Split(f.sshCommands()[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"sh", "-l", "-c", "cd /root/repos/integrations-core && nu -c 'go build ./...'"}, words)
}

func TestLinuxContainer_Code(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, nil)
	editor, err := editors.Get("cursor", f.runner)
	require.NoError(t, err)

	require.NoError(t, c.Code(context.Background(), models.Status(models.StateStarted), editor, ""))

	assert.Equal(t, []string{
		"cd /root && dda self mcp-server stop",
		"cd /root/repos/datadog-agent && dda self mcp-server start --port 9000",
	}, f.sshCommands())
	calls := f.runner.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, []string{"cursor", "--remote", "ssh-remote+root@localhost:61938", "/root/repos/datadog-agent"}, calls[2].Argv())
}

func TestLinuxContainer_LaunchGUI(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, nil)

	err := c.LaunchGUI(context.Background(), models.Status(models.StateStarted))

	var notSupported *env.NotSupportedError
	require.ErrorAs(t, err, &notSupported)
	assert.Equal(t, "Developer environment type does not support GUI access: linux-container", err.Error())
}

func TestNew_InvalidConfig(t *testing.T) {
	f := newFixture(t)

	_, err := New(f.host, "", Config{Repos: []string{"datadog-agent"}, Shell: "fish"})
	assert.EqualError(t, err, "Unknown shell `fish`, must be one of: bash, nu, zsh")

	config := DefaultConfig()
	config.ExtraVolumeSpecs = []string{"no-destination"}
	_, err = New(f.host, "", config)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	f := newFixture(t)

	c, err := Open(f.host, "", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c.Config())

	c, err = Open(f.host, "", map[string]any{"shell": "bash", "repos": []string{"integrations-core"}, "no_pull": true})
	require.NoError(t, err)
	assert.Equal(t, "bash", c.Config().Shell)
	assert.Equal(t, []string{"integrations-core"}, c.Config().Repos)
	require.NoError(t, env.SaveJSON(c.ConfigFile(), c.Config()))

	persisted, err := Open(f.host, "", nil)
	require.NoError(t, err)
	assert.Equal(t, c.Config(), persisted.Config())

	_, err = Open(f.host, "", map[string]any{"unknown": 1})
	assert.Error(t, err)
}

func TestRepoNameFromURL(t *testing.T) {
	tests := map[string]string{
		"https://github.com/DataDog/datadog-agent.git\n": "datadog-agent",
		"git@github.com:DataDog/integrations-core.git":   "integrations-core",
		"https://github.com/DataDog/datadog-agent/":      "datadog-agent",
		"git@host:repo":                                  "repo",
		"":                                               "",
	}
	for url, expected := range tests {
		assert.Equal(t, expected, repoNameFromURL(url), url)
	}
}

func TestSplitRepoSpec(t *testing.T) {
	repo, ref := splitRepoSpec("datadog-agent@user/test")
	assert.Equal(t, "datadog-agent", repo)
	assert.Equal(t, "user/test", ref)

	repo, ref = splitRepoSpec("integrations-core")
	assert.Equal(t, "integrations-core", repo)
	assert.Empty(t, ref)
	assert.False(t, strings.Contains(repo, "@"))
}
