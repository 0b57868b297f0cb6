// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dev implements developer environments backed by a local container
// reachable over ssh.
package dev

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/editors"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/env"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/logger"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/shells"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/ssh"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/events"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/service"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/network"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/process"
)

// Type is the registry name of this implementation.
const Type = "linux-container"

const (
	homeDir        = "/root"
	sshServer      = "localhost"
	sshContainer   = 22
	mcpContainer   = 9000
	readinessMark  = "Server listening on :: port 22"
	dockerSocket   = "/var/run/docker.sock"
	sharedMount    = homeDir + "/.shared"
	stagingMount   = homeDir + "/.staging"
	sharedDirName  = ".shared"
	reposMountRoot = homeDir + "/repos"
)

// LinuxContainer is a developer environment running in a Linux container.
type LinuxContainer struct {
	host   env.Host
	id     env.Identity
	config Config
	svc    *service.Service
	runner process.Runner
	shell  shells.Shell
	name   string
}

// Compile-time check that LinuxContainer implements env.DeveloperEnvironment
var _ env.DeveloperEnvironment = (*LinuxContainer)(nil)

// New returns the instance of host configured with config.
func New(host env.Host, instance string, config Config) (*LinuxContainer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	shell, err := shells.Get(config.Shell)
	if err != nil {
		return nil, err
	}

	id := env.NewIdentity(env.KindDev, Type, instance)
	return &LinuxContainer{
		host:   host,
		id:     id,
		config: config,
		svc:    host.Service(config.CLI),
		runner: host.CommandRunner(),
		shell:  shell,
		name:   fmt.Sprintf("dda-%s-%s", id.Type, id.Instance),
	}, nil
}

// Open returns the instance of host. A nil overrides map selects the
// persisted configuration, or the defaults for an environment that does not
// exist yet; otherwise overrides are applied on top of the defaults.
func Open(host env.Host, instance string, overrides map[string]any) (*LinuxContainer, error) {
	config := DefaultConfig()
	if overrides == nil {
		path := filepath.Join(env.NewIdentity(env.KindDev, Type, instance).Dir(host.DataDir), env.ConfigFileName)
		if _, err := env.LoadJSON(path, &config); err != nil {
			return nil, err
		}
	} else if err := env.DecodeConfig(overrides, &config); err != nil {
		return nil, err
	}
	return New(host, instance, config)
}

func (c *LinuxContainer) Identity() env.Identity { return c.id }

func (c *LinuxContainer) Config() Config { return c.config }

// ContainerName is the name of the backing container.
func (c *LinuxContainer) ContainerName() string { return c.name }

// SSHPort is the host port forwarded to the container's ssh daemon.
func (c *LinuxContainer) SSHPort() int {
	return network.DeriveDynamicPort(c.name + "-ssh")
}

// MCPPort is the host port forwarded to the container's MCP server.
func (c *LinuxContainer) MCPPort() int {
	return network.DeriveDynamicPort(c.name + "-mcp")
}

func (c *LinuxContainer) dir() string {
	return c.id.Dir(c.host.DataDir)
}

func (c *LinuxContainer) ConfigFile() string {
	return filepath.Join(c.dir(), env.ConfigFileName)
}

// GlobalSharedDir is shared by every instance of the type.
func (c *LinuxContainer) GlobalSharedDir() string {
	return filepath.Join(c.id.TypeDir(c.host.DataDir), sharedDirName)
}

// StagingDir holds files in transit between host and container.
func (c *LinuxContainer) StagingDir() string {
	return filepath.Join(c.dir(), sharedDirName)
}

// RepoPath is where repo lives inside the container. An empty repo selects
// the default repository.
func (c *LinuxContainer) RepoPath(repo string) string {
	if repo == "" {
		repo = c.config.DefaultRepo()
	}
	return reposMountRoot + "/" + repo
}

func (c *LinuxContainer) Status(ctx context.Context) (models.EnvironmentStatus, error) {
	return c.svc.Status(ctx, c.name)
}

func (c *LinuxContainer) Start(ctx context.Context, status models.EnvironmentStatus) error {
	if err := env.CheckTransition(c.id, env.OpStart, status); err != nil {
		return err
	}

	return env.WithLock(c.dir(), func() error {
		log := logger.GetEnvLogger()
		log.Info().Str("env", c.id.String()).Str("state", string(status.State)).Msg("Starting environment")

		var err error
		if status.State == models.StateStopped {
			err = c.svc.Start(ctx, c.name)
		} else {
			err = c.create(ctx)
		}
		if err != nil {
			return err
		}
		return env.SaveJSON(c.ConfigFile(), c.config)
	})
}

func (c *LinuxContainer) create(ctx context.Context) error {
	repos, err := c.localRepos(ctx)
	if err != nil {
		return err
	}

	if !c.config.NoPull {
		if err := c.svc.Pull(ctx, c.name, c.config.Image, c.config.Arch); err != nil {
			return err
		}
	}

	for _, dir := range []string{c.GlobalSharedDir(), c.StagingDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	machineID, err := c.host.MachineID()
	if err != nil {
		return err
	}

	run := models.NewContainerConfig(c.name, c.config.Image).
		PullNever().
		Platform(c.config.Arch).
		PublishTo(c.SSHPort(), sshContainer).
		PublishTo(c.MCPPort(), mcpContainer).
		Volume(dockerSocket + ":" + dockerSocket)
	if c.host.OS != "windows" {
		run.EnvInline("HOST_UID", strconv.Itoa(c.host.UID)).
			EnvInline("HOST_GID", strconv.Itoa(c.host.GID))
	}
	run.Env("DD_SHELL", c.config.Shell).
		Env("DDA_USER_MACHINE_ID", machineID)
	if c.host.GitName != "" {
		run.Env("GIT_AUTHOR_NAME", c.host.GitName)
	}
	if c.host.GitEmail != "" {
		run.Env("GIT_AUTHOR_EMAIL", c.host.GitEmail)
	}

	run.Mount(models.BindMount(c.GlobalSharedDir(), sharedMount)).
		Mount(models.BindMount(c.StagingDir(), stagingMount))
	for _, volume := range c.cacheVolumes() {
		run.Mount(models.VolumeMount(volume.name, volume.path))
	}
	for _, repo := range repos {
		run.Volume(repo.hostPath + ":" + c.RepoPath(repo.name))
	}
	for _, spec := range c.config.ExtraVolumeSpecs {
		run.Volume(spec)
	}
	for _, spec := range c.config.ExtraMountSpecs {
		run.MountSpec(spec)
	}

	if err := c.svc.Create(ctx, run); err != nil {
		return err
	}
	if err := c.svc.WaitForLog(ctx, c.name, readinessMark); err != nil {
		return err
	}
	if err := c.ensureSSHConfig(); err != nil {
		return err
	}

	if c.config.Clone {
		return c.cloneRepos(ctx)
	}
	return nil
}

type localRepo struct {
	name     string
	hostPath string
}

// localRepos resolves the checkouts to mount. Clone mode mounts none.
func (c *LinuxContainer) localRepos(ctx context.Context) ([]localRepo, error) {
	if c.config.Clone {
		return nil, nil
	}

	resolver := repoResolver{runner: c.runner, workDir: c.host.WorkDir}
	repos := make([]localRepo, 0, len(c.config.Repos))
	for _, spec := range c.config.Repos {
		name, _ := splitRepoSpec(spec)
		path, err := resolver.resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		repos = append(repos, localRepo{name: name, hostPath: path})
	}
	return repos, nil
}

func (c *LinuxContainer) cloneRepos(ctx context.Context) error {
	for _, spec := range c.config.Repos {
		repo, ref := splitRepoSpec(spec)
		args := []string{"git", "dd-clone", repo}
		message := "Cloning repository: " + repo
		if ref != "" {
			args = append(args, ref)
			message += "@" + ref
		}

		c.svc.Notify(events.EnvironmentCloning, c.name, message)
		if err := c.runner.Run(ctx, c.remote(c.shell.FormatCommand(args, homeDir))); err != nil {
			return fmt.Errorf("failed to clone %s: %w", spec, err)
		}
	}
	return nil
}

func (c *LinuxContainer) Stop(ctx context.Context, status models.EnvironmentStatus) error {
	if err := env.CheckTransition(c.id, env.OpStop, status); err != nil {
		return err
	}

	return env.WithLock(c.dir(), func() error {
		var immediately time.Duration
		return c.svc.Stop(ctx, c.name, &immediately)
	})
}

func (c *LinuxContainer) Remove(ctx context.Context, status models.EnvironmentStatus) error {
	if err := env.CheckTransition(c.id, env.OpRemove, status); err != nil {
		return err
	}

	return env.WithLock(c.dir(), func() error {
		if err := c.svc.Remove(ctx, c.name); err != nil {
			return err
		}
		return env.RemoveFile(c.ConfigFile())
	})
}

func (c *LinuxContainer) LaunchShell(ctx context.Context, status models.EnvironmentStatus, repo string) (int, error) {
	if err := c.requireSSH(status); err != nil {
		return 0, err
	}
	return c.runner.Attach(ctx, c.remote(c.shell.LoginCommand(c.RepoPath(repo))))
}

func (c *LinuxContainer) RunCommand(ctx context.Context, status models.EnvironmentStatus, command []string, repo string) error {
	if err := c.requireSSH(status); err != nil {
		return err
	}
	return c.runner.Run(ctx, c.remote(c.shell.FormatCommand(command, c.RepoPath(repo))))
}

// Code restarts the MCP server for repo and opens repo in editor.
func (c *LinuxContainer) Code(ctx context.Context, status models.EnvironmentStatus, editor editors.Editor, repo string) error {
	if err := c.requireSSH(status); err != nil {
		return err
	}

	repoPath := c.RepoPath(repo)
	c.svc.Notify(events.EnvironmentMCP, c.name, "Restarting MCP server")
	stop := []string{"dda", "self", "mcp-server", "stop"}
	if err := c.runner.Run(ctx, c.remote(c.shell.FormatCommand(stop, homeDir))); err != nil {
		return fmt.Errorf("failed to stop MCP server: %w", err)
	}
	start := []string{"dda", "self", "mcp-server", "start", "--port", strconv.Itoa(mcpContainer)}
	if err := c.runner.Run(ctx, c.remote(c.shell.FormatCommand(start, repoPath))); err != nil {
		return fmt.Errorf("failed to start MCP server: %w", err)
	}

	return editor.OpenViaSSH(ctx, sshServer, c.SSHPort(), repoPath)
}

func (c *LinuxContainer) LaunchGUI(_ context.Context, status models.EnvironmentStatus) error {
	if err := env.RequireStarted(c.id, status); err != nil {
		return err
	}
	return &env.NotSupportedError{Identity: c.id, Capability: "GUI access"}
}

// requireSSH checks the container is running and that ssh knows about it.
func (c *LinuxContainer) requireSSH(status models.EnvironmentStatus) error {
	if err := env.RequireStarted(c.id, status); err != nil {
		return err
	}
	return c.ensureSSHConfig()
}

func (c *LinuxContainer) ensureSSHConfig() error {
	return ssh.WriteServerConfig(c.host.SSHDir, sshServer, ssh.SandboxOptions())
}

// remote runs command inside the container over ssh.
func (c *LinuxContainer) remote(command string) process.Command {
	argv := append(ssh.BaseCommand("root@"+sshServer, c.SSHPort()), command)
	return process.Command{Name: argv[0], Args: argv[1:]}
}
