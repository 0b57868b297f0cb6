// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package env

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/agentconfig"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/config"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/ssh"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/docker"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/events"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/service"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/network"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/process"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/retry"
)

// Host is everything environments need to know about the machine they are
// managed from. Tests build it directly with temporary directories and a
// recording runner.
type Host struct {
	DataDir string
	SSHDir  string
	WorkDir string
	// OS is a GOOS value and selects platform specific behavior.
	OS       string
	UID      int
	GID      int
	Hostname string
	GitName  string
	GitEmail string
	Orgs     agentconfig.Orgs

	Runner    process.Runner
	Publisher events.Publisher

	WaitTimeout  time.Duration
	WaitInterval time.Duration
}

// NewHost describes the current machine according to cfg.
func NewHost(cfg *config.AppConfig, publisher events.Publisher) (Host, error) {
	wd, err := os.Getwd()
	if err != nil {
		return Host{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	sshDir, err := ssh.DefaultDir()
	if err != nil {
		return Host{}, err
	}

	return Host{
		DataDir:      cfg.Storage.Data,
		SSHDir:       sshDir,
		WorkDir:      wd,
		OS:           runtime.GOOS,
		UID:          os.Getuid(),
		GID:          os.Getgid(),
		Hostname:     network.Hostname(),
		GitName:      cfg.Git.User.Name,
		GitEmail:     cfg.Git.User.Email,
		Orgs:         agentconfig.Orgs{Configs: cfg.Orgs, Getenv: os.Getenv},
		Runner:       process.NewExecRunner(),
		Publisher:    publisher,
		WaitTimeout:  retry.DefaultWaitTimeout,
		WaitInterval: retry.DefaultWaitInterval,
	}, nil
}

// CommandRunner returns the runner for ssh, git and editor commands.
func (h Host) CommandRunner() process.Runner {
	return LoggedRunner{Runner: h.Runner}
}

// Service returns the container lifecycle service for the runtime binary cli.
func (h Host) Service(cli string) *service.Service {
	client := docker.NewClient(cli, h.CommandRunner())
	svc := service.NewServiceWithClient(client, h.Publisher)
	if h.WaitTimeout > 0 && h.WaitInterval > 0 {
		svc.WithReadinessPolling(h.WaitTimeout, h.WaitInterval)
	}
	return svc
}

// Templates returns the agent config templates of this host.
func (h Host) Templates() *agentconfig.Templates {
	return agentconfig.NewTemplates(h.DataDir, h.Orgs)
}

// MachineID returns the stable identifier of this host.
func (h Host) MachineID() (string, error) {
	return MachineID(h.DataDir)
}
