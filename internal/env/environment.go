// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package env defines the contract shared by developer and QA environments:
// identity and storage layout, lifecycle guards, persisted configuration
// and the error taxonomy surfaced to users.
package env

import (
	"context"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/agentconfig"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/editors"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/transfer"
)

// Environment is the lifecycle every environment type implements.
//
// State changing methods take the status the caller last observed and
// refuse with a *PreconditionError, without touching the runtime, when the
// operation is not allowed from it.
type Environment interface {
	Identity() Identity
	// ConfigFile is where the configuration is persisted while the
	// environment exists.
	ConfigFile() string
	Status(ctx context.Context) (models.EnvironmentStatus, error)
	Start(ctx context.Context, status models.EnvironmentStatus) error
	Stop(ctx context.Context, status models.EnvironmentStatus) error
	Remove(ctx context.Context, status models.EnvironmentStatus) error
	LaunchGUI(ctx context.Context, status models.EnvironmentStatus) error
}

// DeveloperEnvironment is a long lived environment for working on one or
// more repositories. An empty repo selects the first configured repository.
type DeveloperEnvironment interface {
	Environment
	LaunchShell(ctx context.Context, status models.EnvironmentStatus, repo string) (int, error)
	RunCommand(ctx context.Context, status models.EnvironmentStatus, command []string, repo string) error
	Code(ctx context.Context, status models.EnvironmentStatus, editor editors.Editor, repo string) error
	ExportFiles(ctx context.Context, status models.EnvironmentStatus, sources []string, destination string, opts transfer.ImportOptions) error
	ImportFiles(ctx context.Context, status models.EnvironmentStatus, sources []string, destination string, opts transfer.ImportOptions) error
	RemoveCache(ctx context.Context, status models.EnvironmentStatus) error
	CacheSize(ctx context.Context) (int64, error)
}

// QAEnvironment runs an Agent configured from a template.
type QAEnvironment interface {
	Environment
	Restart(ctx context.Context, status models.EnvironmentStatus) error
	SyncAgentConfig(ctx context.Context, status models.EnvironmentStatus) error
	Metadata() (models.EnvironmentMetadata, error)
	RunCommand(ctx context.Context, status models.EnvironmentStatus, command []string) error
	LaunchShell(ctx context.Context, status models.EnvironmentStatus) (int, error)
	// AgentConfig is the working copy mounted into the container.
	AgentConfig() *agentconfig.AgentConfig
}
