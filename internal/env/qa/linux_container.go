// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package qa implements QA environments running a released or locally built
// Agent in a container.
package qa

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/agentconfig"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/env"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/logger"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/service"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/network"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/process"
)

// Type is the registry name of this implementation.
const Type = "linux-container"

const (
	stateDirName     = ".state"
	metadataFileName = "metadata.json"
	agentConfigName  = "agent_config"
	readinessMark    = "Starting Datadog Agent v"
	server           = "localhost"
	integrationsPath = "/etc/datadog-agent/conf.d"
)

// PlaceholderAPIKey lets the Agent start when no API key is configured.
var PlaceholderAPIKey = strings.Repeat("a", 32)

// portRule publishes a port for an optional Agent feature and points the
// Agent config at it.
type portRule struct {
	name    string
	port    func(int) models.Port
	enabled func(config map[string]any) bool
	apply   func(config map[string]any, port string)
}

// portRules are evaluated in order, which is also the order of `-p` flags.
var portRules = []portRule{
	{
		name: "dogstatsd",
		port: models.UDPPort,
		enabled: func(config map[string]any) bool {
			value, ok := config["use_dogstatsd"]
			return !ok || agentconfig.Truthy(value)
		},
		apply: func(config map[string]any, port string) {
			config["dogstatsd_non_local_traffic"] = "true"
			config["dogstatsd_port"] = port
		},
	},
	{
		name: "apm",
		port: models.TCPPort,
		enabled: func(config map[string]any) bool {
			return agentconfig.Truthy(agentconfig.Section(config, "apm_config")["enabled"])
		},
		apply: func(config map[string]any, port string) {
			config["receiver_port"] = port
		},
	},
	{
		name: "process_expvar",
		port: models.TCPPort,
		enabled: func(config map[string]any) bool {
			process := agentconfig.Section(config, "process_config")
			collection := agentconfig.Section(process, "process_collection")
			return agentconfig.Truthy(collection["enabled"]) || process["enabled"] == "true"
		},
		apply: func(config map[string]any, port string) {
			agentconfig.Section(config, "process_config")["expvar_port"] = port
		},
	},
	{
		name: "expvar",
		port: models.TCPPort,
		enabled: func(config map[string]any) bool {
			return agentconfig.Truthy(config["expvar_port"])
		},
		apply: func(config map[string]any, port string) {
			config["expvar_port"] = port
		},
	},
	{
		name:    "cmd",
		port:    models.TCPPort,
		enabled: func(map[string]any) bool { return true },
		apply: func(config map[string]any, port string) {
			config["cmd_port"] = port
		},
	},
}

// LinuxContainer is a QA environment running the Agent image in a Linux
// container. The Agent reads its configuration from DD_ variables derived
// from a working copy of an Agent config template.
type LinuxContainer struct {
	host     env.Host
	id       env.Identity
	config   Config
	template *agentconfig.AgentConfig
	svc      *service.Service
	name     string
}

// Compile-time check that LinuxContainer implements env.QAEnvironment
var _ env.QAEnvironment = (*LinuxContainer)(nil)

// New returns the instance of host configured with config. template is
// copied into the instance on creation; nil selects the default template.
func New(host env.Host, instance string, config Config, template *agentconfig.AgentConfig) (*LinuxContainer, error) {
	if config.Env == nil {
		config.Env = map[string]string{}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	id := env.NewIdentity(env.KindQA, Type, instance)
	return &LinuxContainer{
		host:     host,
		id:       id,
		config:   config,
		template: template,
		svc:      host.Service(config.CLI),
		name:     fmt.Sprintf("dda-qa-%s-%s", id.Type, id.Instance),
	}, nil
}

// Open returns the instance of host. A nil overrides map selects the
// persisted configuration, or the defaults for an environment that does not
// exist yet; otherwise overrides are applied on top of the defaults.
func Open(host env.Host, instance string, overrides map[string]any, template *agentconfig.AgentConfig) (*LinuxContainer, error) {
	config := DefaultConfig()
	if overrides == nil {
		id := env.NewIdentity(env.KindQA, Type, instance)
		path := filepath.Join(id.Dir(host.DataDir), stateDirName, env.ConfigFileName)
		if _, err := env.LoadJSON(path, &config); err != nil {
			return nil, err
		}
	} else if err := env.DecodeConfig(overrides, &config); err != nil {
		return nil, err
	}
	return New(host, instance, config, template)
}

func (c *LinuxContainer) Identity() env.Identity { return c.id }

func (c *LinuxContainer) Config() Config { return c.config }

// ContainerName is the name of the backing container.
func (c *LinuxContainer) ContainerName() string { return c.name }

// Port derives the host port of an Agent feature such as "dogstatsd".
func (c *LinuxContainer) Port(feature string) int {
	return network.DeriveDynamicPort(c.name + "-" + feature)
}

func (c *LinuxContainer) dir() string {
	return c.id.Dir(c.host.DataDir)
}

// StateDir holds everything persisted for the instance and is deleted on
// removal.
func (c *LinuxContainer) StateDir() string {
	return filepath.Join(c.dir(), stateDirName)
}

func (c *LinuxContainer) ConfigFile() string {
	return filepath.Join(c.StateDir(), env.ConfigFileName)
}

func (c *LinuxContainer) MetadataFile() string {
	return filepath.Join(c.StateDir(), metadataFileName)
}

// AgentConfigDir is the working copy mounted into the container.
func (c *LinuxContainer) AgentConfigDir() string {
	return filepath.Join(c.StateDir(), agentConfigName)
}

func (c *LinuxContainer) AgentConfig() *agentconfig.AgentConfig {
	return agentconfig.New(c.AgentConfigDir(), c.host.Orgs)
}

// Metadata returns what was recorded when the container was created.
func (c *LinuxContainer) Metadata() (models.EnvironmentMetadata, error) {
	metadata := models.NewEnvironmentMetadata(server)
	found, err := env.LoadJSON(c.MetadataFile(), &metadata)
	if err != nil {
		return metadata, err
	}
	if !found {
		return metadata, fmt.Errorf("no metadata recorded for %s", c.id.Describe(false))
	}
	return metadata, nil
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

		if status.State == models.StateStopped {
			return c.svc.Start(ctx, c.name)
		}
		return c.startAnew(ctx)
	})
}

// startAnew materializes the working Agent config and creates the
// container. Nothing is left behind when creation fails.
func (c *LinuxContainer) startAnew(ctx context.Context) error {
	if c.config.E2E {
		return &env.NotSupportedError{Identity: c.id, Option: "e2e"}
	}

	template := c.template
	if template == nil {
		var err error
		template, err = c.host.Templates().Resolve(agentconfig.DefaultTemplate)
		if err != nil {
			return err
		}
	}
	if !template.Exists() {
		return fmt.Errorf("Agent config template not found: %s", template.Name())
	}

	err := c.materialize(template)
	if err == nil {
		err = c.create(ctx)
	}
	if err != nil {
		if cleanupErr := os.RemoveAll(c.StateDir()); cleanupErr != nil {
			log := logger.GetEnvLogger()
			log.Warn().Err(cleanupErr).Str("dir", c.StateDir()).Msg("Failed to clean up state directory")
		}
		return err
	}
	return nil
}

func (c *LinuxContainer) materialize(template *agentconfig.AgentConfig) error {
	if err := env.SaveJSON(c.ConfigFile(), c.config); err != nil {
		return err
	}
	_, err := template.CopyTo(c.AgentConfigDir())
	return err
}

func (c *LinuxContainer) create(ctx context.Context) error {
	if c.config.Pull {
		if err := c.svc.Pull(ctx, c.name, c.config.Image, c.config.Arch); err != nil {
			return err
		}
	}

	agentConfig := c.AgentConfig()
	integrations, err := agentConfig.LoadIntegrations()
	if err != nil {
		return err
	}
	config, err := agentConfig.Load()
	if err != nil {
		return err
	}

	if _, ok := config["api_key"]; !ok {
		c.svc.Warn(c.name, "No API key set in the Agent config, using a placeholder")
		config["api_key"] = PlaceholderAPIKey
	}
	config["hostname"] = c.host.Hostname

	metadata := models.NewEnvironmentMetadata(server)
	var published []models.Port
	for _, rule := range portRules {
		if !rule.enabled(config) {
			continue
		}
		port := rule.port(c.Port(rule.name))
		rule.apply(config, strconv.Itoa(port.Port))
		metadata.Network.Ports.Agent[rule.name] = port
		published = append(published, port)
	}

	vars := agentconfig.ToEnvVars(config)
	maps.Copy(vars, c.config.Env)

	run := models.NewContainerConfig(c.name, c.config.Image).
		Platform(c.config.Arch).
		Mount(models.BindMount("/proc", "/host/proc"))
	names := lo.Keys(integrations)
	slices.Sort(names)
	for _, name := range names {
		run.Mount(models.BindMount(
			filepath.Join(agentConfig.IntegrationsDir(), name),
			integrationsPath+"/"+name+".d",
		))
	}
	for _, name := range process.EnvNames(vars) {
		run.Env(name, vars[name])
	}

	switch {
	case c.config.Network != "":
		run.Network(c.config.Network)
	case c.host.OS == "linux":
		run.Network("host")
	default:
		for _, port := range published {
			run.Publish(port)
		}
	}

	if err := c.svc.Create(ctx, run); err != nil {
		return err
	}
	if err := c.svc.WaitForLog(ctx, c.name, readinessMark); err != nil {
		return err
	}
	return env.SaveJSON(c.MetadataFile(), metadata)
}

func (c *LinuxContainer) Stop(ctx context.Context, status models.EnvironmentStatus) error {
	if err := env.CheckTransition(c.id, env.OpStop, status); err != nil {
		return err
	}

	return env.WithLock(c.dir(), func() error {
		return c.svc.Stop(ctx, c.name, nil)
	})
}

func (c *LinuxContainer) Restart(ctx context.Context, status models.EnvironmentStatus) error {
	if err := env.CheckTransition(c.id, env.OpRestart, status); err != nil {
		return err
	}

	return env.WithLock(c.dir(), func() error {
		return c.svc.Restart(ctx, c.name)
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
		if err := os.RemoveAll(c.StateDir()); err != nil {
			return fmt.Errorf("failed to remove %s: %w", c.StateDir(), err)
		}
		return nil
	})
}

// SyncAgentConfig recreates the container so that it picks up the current
// content of the working Agent config.
func (c *LinuxContainer) SyncAgentConfig(ctx context.Context, status models.EnvironmentStatus) error {
	if err := env.CheckTransition(c.id, env.OpSyncConfig, status); err != nil {
		return err
	}

	return env.WithLock(c.dir(), func() error {
		if err := c.svc.Stop(ctx, c.name, nil); err != nil {
			return err
		}
		if err := c.svc.Remove(ctx, c.name); err != nil {
			return err
		}
		return c.create(ctx)
	})
}

func (c *LinuxContainer) RunCommand(ctx context.Context, status models.EnvironmentStatus, command []string) error {
	if err := env.RequireStarted(c.id, status); err != nil {
		return err
	}
	return c.svc.Client().Exec(ctx, c.name, command)
}

// LaunchShell attaches to bash in the container and returns its exit code.
func (c *LinuxContainer) LaunchShell(ctx context.Context, status models.EnvironmentStatus) (int, error) {
	if err := env.RequireStarted(c.id, status); err != nil {
		return 0, err
	}
	return c.svc.Client().ExecInteractive(ctx, c.name, []string{"bash"})
}

func (c *LinuxContainer) LaunchGUI(_ context.Context, status models.EnvironmentStatus) error {
	if err := env.RequireStarted(c.id, status); err != nil {
		return err
	}
	return &env.NotSupportedError{Identity: c.id, Capability: "GUI access"}
}
