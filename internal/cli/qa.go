// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/agentconfig"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/env"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/logger"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
)

type qaCommand struct {
	target
}

func newQACommand(app *App) *cobra.Command {
	c := &qaCommand{target: target{app: app, kind: env.KindQA}}

	cmd := &cobra.Command{
		Use:   "qa",
		Short: "Work with QA environments",
	}
	c.bind(cmd)

	cmd.AddCommand(
		c.startCommand(),
		c.stopCommand(),
		c.restartCommand(),
		c.removeCommand(),
		c.statusCommand(),
		c.infoCommand(),
		c.showCommand(),
		c.shellCommand(),
		c.runCommand(),
		c.guiCommand(),
		c.configCommand(),
	)
	return cmd
}

func (c *qaCommand) open(overrides map[string]any, template *agentconfig.AgentConfig) (env.QAEnvironment, error) {
	host, err := c.app.host()
	if err != nil {
		return nil, err
	}
	factory, err := c.app.Registry.QA(c.Type())
	if err != nil {
		return nil, err
	}
	return factory(host, c.instance, overrides, template)
}

func (c *qaCommand) observe(ctx context.Context) (env.QAEnvironment, models.EnvironmentStatus, error) {
	e, err := c.open(nil, nil)
	if err != nil {
		return nil, models.EnvironmentStatus{}, err
	}
	status, err := e.Status(ctx)
	if err != nil {
		return nil, models.EnvironmentStatus{}, err
	}
	return e, status, nil
}

func (c *qaCommand) notFound() error {
	id := c.Identity()
	return fmt.Errorf("QA environment `%s` of type `%s` does not exist", id.Instance, id.Type)
}

func (c *qaCommand) startCommand() *cobra.Command {
	var templateName string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a QA environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			explicit, err := explicitOptions(cmd.Flags())
			if err != nil {
				return err
			}
			if raw, ok := explicit["env"].([]string); ok {
				if explicit["env"], err = parseAssignments(raw); err != nil {
					return err
				}
			}

			e, err := c.open(nil, nil)
			if err != nil {
				return err
			}
			names := optionNames(explicit)
			if cmd.Flags().Changed("config-template") {
				names = append(names, "config_template")
			}
			if err := env.CheckReconfigure(e.ConfigFile(), names); err != nil {
				return err
			}

			if !fileExists(e.ConfigFile()) {
				host, err := c.app.host()
				if err != nil {
					return err
				}
				template, err := host.Templates().Resolve(templateName)
				if err != nil {
					return err
				}
				overrides := c.app.mergeOptions(c.Type(), explicit)
				if c.app.Config.Env.QA.E2E {
					setDefault(overrides, "e2e", true)
				}
				if e, err = c.open(overrides, template); err != nil {
					return err
				}
			}

			status, err := e.Status(ctx)
			if err != nil {
				return err
			}
			log := logger.GetCLILogger()
			log.Debug().Str("env", e.Identity().String()).Str("state", string(status.State)).Msg("Starting")
			return e.Start(ctx, status)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&templateName, "config-template", "c", agentconfig.DefaultTemplate, "Agent config template")
	flags.String("image", "", "Agent image")
	flags.Bool("pull", false, "pull the image before creating the container")
	flags.String("network", "", "container network")
	flags.String("cli", "", "container runtime binary")
	flags.String("arch", "", "image architecture")
	flags.StringArrayP("env", "e", nil, "extra NAME=VALUE variable exposed to the Agent (repeatable)")

	configFlag(flags, "image", "image")
	configFlag(flags, "pull", "pull")
	configFlag(flags, "network", "network")
	configFlag(flags, "cli", "cli")
	configFlag(flags, "arch", "arch")
	configFlag(flags, "env", "env")
	return cmd
}

func (c *qaCommand) stopCommand() *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a QA environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			e, status, err := c.observe(ctx)
			if err != nil {
				return err
			}
			if err := e.Stop(ctx, status); err != nil {
				return err
			}
			if !remove {
				return nil
			}
			if status, err = e.Status(ctx); err != nil {
				return err
			}
			return e.Remove(ctx, status)
		},
	}
	cmd.Flags().BoolVarP(&remove, "remove", "r", false, "remove the environment after stopping it")
	return cmd
}

// transition builds a command running op on the observed environment.
func (c *qaCommand) transition(use, short string, op func(env.QAEnvironment) func(context.Context, models.EnvironmentStatus) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			e, status, err := c.observe(ctx)
			if err != nil {
				return err
			}
			return op(e)(ctx, status)
		},
	}
}

func (c *qaCommand) restartCommand() *cobra.Command {
	return c.transition("restart", "Restart a QA environment", func(e env.QAEnvironment) func(context.Context, models.EnvironmentStatus) error {
		return e.Restart
	})
}

func (c *qaCommand) removeCommand() *cobra.Command {
	return c.transition("remove", "Remove a stopped QA environment", func(e env.QAEnvironment) func(context.Context, models.EnvironmentStatus) error {
		return e.Remove
	})
}

func (c *qaCommand) guiCommand() *cobra.Command {
	return c.transition("gui", "Access a QA environment through a graphical interface", func(e env.QAEnvironment) func(context.Context, models.EnvironmentStatus) error {
		return e.LaunchGUI
	})
}

func (c *qaCommand) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of a QA environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, status, err := c.observe(commandContext(cmd))
			if err != nil {
				return err
			}
			for _, line := range statusLines(status) {
				c.app.println(line)
			}
			return nil
		},
	}
}

func (c *qaCommand) infoCommand() *cobra.Command {
	var asJSON, showStatus bool
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show how to reach a QA environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, status, err := c.observe(commandContext(cmd))
			if err != nil {
				return err
			}
			if status.State == models.StateNonexistent {
				return c.notFound()
			}

			metadata, err := e.Metadata()
			if err != nil {
				return err
			}
			info, err := toMap(metadata)
			if err != nil {
				return err
			}
			if showStatus {
				if info["status"], err = toMap(status); err != nil {
					return err
				}
			}

			if asJSON {
				data, err := json.Marshal(info)
				if err != nil {
					return err
				}
				c.app.println(string(data))
				return nil
			}
			c.app.println(renderTable(info))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	cmd.Flags().BoolVar(&showStatus, "status", false, "include the status")
	return cmd
}

// showCommand lists every QA environment with a persisted configuration.
func (c *qaCommand) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active QA environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			host, err := c.app.host()
			if err != nil {
				return err
			}

			data := map[string]any{}
			root := filepath.Join(host.DataDir, "env", string(env.KindQA))
			for _, envType := range subdirs(root) {
				factory, err := c.app.Registry.QA(envType)
				if err != nil {
					log := logger.GetCLILogger()
					log.Debug().Err(err).Str("type", envType).Msg("Skipping unknown environment type")
					continue
				}

				instances := map[string]any{}
				for _, instance := range subdirs(filepath.Join(root, envType)) {
					e, err := factory(host, instance, nil, nil)
					if err != nil {
						return err
					}
					config, ok, err := loadConfigMap(e.ConfigFile())
					if err != nil {
						return err
					}
					if !ok {
						continue
					}
					status, err := e.Status(ctx)
					if err != nil {
						return err
					}
					instances[instance] = map[string]any{"State": string(status.State), "Config": config}
				}
				if len(instances) > 0 {
					data[envType] = instances
				}
			}

			if len(data) == 0 {
				c.app.println("No QA environments found")
				return nil
			}
			c.app.println(renderTable(data))
			return nil
		},
	}
}

func (c *qaCommand) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Open a shell in a QA environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			e, status, err := c.observe(ctx)
			if err != nil {
				return err
			}
			return shellExit(e.LaunchShell(ctx, status))
		},
	}
}

func (c *qaCommand) runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] -- COMMAND [ARGS...]",
		Short: "Run a command in a QA environment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			e, status, err := c.observe(ctx)
			if err != nil {
				return err
			}
			return commandExit(e.RunCommand(ctx, status, args))
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func subdirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names
}

// loadConfigMap reads a persisted environment configuration, dropping
// empty values.
func loadConfigMap(path string) (map[string]any, bool, error) {
	var config map[string]any
	ok, err := env.LoadJSON(path, &config)
	if err != nil || !ok {
		return nil, ok, err
	}
	for key, value := range config {
		if _, isBool := value.(bool); !isBool && !agentconfig.Truthy(value) {
			delete(config, key)
		}
	}
	return config, true, nil
}
