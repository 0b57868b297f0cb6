// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/agentconfig"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/env"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/logger"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/process"
)

func (c *qaCommand) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the Agent configuration of QA environments",
	}
	cmd.AddCommand(
		c.transition("sync", "Apply changes of the Agent configuration", func(e env.QAEnvironment) func(context.Context, models.EnvironmentStatus) error {
			return e.SyncAgentConfig
		}),
		c.agentConfigCommand("show", "Show the Agent configuration", func(_ context.Context, cfg *agentconfig.AgentConfig) error {
			info, err := agentConfigInfo(cfg)
			if err != nil {
				return err
			}
			c.app.println(renderTable(info))
			return nil
		}),
		c.agentConfigCommand("find", "Output the location of the Agent configuration", func(_ context.Context, cfg *agentconfig.AgentConfig) error {
			c.app.println(cfg.RootDir())
			return nil
		}),
		c.agentConfigCommand("explore", "Open the Agent configuration in your file manager", func(ctx context.Context, cfg *agentconfig.AgentConfig) error {
			return c.app.reveal(ctx, cfg.Path())
		}),
		newTemplatesCommand(c.app),
	)
	return cmd
}

// agentConfigCommand runs fn on the working Agent configuration of an
// existing environment.
func (c *qaCommand) agentConfigCommand(use, short string, fn func(context.Context, *agentconfig.AgentConfig) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.open(nil, nil)
			if err != nil {
				return err
			}
			cfg := e.AgentConfig()
			if !dirExists(cfg.RootDir()) {
				return c.notFound()
			}
			return fn(commandContext(cmd), cfg)
		},
	}
}

// reveal opens the platform file manager at path.
func (a *App) reveal(ctx context.Context, path string) error {
	host, err := a.host()
	if err != nil {
		return err
	}

	var cmd process.Command
	switch host.OS {
	case "darwin":
		cmd = process.Command{Name: "open", Args: []string{"-R", path}}
	case "windows":
		cmd = process.Command{Name: "explorer", Args: []string{"/select," + path}}
	default:
		cmd = process.Command{Name: "xdg-open", Args: []string{filepath.Dir(path)}}
	}
	log := logger.GetCLILogger()
	log.Debug().Str("path", path).Msg("Opening file manager")
	return host.CommandRunner().Run(ctx, cmd)
}

func newTemplatesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage Agent config templates",
	}

	templates := func() (*agentconfig.Templates, error) {
		host, err := app.host()
		if err != nil {
			return nil, err
		}
		return host.Templates(), nil
	}
	existing := func(name string) (*agentconfig.AgentConfig, error) {
		t, err := templates()
		if err != nil {
			return nil, err
		}
		template := t.Get(name)
		if !template.Exists() {
			return nil, fmt.Errorf("Template not found: %s", name)
		}
		return template, nil
	}
	// listed returns every template, creating the default one when there
	// are none.
	listed := func() (*agentconfig.Templates, []*agentconfig.AgentConfig, error) {
		t, err := templates()
		if err != nil {
			return nil, nil, err
		}
		all, err := t.List()
		if err != nil {
			return nil, nil, err
		}
		if len(all) == 0 {
			template, err := t.Resolve(agentconfig.DefaultTemplate)
			if err != nil {
				return nil, nil, err
			}
			all = []*agentconfig.AgentConfig{template}
		}
		return t, all, nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "find [NAME]",
			Short: "Output the location of Agent config templates",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				if len(args) == 0 {
					t, _, err := listed()
					if err != nil {
						return err
					}
					app.println(t.RootDir())
					return nil
				}
				template, err := existing(args[0])
				if err != nil {
					return err
				}
				app.println(template.RootDir())
				return nil
			},
		},
		&cobra.Command{
			Use:   "show [NAME]",
			Short: "Show Agent config template details",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				if len(args) == 1 {
					template, err := existing(args[0])
					if err != nil {
						return err
					}
					info, err := agentConfigInfo(template)
					if err != nil {
						return err
					}
					app.println(renderTable(info))
					return nil
				}

				_, all, err := listed()
				if err != nil {
					return err
				}
				data := make(map[string]any, len(all))
				for _, template := range all {
					if data[template.Name()], err = agentConfigInfo(template); err != nil {
						return err
					}
				}
				app.println(renderTable(data))
				return nil
			},
		},
		&cobra.Command{
			Use:   "explore [NAME]",
			Short: "Open the Agent config templates location in your file manager",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 1 {
					template, err := existing(args[0])
					if err != nil {
						return err
					}
					return app.reveal(commandContext(cmd), template.Path())
				}
				_, all, err := listed()
				if err != nil {
					return err
				}
				location := all[0].RootDir()
				for _, template := range all {
					if template.Name() == agentconfig.DefaultTemplate {
						location = template.RootDir()
					}
				}
				return app.reveal(commandContext(cmd), location)
			},
		},
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create a new Agent config template",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				t, err := templates()
				if err != nil {
					return err
				}
				template := t.Get(args[0])
				if template.Exists() {
					return fmt.Errorf("Template already exists: %s", args[0])
				}
				if err := template.RestoreDefaults(); err != nil {
					return err
				}
				app.println("Template created: " + args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove NAME",
			Short: "Remove an Agent config template",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				template, err := existing(args[0])
				if err != nil {
					return err
				}
				if err := template.Remove(); err != nil {
					return err
				}
				app.println("Template removed: " + args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "restore [NAME]",
			Short: "Restore an Agent config template to its defaults",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				name := agentconfig.DefaultTemplate
				if len(args) == 1 {
					name = args[0]
				}
				t, err := templates()
				if err != nil {
					return err
				}
				if err := t.Get(name).RestoreDefaults(); err != nil {
					return err
				}
				app.println("Template restored: " + name)
				return nil
			},
		},
	)
	return cmd
}

// agentConfigInfo summarizes an Agent configuration for display: the
// scrubbed main config and, per integration, how many instances and log
// sources each file defines.
func agentConfigInfo(cfg *agentconfig.AgentConfig) (map[string]any, error) {
	main, err := cfg.LoadScrubbed()
	if err != nil {
		return nil, err
	}
	info := map[string]any{"Config": main}

	integrations, err := cfg.LoadIntegrations()
	if err != nil {
		return nil, err
	}
	summary := make(map[string]any, len(integrations))
	for name, files := range integrations {
		summary[name] = integrationInfo(files)
	}
	if len(summary) > 0 {
		info["Integrations"] = summary
	}
	return info, nil
}

const misconfigured = "<misconfigured>"

func integrationInfo(files map[string]map[string]any) map[string]any {
	autodiscovery := map[string]any{}
	var configs []any
	for _, filename := range sortedKeys(files) {
		file := files[filename]
		details := map[string]any{}
		if instances, ok := file["instances"].([]any); ok && len(instances) > 0 {
			details["Instances"] = len(instances)
		}
		if logs, ok := file["logs"].([]any); ok && len(logs) > 0 {
			details["Logs"] = len(logs)
		}

		if filename == "auto_conf.yaml" || filename == "auto_conf.yml" {
			if ids, ok := file["ad_identifiers"].([]any); ok && len(ids) > 0 {
				details["Identifiers"] = ids
			}
			for key, value := range details {
				autodiscovery[key] = value
			}
			continue
		}

		if len(details) == 0 {
			configs = append(configs, misconfigured)
		} else {
			configs = append(configs, details)
		}
	}

	info := map[string]any{}
	switch {
	case len(autodiscovery) > 1:
		info["Autodiscovery"] = autodiscovery
	case len(autodiscovery) == 1:
		info["Autodiscovery"] = misconfigured
	}

	switch len(configs) {
	case 0:
	case 1:
		info["Config"] = configs[0]
	default:
		numbered := make(map[string]any, len(configs))
		for i, config := range configs {
			numbered[strconv.Itoa(i+1)] = config
		}
		info["Config files"] = numbered
	}
	return info
}
