// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/editors"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/env"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/logger"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
)

type devCommand struct {
	target
}

func newDevCommand(app *App) *cobra.Command {
	c := &devCommand{target: target{app: app, kind: env.KindDev}}

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Work with developer environments",
	}
	c.bind(cmd)

	cmd.AddCommand(
		c.startCommand(),
		c.stopCommand(),
		c.statusCommand(),
		c.removeCommand(),
		c.shellCommand(),
		c.runCommand(),
		c.codeCommand(),
		c.guiCommand(),
		c.fsCommand(),
		c.cacheCommand(),
	)
	return cmd
}

// open returns the environment with its persisted configuration, or the
// given overrides when not nil.
func (c *devCommand) open(overrides map[string]any) (env.DeveloperEnvironment, error) {
	host, err := c.app.host()
	if err != nil {
		return nil, err
	}
	factory, err := c.app.Registry.Dev(c.Type())
	if err != nil {
		return nil, err
	}
	return factory(host, c.instance, overrides)
}

// observe opens the environment and reads its status.
func (c *devCommand) observe(ctx context.Context) (env.DeveloperEnvironment, models.EnvironmentStatus, error) {
	e, err := c.open(nil)
	if err != nil {
		return nil, models.EnvironmentStatus{}, err
	}
	status, err := e.Status(ctx)
	if err != nil {
		return nil, models.EnvironmentStatus{}, err
	}
	return e, status, nil
}

func (c *devCommand) startCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a developer environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			explicit, err := explicitOptions(cmd.Flags())
			if err != nil {
				return err
			}

			e, err := c.open(nil)
			if err != nil {
				return err
			}
			if err := env.CheckReconfigure(e.ConfigFile(), optionNames(explicit)); err != nil {
				return err
			}
			if !fileExists(e.ConfigFile()) {
				overrides := c.app.mergeOptions(c.Type(), explicit)
				if c.app.Config.Env.Dev.CloneRepos {
					setDefault(overrides, "clone", true)
				}
				if c.app.Config.Env.Dev.UniversalShell {
					setDefault(overrides, "shell", "nu")
				}
				if e, err = c.open(overrides); err != nil {
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
	flags.Bool("clone", false, "clone repositories inside the container instead of mounting local checkouts")
	flags.String("image", "", "container image")
	flags.Bool("no-pull", false, "do not pull the image before creating the container")
	flags.String("cli", "", "container runtime binary")
	flags.String("shell", "", "login shell (bash, nu, zsh)")
	flags.String("arch", "", "image architecture")
	flags.StringArrayP("repo", "r", nil, "repository, optionally pinned with @<ref> (repeatable)")
	flags.StringArray("extra-volume-spec", nil, "additional -v specification (repeatable)")
	flags.StringArray("extra-mount-spec", nil, "additional --mount specification (repeatable)")

	configFlag(flags, "clone", "clone")
	configFlag(flags, "image", "image")
	configFlag(flags, "no-pull", "no_pull")
	configFlag(flags, "cli", "cli")
	configFlag(flags, "shell", "shell")
	configFlag(flags, "arch", "arch")
	configFlag(flags, "repo", "repos")
	configFlag(flags, "extra-volume-spec", "extra_volume_specs")
	configFlag(flags, "extra-mount-spec", "extra_mount_specs")
	return cmd
}

func (c *devCommand) stopCommand() *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a developer environment",
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

func (c *devCommand) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of a developer environment",
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

func (c *devCommand) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove a stopped developer environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			e, status, err := c.observe(ctx)
			if err != nil {
				return err
			}
			return e.Remove(ctx, status)
		},
	}
}

func (c *devCommand) shellCommand() *cobra.Command {
	var repo string
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Open a login shell in a developer environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			e, status, err := c.observe(ctx)
			if err != nil {
				return err
			}
			return shellExit(e.LaunchShell(ctx, status, repo))
		},
	}
	cmd.Flags().StringVarP(&repo, "repo", "r", "", "repository to start in")
	return cmd
}

func (c *devCommand) runCommand() *cobra.Command {
	var repo string
	cmd := &cobra.Command{
		Use:   "run [flags] -- COMMAND [ARGS...]",
		Short: "Run a command in a developer environment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			e, status, err := c.observe(ctx)
			if err != nil {
				return err
			}
			return commandExit(e.RunCommand(ctx, status, args, repo))
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVarP(&repo, "repo", "r", "", "repository to run in")
	return cmd
}

func (c *devCommand) codeCommand() *cobra.Command {
	var editorName, repo string
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Open a repository of a developer environment in an editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			if editorName == "" {
				editorName = c.app.Config.Env.Dev.Editor
			}
			host, err := c.app.host()
			if err != nil {
				return err
			}
			editor, err := editors.Get(editorName, host.CommandRunner())
			if err != nil {
				return err
			}

			e, status, err := c.observe(ctx)
			if err != nil {
				return err
			}
			return e.Code(ctx, status, editor, repo)
		},
	}
	cmd.Flags().StringVarP(&editorName, "editor", "e", "", "editor to open (vscode, cursor)")
	cmd.Flags().StringVarP(&repo, "repo", "r", "", "repository to open")
	return cmd
}

func (c *devCommand) guiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Access a developer environment through a graphical interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			e, status, err := c.observe(ctx)
			if err != nil {
				return err
			}
			return e.LaunchGUI(ctx, status)
		},
	}
}
