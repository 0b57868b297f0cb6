// Copyright (C) 2025-2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli is the dda command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/config"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/env"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/env/registry"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/logger"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/events"
)

const appName = "dda"

// ExitError carries the exit code of a command run on behalf of the user.
// Its output has already been shown, so nothing more is printed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// App holds what commands share. Fields left nil are initialized from the
// configuration file on first use; tests set them directly.
type App struct {
	Config   *config.AppConfig
	Host     *env.Host
	Registry *registry.Registry
	Out      io.Writer
	Err      io.Writer

	configPath string
	verbose    bool
}

// setup loads the configuration and starts logging.
func (a *App) setup() error {
	if a.Registry == nil {
		a.Registry = registry.Default()
	}
	if a.Config != nil {
		return nil
	}

	cfg, err := config.NewConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.verbose {
		logger.Verbose(&cfg.Log)
	}
	if err := logger.Initialize(&cfg.Log); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	a.Config = cfg
	return nil
}

func (a *App) host() (env.Host, error) {
	if a.Host == nil {
		host, err := env.NewHost(a.Config, events.NewConsolePublisher(os.Stderr))
		if err != nil {
			return env.Host{}, err
		}
		a.Host = &host
	}
	return *a.Host, nil
}

func (a *App) println(args ...any) {
	_, _ = fmt.Fprintln(a.Out, args...)
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	if app.Out == nil {
		app.Out = os.Stdout
	}
	if app.Err == nil {
		app.Err = os.Stderr
	}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Datadog Agent development environments",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.setup()
		},
	}
	cmd.SetOut(app.Out)
	cmd.SetErr(app.Err)

	cmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "log debug output to stderr")

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Manage environments",
	}
	envCmd.AddCommand(newDevCommand(app), newQACommand(app))
	cmd.AddCommand(envCmd)

	return cmd
}

// Execute runs the command line of the current process.
func Execute() error {
	ctx, cancel := newCommandContext()
	defer cancel()
	defer logger.CloseGlobal() //nolint:errcheck

	return NewRootCommand(&App{}).ExecuteContext(ctx)
}

// newCommandContext creates the root command context canceled by SIGINT/SIGTERM.
func newCommandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// commandContext returns the command context, falling back to Background.
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
