// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/logger"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/transfer"
)

func (c *devCommand) fsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fs",
		Short: "Move files between the host and a developer environment",
	}
	cmd.AddCommand(
		c.transferCommand("export", "Copy files out of a developer environment", false),
		c.transferCommand("import", "Copy files into a developer environment", true),
		localImportCommand(),
	)
	return cmd
}

func (c *devCommand) transferCommand(use, short string, into bool) *cobra.Command {
	var opts transfer.ImportOptions
	cmd := &cobra.Command{
		Use:   use + " SOURCE... DESTINATION",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			e, status, err := c.observe(ctx)
			if err != nil {
				return err
			}

			sources, dest := args[:len(args)-1], args[len(args)-1]
			if into {
				return e.ImportFiles(ctx, status, sources, dest, opts)
			}
			return e.ExportFiles(ctx, status, sources, dest, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.Recursive, "recursive", "r", false, "copy directories recursively")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "overwrite existing files")
	cmd.Flags().BoolVar(&opts.MkPath, "mkpath", false, "create the destination directory and its parents")
	return cmd
}

// localImportCommand finishes an import inside the environment by moving
// the staged files into place.
func localImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "localimport SOURCE_DIR DESTINATION RECURSIVE FORCE MKPATH",
		Hidden: true,
		Args:   cobra.ExactArgs(5),
		RunE: func(_ *cobra.Command, args []string) error {
			flags := make([]bool, 3)
			for i, arg := range args[2:] {
				value, err := strconv.ParseBool(arg)
				if err != nil {
					return fmt.Errorf("invalid boolean `%s`", arg)
				}
				flags[i] = value
			}

			opts := transfer.ImportOptions{Recursive: flags[0], Force: flags[1], MkPath: flags[2]}
			log := logger.GetTransferLogger()
			log.Debug().Str("source", args[0]).Str("destination", args[1]).Msg("Importing staged files")
			return transfer.NewPlanner().ImportFromDir(args[0], args[1], opts)
		},
	}
}

func (c *devCommand) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the build caches of a developer environment",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "size",
			Short: "Show the disk usage of the caches",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				e, err := c.open(nil)
				if err != nil {
					return err
				}
				size, err := e.CacheSize(commandContext(cmd))
				if err != nil {
					return err
				}
				c.app.println(formatSize(size))
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove",
			Short: "Remove the caches",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := commandContext(cmd)
				e, status, err := c.observe(ctx)
				if err != nil {
					return err
				}
				return e.RemoveCache(ctx, status)
			},
		},
	)
	return cmd
}
