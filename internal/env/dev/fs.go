// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package dev

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/env"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/logger"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/transfer"
)

// LocalImportCommand is the hidden command that finishes an import inside
// the container.
var LocalImportCommand = []string{"dda", "env", "dev", "fs", "localimport"}

// ExportFiles copies sources from the container to destination on the host.
// Files are staged in the shared directory and then moved into place.
func (c *LinuxContainer) ExportFiles(ctx context.Context, status models.EnvironmentStatus, sources []string, destination string, opts transfer.ImportOptions) error {
	if err := env.RequireStarted(c.id, status); err != nil {
		return err
	}
	for _, source := range sources {
		if !path.IsAbs(source) {
			return fmt.Errorf("%w: %s", env.ErrRelativePath, source)
		}
	}

	return c.withStaging(func(hostDir, containerDir string) error {
		args := []string{"cp"}
		if opts.Recursive {
			args = append(args, "-r")
		}
		args = append(args, sources...)
		args = append(args, containerDir+"/")

		if err := c.runner.Run(ctx, c.remote(c.shell.FormatCommand(args, homeDir))); err != nil {
			return fmt.Errorf("failed to export files: %w", err)
		}
		return transfer.NewPlanner().ImportFromDir(hostDir, destination, opts)
	})
}

// ImportFiles copies host sources to destination inside the container.
func (c *LinuxContainer) ImportFiles(ctx context.Context, status models.EnvironmentStatus, sources []string, destination string, opts transfer.ImportOptions) error {
	if err := env.RequireStarted(c.id, status); err != nil {
		return err
	}
	if !path.IsAbs(destination) {
		return fmt.Errorf("%w: %s", env.ErrRelativePath, destination)
	}

	return c.withStaging(func(hostDir, containerDir string) error {
		if err := transfer.NewPlanner().CopyInto(sources, hostDir, opts.Recursive); err != nil {
			return err
		}

		args := append(append([]string{}, LocalImportCommand...),
			containerDir,
			destination,
			strconv.FormatBool(opts.Recursive),
			strconv.FormatBool(opts.Force),
			strconv.FormatBool(opts.MkPath),
		)
		if err := c.runner.Run(ctx, c.remote(c.shell.FormatCommand(args, homeDir))); err != nil {
			return fmt.Errorf("failed to import files: %w", err)
		}
		return nil
	})
}

// withStaging runs fn with a fresh staging directory, given by its host and
// container paths, and removes it afterwards.
func (c *LinuxContainer) withStaging(fn func(hostDir, containerDir string) error) error {
	name := uuid.NewString()
	hostDir := filepath.Join(c.StagingDir(), name)
	if err := os.MkdirAll(hostDir, 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(hostDir); err != nil {
			log := logger.GetTransferLogger()
			log.Warn().Err(err).Str("dir", hostDir).Msg("Failed to clean up staging directory")
		}
	}()

	return fn(hostDir, stagingMount+"/"+name)
}
