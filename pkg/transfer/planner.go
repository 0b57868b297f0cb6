// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transfer moves files between an environment's staging area and
// their final destination with cp-like semantics.
package transfer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
)

// Planner resolves copy targets and performs moves on a filesystem.
type Planner struct {
	fs afero.Fs
}

// NewPlanner returns a planner operating on the host filesystem.
func NewPlanner() *Planner {
	return NewPlannerWithFs(afero.NewOsFs())
}

// NewPlannerWithFs returns a planner operating on fs.
func NewPlannerWithFs(fs afero.Fs) *Planner {
	return &Planner{fs: fs}
}

// DetermineFinalCopyTarget computes where a source named sourceName lands
// when copied to destination:
//   - an existing directory receives the source inside it
//   - an existing file is replaced by a file source and refused for a directory source
//   - a missing path is used as given
func (p *Planner) DetermineFinalCopyTarget(sourceName string, sourceIsDir bool, destination string) (string, error) {
	info, err := p.fs.Stat(destination)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return destination, nil
		}
		return "", fmt.Errorf("failed to stat %s: %w", destination, err)
	}

	if info.IsDir() {
		return filepath.Join(destination, sourceName), nil
	}

	if sourceIsDir {
		return "", invalidf("Refusing to overwrite existing file with directory: %s", destination)
	}
	return destination, nil
}

// HandleOverwrite clears dest for an incoming file. Directories are never
// removed, and files only when force is set.
func (p *Planner) HandleOverwrite(dest string, force bool) error {
	info, err := p.fs.Stat(dest)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", dest, err)
	}

	if info.IsDir() {
		return invalidf("Refusing to overwrite directory %s.", dest)
	}
	if !force {
		return invalidf("Refusing to overwrite existing file: %s (force flag is not set).", dest)
	}

	if err := p.fs.Remove(dest); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dest, err)
	}
	return nil
}

// ImportOptions controls ImportFromDir.
type ImportOptions struct {
	Recursive bool
	Force     bool
	MkPath    bool
}

// ImportFromDir moves every direct child of sourceDir to destination, in
// lexicographic order. A directory child without Recursive aborts the import
// before it is moved.
func (p *Planner) ImportFromDir(sourceDir, destination string, opts ImportOptions) error {
	if opts.MkPath {
		if err := p.fs.MkdirAll(destination, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", destination, err)
		}
	}

	entries, err := afero.ReadDir(p.fs, sourceDir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", sourceDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() && !opts.Recursive {
			return invalidf("Refusing to copy directories as recursive flag is not set")
		}

		target, err := p.DetermineFinalCopyTarget(entry.Name(), entry.IsDir(), destination)
		if err != nil {
			return err
		}
		if err := p.HandleOverwrite(target, opts.Force); err != nil {
			return err
		}

		source := filepath.Join(sourceDir, entry.Name())
		if err := p.Move(source, target); err != nil {
			return err
		}
	}

	return nil
}

// Move renames source to target, falling back to copy and delete when the
// two live on different devices.
func (p *Planner) Move(source, target string) error {
	err := p.fs.Rename(source, target)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return fmt.Errorf("failed to move %s to %s: %w", source, target, err)
	}

	if err := p.Copy(source, target); err != nil {
		return err
	}
	if err := p.fs.RemoveAll(source); err != nil {
		return fmt.Errorf("failed to remove %s after copy: %w", source, err)
	}
	return nil
}
