// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package transfer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Copy copies a file or a whole directory tree from source to target,
// keeping permission bits. target must not exist yet.
func (p *Planner) Copy(source, target string) error {
	info, err := p.fs.Stat(source)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", source, err)
	}
	if !info.IsDir() {
		return p.copyFile(source, target, info.Mode())
	}

	return afero.Walk(p.fs, source, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(target, rel)

		if info.IsDir() {
			return p.fs.MkdirAll(dest, info.Mode().Perm())
		}
		return p.copyFile(path, dest, info.Mode())
	})
}

// CopyInto copies each source into dir, keeping its base name. Directory
// sources require recursive.
func (p *Planner) CopyInto(sources []string, dir string, recursive bool) error {
	for _, source := range sources {
		isDir, err := afero.IsDir(p.fs, source)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", source, err)
		}
		if isDir && !recursive {
			return invalidf("Refusing to import directory: %s as recursive flag is not set", source)
		}

		if err := p.Copy(source, filepath.Join(dir, filepath.Base(source))); err != nil {
			return err
		}
	}
	return nil
}

func (p *Planner) copyFile(source, target string, mode os.FileMode) error {
	in, err := p.fs.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer in.Close()

	if err := p.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
	}

	out, err := p.fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode.Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", source, err)
	}
	return out.Close()
}
