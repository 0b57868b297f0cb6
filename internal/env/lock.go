// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package env

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFile is created in the instance directory and never deleted.
const LockFile = ".lock"

// Lock is a cross-process exclusive lock on an environment instance.
type Lock struct {
	fl *flock.Flock
}

// NewLock returns the lock guarding the instance stored in dir.
func NewLock(dir string) *Lock {
	return &Lock{fl: flock.New(filepath.Join(dir, LockFile))}
}

// TryLock acquires the lock without waiting. ErrBusy means another
// process is operating on the same instance.
func (l *Lock) TryLock() error {
	if err := os.MkdirAll(filepath.Dir(l.fl.Path()), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(l.fl.Path()), err)
	}
	locked, err := l.fl.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", l.fl.Path(), err)
	}
	if !locked {
		return ErrBusy
	}
	return nil
}

// Unlock releases the lock.
func (l *Lock) Unlock() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.fl.Path(), err)
	}
	return nil
}

// WithLock runs fn while holding the lock of the instance stored in dir.
// The lock is released even when fn fails.
func WithLock(dir string, fn func() error) error {
	lock := NewLock(dir)
	if err := lock.TryLock(); err != nil {
		return err
	}
	defer lock.Unlock() //nolint:errcheck
	return fn()
}
