// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ssh builds ssh invocations and manages per-host client config.
package ssh

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/logger"
)

// RelativeConfigDir holds one file per managed host, below the ssh dir.
const RelativeConfigDir = ".dda"

// Option is a single ssh_config keyword. Keywords may repeat, e.g. SetEnv.
type Option struct {
	Key   string
	Value string
}

// BaseCommand returns the ssh argv reaching destination on port. The remote
// command is appended after the trailing "--".
func BaseCommand(destination string, port int) []string {
	return []string{
		"ssh",
		"-A",
		"-q",
		"-t",
		"-p", strconv.Itoa(port),
		destination,
		"--",
	}
}

// DefaultDir returns ~/.ssh.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".ssh"), nil
}

// SandboxOptions disable host key checks for throwaway local containers.
// Port and user are always given on the command line so they never leak to
// other connections to the same host.
func SandboxOptions() []Option {
	return []Option{
		{Key: "StrictHostKeyChecking", Value: "no"},
		{Key: "ForwardAgent", Value: "yes"},
		{Key: "UserKnownHostsFile", Value: "/dev/null"},
		{Key: "SetEnv", Value: "TERM=xterm-256color"},
	}
}

// WriteServerConfig writes the config of host below dir and makes sure the
// main config includes it.
func WriteServerConfig(dir, host string, options []Option) error {
	lines := []string{"Host " + host}
	for _, option := range options {
		lines = append(lines, fmt.Sprintf("    %s %s", option.Key, option.Value))
	}
	lines = append(lines, "")

	path := filepath.Join(dir, RelativeConfigDir, host)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600); err != nil {
		return fmt.Errorf("failed to write ssh config for %s: %w", host, err)
	}

	log := logger.GetSSHLogger()
	log.Debug().Str("host", host).Str("path", path).Msg("Wrote ssh config")

	return EnsureInclusion(dir)
}

// EnsureInclusion prepends the include line for managed hosts to the main
// config once.
func EnsureInclusion(dir string) error {
	path := filepath.Join(dir, "config")
	expected := "Include " + RelativeConfigDir + "/*"

	var lines []string
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	case !os.IsNotExist(err):
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if slices.Contains(lines, expected) {
		return nil
	}

	lines = append([]string{expected}, lines...)
	lines = append(lines, "")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
