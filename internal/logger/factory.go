// Copyright (C) 2025-2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package logger

import (
	"github.com/rs/zerolog"
)

// Static logger getters that map directly to config.yaml log.levels
// These ensure consistent logger names across the codebase

// GetEnvLogger returns a logger for environment lifecycle operations
func GetEnvLogger() zerolog.Logger {
	return GetLogger("env")
}

// GetContainerLogger returns a logger for container runtime operations
func GetContainerLogger() zerolog.Logger {
	return GetLogger("container")
}

// GetProcessLogger returns a logger for subprocess invocations
func GetProcessLogger() zerolog.Logger {
	return GetLogger("process")
}

// GetSSHLogger returns a logger for ssh configuration
func GetSSHLogger() zerolog.Logger {
	return GetLogger("ssh")
}

// GetTransferLogger returns a logger for file import/export
func GetTransferLogger() zerolog.Logger {
	return GetLogger("transfer")
}

// GetAgentConfigLogger returns a logger for agent configuration handling
func GetAgentConfigLogger() zerolog.Logger {
	return GetLogger("agentconfig")
}

// GetCLILogger returns a logger for command handling
func GetCLILogger() zerolog.Logger {
	return GetLogger("cli")
}
