// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

// EnvironmentMetadata is recorded when an environment is created.
type EnvironmentMetadata struct {
	Network NetworkMetadata `json:"network"`
}

// NetworkMetadata tells clients how to reach the environment.
type NetworkMetadata struct {
	Server string       `json:"server"`
	Ports  PortMetadata `json:"ports"`
}

// PortMetadata groups published ports by consumer.
type PortMetadata struct {
	// Agent maps a feature name such as "dogstatsd" to its published port.
	Agent map[string]Port `json:"agent"`
}

// NewEnvironmentMetadata returns metadata for server with no ports.
func NewEnvironmentMetadata(server string) EnvironmentMetadata {
	return EnvironmentMetadata{
		Network: NetworkMetadata{
			Server: server,
			Ports:  PortMetadata{Agent: make(map[string]Port)},
		},
	}
}
