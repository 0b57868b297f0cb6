// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

// EnvironmentState is the lifecycle state of an environment, always derived
// from the live container runtime.
type EnvironmentState string

const (
	StateStarted     EnvironmentState = "started"
	StateStopped     EnvironmentState = "stopped"
	StateStarting    EnvironmentState = "starting"
	StateStopping    EnvironmentState = "stopping"
	StateError       EnvironmentState = "error"
	StateNonexistent EnvironmentState = "nonexistent"
	StateUnknown     EnvironmentState = "unknown"
)

// EnvironmentStatus is a single observation of an environment.
type EnvironmentStatus struct {
	State EnvironmentState `json:"state"`
	Info  string           `json:"info,omitempty"`
}

// Status is shorthand for a status without extra information.
func Status(state EnvironmentState) EnvironmentStatus {
	return EnvironmentStatus{State: state}
}
