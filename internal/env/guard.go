// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package env

import (
	"slices"

	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
)

// Operation is a state changing request, worded as it appears in messages.
type Operation string

const (
	OpStart       Operation = "start"
	OpStop        Operation = "stop"
	OpRestart     Operation = "restart"
	OpRemove      Operation = "remove"
	OpRemoveCache Operation = "remove cache for"
	OpSyncConfig  Operation = "sync Agent configuration for"
)

// transitions lists the states each operation may be requested from.
var transitions = map[Operation][]models.EnvironmentState{
	OpStart:       {models.StateNonexistent, models.StateStopped},
	OpStop:        {models.StateStarted},
	OpRestart:     {models.StateStarted},
	OpRemove:      {models.StateStopped, models.StateError},
	OpRemoveCache: {models.StateNonexistent, models.StateStopped},
	OpSyncConfig:  {models.StateStarted},
}

// AllowedStates returns the states op may be requested from.
func AllowedStates(op Operation) []models.EnvironmentState {
	return slices.Clone(transitions[op])
}

// CheckTransition fails unless op is allowed from the observed status.
func CheckTransition(id Identity, op Operation, status models.EnvironmentStatus) error {
	allowed, ok := transitions[op]
	if !ok || !slices.Contains(allowed, status.State) {
		return &PreconditionError{Identity: id, Operation: op, State: status.State, Allowed: allowed}
	}
	return nil
}

// RequireStarted fails unless the environment is running, for commands
// that need to reach inside it.
func RequireStarted(id Identity, status models.EnvironmentStatus) error {
	if status.State != models.StateStarted {
		return &PreconditionError{
			Identity: id,
			State:    status.State,
			Allowed:  []models.EnvironmentState{models.StateStarted},
		}
	}
	return nil
}
