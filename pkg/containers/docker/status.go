// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package docker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"

	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
)

// inspection is the subset of `inspect` output needed to derive a state.
type inspection struct {
	State *container.State `json:"State"`
}

// MapInspection derives the environment state from raw `inspect` output.
// Empty output, null, {} and [] all mean the container does not exist.
func MapInspection(output []byte) (models.EnvironmentState, error) {
	trimmed := bytes.TrimSpace(output)
	switch string(trimmed) {
	case "", "null", "{}", "[]":
		return models.StateNonexistent, nil
	}

	var items []inspection
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return models.StateUnknown, fmt.Errorf("failed to decode inspect output: %w", err)
	}
	if len(items) == 0 {
		return models.StateNonexistent, nil
	}
	if items[0].State == nil {
		return models.StateUnknown, nil
	}

	return MapState(string(items[0].State.Status), items[0].State.ExitCode), nil
}

// MapState maps a runtime status string and exit code to a lifecycle
// state. Any non-zero exit code of an exited container is an error.
func MapState(status string, exitCode int) models.EnvironmentState {
	switch strings.ToLower(status) {
	case "running":
		return models.StateStarted
	case "created", "paused":
		return models.StateStopped
	case "exited":
		if exitCode != 0 {
			return models.StateError
		}
		return models.StateStopped
	case "restarting":
		return models.StateStarting
	case "removing":
		return models.StateStopping
	default:
		return models.StateUnknown
	}
}
