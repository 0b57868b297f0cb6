// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package qa

import (
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/validation"
)

// Config is the configuration of a linux-container QA environment.
type Config struct {
	// Env holds extra variables exposed at Agent startup. They win over
	// variables derived from the Agent config.
	Env map[string]string `json:"env" mapstructure:"env"`
	// E2E runs the mock intake service next to the Agent.
	E2E   bool   `json:"e2e" mapstructure:"e2e"`
	Image string `json:"image" mapstructure:"image"`
	// Pull fetches the image before every container creation.
	Pull bool `json:"pull" mapstructure:"pull"`
	// Network defaults to `host` on Linux and to port mappings elsewhere.
	Network string `json:"network" mapstructure:"network"`
	CLI     string `json:"cli" mapstructure:"cli"`
	Arch    string `json:"arch,omitempty" mapstructure:"arch"`
}

// DefaultConfig returns the configuration used for unset options.
func DefaultConfig() Config {
	return Config{
		Env:   map[string]string{},
		Image: "datadog/agent",
		CLI:   "docker",
	}
}

func (c Config) Validate() error {
	return validation.ValidateEnvironmentVariables(c.Env)
}
