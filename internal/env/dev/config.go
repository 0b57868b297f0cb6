// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package dev

import (
	"errors"
	"strings"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/shells"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/validation"
)

// Config is the configuration of a linux-container developer environment.
// It is fixed when the environment is first started.
type Config struct {
	// Repos are repository names, optionally pinned with `@<ref>`.
	Repos            []string `json:"repos" mapstructure:"repos"`
	Clone            bool     `json:"clone" mapstructure:"clone"`
	Image            string   `json:"image" mapstructure:"image"`
	NoPull           bool     `json:"no_pull" mapstructure:"no_pull"`
	CLI              string   `json:"cli" mapstructure:"cli"`
	Shell            string   `json:"shell" mapstructure:"shell"`
	Arch             string   `json:"arch,omitempty" mapstructure:"arch"`
	ExtraVolumeSpecs []string `json:"extra_volume_specs" mapstructure:"extra_volume_specs"`
	ExtraMountSpecs  []string `json:"extra_mount_specs" mapstructure:"extra_mount_specs"`
}

// DefaultConfig returns the configuration used for unset options.
func DefaultConfig() Config {
	return Config{
		Repos:            []string{"datadog-agent"},
		Image:            "datadog/agent-dev-env-linux",
		CLI:              "docker",
		Shell:            "zsh",
		ExtraVolumeSpecs: []string{},
		ExtraMountSpecs:  []string{},
	}
}

// Validate checks the options that are passed on to the container runtime.
func (c Config) Validate() error {
	if len(c.Repos) == 0 {
		return errors.New("at least one repository is required")
	}
	if _, err := shells.Get(c.Shell); err != nil {
		return err
	}
	if err := validation.ValidateVolumeSpecs(c.ExtraVolumeSpecs); err != nil {
		return err
	}
	return validation.ValidateMountSpecs(c.ExtraMountSpecs)
}

// DefaultRepo is the repository used when a command names none.
func (c Config) DefaultRepo() string {
	repo, _ := splitRepoSpec(c.Repos[0])
	return repo
}

// splitRepoSpec splits `name@ref` into its parts.
func splitRepoSpec(spec string) (string, string) {
	repo, ref, _ := strings.Cut(spec, "@")
	return repo, ref
}
