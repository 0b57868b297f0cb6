// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import (
	"fmt"
	"maps"
)

// ContainerConfig builds a `run` invocation for the container runtime.
// Flags keep the order in which they are added.
type ContainerConfig struct {
	Name  string
	Image string
	// Environment holds values for variables forwarded by name with `-e NAME`.
	// They are passed through the runtime process environment so that they
	// never show up in argv.
	Environment map[string]string

	flags []string
	err   error
}

// NewContainerConfig starts a detached run of image named name.
func NewContainerConfig(name, image string) *ContainerConfig {
	return &ContainerConfig{
		Name:        name,
		Image:       image,
		Environment: make(map[string]string),
		flags:       []string{"-d", "--name", name},
	}
}

// PullNever disables implicit image pulls.
func (c *ContainerConfig) PullNever() *ContainerConfig {
	c.flags = append([]string{"--pull", "never"}, c.flags...)
	return c
}

// Platform pins the image platform to linux/<arch>. An empty arch is ignored.
func (c *ContainerConfig) Platform(arch string) *ContainerConfig {
	if arch != "" {
		c.flags = append(c.flags, "--platform", "linux/"+arch)
	}
	return c
}

// PublishTo maps a host port to a container port.
func (c *ContainerConfig) PublishTo(hostPort, containerPort int) *ContainerConfig {
	c.flags = append(c.flags, "-p", fmt.Sprintf("%d:%d", hostPort, containerPort))
	return c
}

// Publish maps a port to the same number inside the container.
func (c *ContainerConfig) Publish(port Port) *ContainerConfig {
	spec, err := port.PublishSpec()
	if err != nil {
		c.fail(err)
		return c
	}
	c.flags = append(c.flags, "-p", spec)
	return c
}

// Volume adds a raw `-v` spec.
func (c *ContainerConfig) Volume(spec string) *ContainerConfig {
	c.flags = append(c.flags, "-v", spec)
	return c
}

// Mount adds a `--mount` flag for m.
func (c *ContainerConfig) Mount(m Mount) *ContainerConfig {
	spec, err := m.CSV()
	if err != nil {
		c.fail(fmt.Errorf("invalid mount for %s: %w", m.Path, err))
		return c
	}
	return c.MountSpec(spec)
}

// MountSpec adds a raw `--mount` spec.
func (c *ContainerConfig) MountSpec(spec string) *ContainerConfig {
	c.flags = append(c.flags, "--mount", spec)
	return c
}

// Env forwards name, taking its value from Environment.
func (c *ContainerConfig) Env(name, value string) *ContainerConfig {
	c.Environment[name] = value
	c.flags = append(c.flags, "-e", name)
	return c
}

// EnvInline sets name=value directly in argv.
func (c *ContainerConfig) EnvInline(name, value string) *ContainerConfig {
	c.flags = append(c.flags, "-e", name+"="+value)
	return c
}

// Network attaches the container to network.
func (c *ContainerConfig) Network(network string) *ContainerConfig {
	c.flags = append(c.flags, "--network", network)
	return c
}

// RunArgs returns the full argument list after the runtime binary.
func (c *ContainerConfig) RunArgs() ([]string, error) {
	if c.err != nil {
		return nil, c.err
	}
	args := make([]string, 0, len(c.flags)+2)
	args = append(args, "run")
	args = append(args, c.flags...)
	args = append(args, c.Image)
	return args, nil
}

// EnvValues returns a copy of the forwarded environment values.
func (c *ContainerConfig) EnvValues() map[string]string {
	return maps.Clone(c.Environment)
}

func (c *ContainerConfig) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}
