// Copyright (C) 2025-2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package docker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"

	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/process"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/retry"
)

// DefaultCLI is the container runtime binary used when none is configured.
const DefaultCLI = "docker"

// volumeSizeFormat prints one "<name> <size>" line per volume.
const volumeSizeFormat = "{{range .Volumes}}{{.Name}} {{.Size}}\n{{end}}"

// ClientInterface defines what environments need from the container runtime
type ClientInterface interface {
	Status(ctx context.Context, name string) (models.EnvironmentStatus, error)
	Pull(ctx context.Context, image, arch string) error
	Run(ctx context.Context, config *models.ContainerConfig) error
	Start(ctx context.Context, name string) error
	Stop(ctx context.Context, name string, timeout *time.Duration) error
	Restart(ctx context.Context, name string) error
	Remove(ctx context.Context, name string) error
	Logs(ctx context.Context, name string) (string, error)
	Exec(ctx context.Context, name string, cmd []string) error
	ExecInteractive(ctx context.Context, name string, cmd []string) (int, error)
	ListVolumes(ctx context.Context) ([]string, error)
	RemoveVolumes(ctx context.Context, names ...string) error
	VolumeSizes(ctx context.Context) (map[string]int64, error)
}

// Client implements ClientInterface by invoking a docker compatible CLI
type Client struct {
	path       string
	runner     process.Runner
	pullPolicy retry.Policy
}

// Compile-time check that Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// NewClient creates a client for the binary at path, e.g. `docker` or
// `podman`. An empty path selects DefaultCLI.
func NewClient(path string, runner process.Runner) *Client {
	if path == "" {
		path = DefaultCLI
	}
	policy := retry.DefaultPolicy()
	policy.MaxTries = 3
	return &Client{path: path, runner: runner, pullPolicy: policy}
}

// Path returns the runtime binary.
func (c *Client) Path() string {
	return c.path
}

// WithPullPolicy overrides the retry policy of Pull.
func (c *Client) WithPullPolicy(policy retry.Policy) *Client {
	c.pullPolicy = policy
	return c
}

// Status inspects the container. A missing container is not an error, but
// any other runtime failure, such as an unreachable daemon, is.
func (c *Client) Status(ctx context.Context, name string) (models.EnvironmentStatus, error) {
	output, err := c.runner.Capture(ctx, c.command(nil, "inspect", name))
	if err != nil {
		var cmdErr *process.CommandError
		if !errors.As(err, &cmdErr) || !isMissing(cmdErr) {
			return models.EnvironmentStatus{}, fmt.Errorf("failed to inspect container %s: %w", name, err)
		}
		output = cmdErr.Stdout
	}

	state, err := MapInspection([]byte(output))
	if err != nil {
		return models.EnvironmentStatus{}, err
	}
	return models.Status(state), nil
}

// isMissing reports whether a failed inspect only means the container does
// not exist. Runtimes without a diagnostic are given the benefit of the doubt.
func isMissing(err *process.CommandError) bool {
	stderr := strings.ToLower(strings.TrimSpace(err.Stderr))
	return stderr == "" || strings.Contains(stderr, "no such")
}

// Pull fetches image, retrying transient registry failures.
func (c *Client) Pull(ctx context.Context, image, arch string) error {
	args := []string{"pull", image}
	if arch != "" {
		args = append(args, "--platform", "linux/"+arch)
	}

	return retry.Do(ctx, c.pullPolicy, func(ctx context.Context) error {
		_, err := c.runner.Capture(ctx, c.command(nil, args...))
		return classifyPullError(err)
	})
}

// Run creates and starts a container.
func (c *Client) Run(ctx context.Context, config *models.ContainerConfig) error {
	args, err := config.RunArgs()
	if err != nil {
		return err
	}
	_, err = c.runner.Capture(ctx, c.command(config.EnvValues(), args...))
	return err
}

// Start resumes a stopped container.
func (c *Client) Start(ctx context.Context, name string) error {
	return c.capture(ctx, "start", name)
}

// Stop stops a container. A nil timeout leaves the runtime default.
func (c *Client) Stop(ctx context.Context, name string, timeout *time.Duration) error {
	args := []string{"stop"}
	if timeout != nil {
		args = append(args, "-t", strconv.Itoa(int(timeout.Seconds())))
	}
	return c.capture(ctx, append(args, name)...)
}

func (c *Client) Restart(ctx context.Context, name string) error {
	return c.capture(ctx, "restart", name)
}

// Remove force-removes a container.
func (c *Client) Remove(ctx context.Context, name string) error {
	return c.capture(ctx, "rm", "-f", name)
}

func (c *Client) Logs(ctx context.Context, name string) (string, error) {
	return c.runner.Capture(ctx, c.command(nil, "logs", name))
}

// Exec runs cmd in the container with a TTY, streaming its output.
func (c *Client) Exec(ctx context.Context, name string, cmd []string) error {
	return c.runner.Run(ctx, c.command(nil, append([]string{"exec", "-t", name}, cmd...)...))
}

// ExecInteractive attaches the terminal to cmd and returns its exit code.
func (c *Client) ExecInteractive(ctx context.Context, name string, cmd []string) (int, error) {
	return c.runner.Attach(ctx, c.command(nil, append([]string{"exec", "-it", name}, cmd...)...))
}

func (c *Client) ListVolumes(ctx context.Context) ([]string, error) {
	output, err := c.runner.Capture(ctx, c.command(nil, "volume", "ls", "--format", "{{.Name}}"))
	if err != nil {
		return nil, fmt.Errorf("failed to list volumes: %w", err)
	}
	return nonEmptyLines(output), nil
}

func (c *Client) RemoveVolumes(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	return c.capture(ctx, append([]string{"volume", "rm"}, names...)...)
}

// VolumeSizes returns the disk usage of every volume in bytes.
func (c *Client) VolumeSizes(ctx context.Context) (map[string]int64, error) {
	output, err := c.runner.Capture(ctx, c.command(nil, "system", "df", "-v", "--format", volumeSizeFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to read disk usage: %w", err)
	}
	return ParseVolumeSizes(output)
}

// ParseVolumeSizes parses "<name> <size>" lines such as "cache 1.5GB".
// Size suffixes are binary, matching the runtime's own rendering.
func ParseVolumeSizes(output string) (map[string]int64, error) {
	sizes := make(map[string]int64)
	for _, line := range nonEmptyLines(output) {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("unexpected disk usage line: %q", line)
		}
		size, err := units.RAMInBytes(fields[1])
		if err != nil {
			return nil, fmt.Errorf("invalid size for volume %s: %w", fields[0], err)
		}
		sizes[fields[0]] = size
	}
	return sizes, nil
}

func (c *Client) capture(ctx context.Context, args ...string) error {
	_, err := c.runner.Capture(ctx, c.command(nil, args...))
	return err
}

func (c *Client) command(env map[string]string, args ...string) process.Command {
	merged := map[string]string{"DOCKER_CLI_HINTS": "0"}
	for k, v := range env {
		merged[k] = v
	}
	return process.Command{Name: c.path, Args: args, Env: merged}
}

// classifyPullError decides whether a failed pull is worth retrying.
func classifyPullError(err error) error {
	var cmdErr *process.CommandError
	if err == nil || !errors.As(err, &cmdErr) {
		return err
	}

	msg := strings.ToLower(cmdErr.Error())
	switch {
	case strings.Contains(msg, "toomanyrequests"):
		return retry.Delayed(err, 10*time.Second)
	case strings.Contains(msg, "not found"),
		strings.Contains(msg, "denied"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "invalid reference"):
		return retry.FailFast(err)
	}
	return err
}

func nonEmptyLines(output string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
