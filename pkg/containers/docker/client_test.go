// Copyright (C) 2025-2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package docker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/process"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/retry"
	"github.com/DataDog/datadog-agent-dev-sub000/test/testutil"
)

func fastPull() retry.Policy {
	return retry.Policy{
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		Multiplier:      1,
		MaxElapsedTime:  time.Second,
		MaxTries:        3,
	}
}

func TestClient_DefaultsToDocker(t *testing.T) {
	assert.Equal(t, "docker", NewClient("", testutil.NewRecordingRunner()).Path())
	assert.Equal(t, "podman", NewClient("podman", testutil.NewRecordingRunner()).Path())
}

func TestClient_Status(t *testing.T) {
	runner := testutil.NewRecordingRunner().On([]string{"inspect"}, testutil.Running())
	client := NewClient("podman", runner)

	status, err := client.Status(context.Background(), "dda-linux-container-default")
	require.NoError(t, err)
	assert.Equal(t, models.StateStarted, status.State)

	call := testutil.SingleCall(t, runner, "inspect")
	assert.Equal(t, []string{"podman", "inspect", "dda-linux-container-default"}, call.Argv())
	assert.Equal(t, "0", call.Command.Env["DOCKER_CLI_HINTS"])
}

func TestClient_StatusMissingContainer(t *testing.T) {
	runner := testutil.NewRecordingRunner().On([]string{"inspect"}, testutil.Missing())

	status, err := NewClient("", runner).Status(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, models.StateNonexistent, status.State)
}

func TestClient_StatusRuntimeUnavailable(t *testing.T) {
	runner := testutil.NewRecordingRunner().On([]string{"inspect"}, testutil.Response{Err: errors.New("executable file not found")})

	_, err := NewClient("", runner).Status(context.Background(), "nope")
	assert.ErrorContains(t, err, "failed to inspect container nope")
}

func TestClient_StatusDaemonDown(t *testing.T) {
	runner := testutil.NewRecordingRunner().On([]string{"inspect"},
		testutil.Fail(1, "Cannot connect to the Docker daemon at unix:///var/run/docker.sock. Is the docker daemon running?"))

	_, err := NewClient("", runner).Status(context.Background(), "nope")

	assert.ErrorContains(t, err, "failed to inspect container nope")
	assert.ErrorContains(t, err, "Is the docker daemon running?")
}

func TestClient_StatusMissingContainerPodman(t *testing.T) {
	runner := testutil.NewRecordingRunner().On([]string{"inspect"}, testutil.Fail(125, "Error: no such container nope"))

	status, err := NewClient("podman", runner).Status(context.Background(), "nope")
	require.NoError(t, err)
	assert.Equal(t, models.StateNonexistent, status.State)
}

func TestClient_Run(t *testing.T) {
	runner := testutil.NewRecordingRunner()
	client := NewClient("", runner)

	config := models.NewContainerConfig("dda-qa-linux-container-default", "datadog/agent").
		Env("DD_API_KEY", "foo")
	require.NoError(t, client.Run(context.Background(), config))

	call := testutil.SingleCall(t, runner, "run")
	assert.Equal(t, []string{"docker", "run", "-d", "--name", "dda-qa-linux-container-default", "-e", "DD_API_KEY", "datadog/agent"}, call.Argv())
	assert.Equal(t, "foo", call.Command.Env["DD_API_KEY"])
	assert.Equal(t, "0", call.Command.Env["DOCKER_CLI_HINTS"])
}

func TestClient_LifecycleArgs(t *testing.T) {
	runner := testutil.NewRecordingRunner()
	client := NewClient("", runner)
	ctx := context.Background()
	zero := time.Duration(0)

	require.NoError(t, client.Start(ctx, "c"))
	require.NoError(t, client.Stop(ctx, "c", &zero))
	require.NoError(t, client.Stop(ctx, "c", nil))
	require.NoError(t, client.Restart(ctx, "c"))
	require.NoError(t, client.Remove(ctx, "c"))
	require.NoError(t, client.Exec(ctx, "c", []string{"agent", "status"}))
	_, err := client.ExecInteractive(ctx, "c", []string{"bash"})
	require.NoError(t, err)
	require.NoError(t, client.RemoveVolumes(ctx))
	require.NoError(t, client.RemoveVolumes(ctx, "v1", "v2"))

	assert.Equal(t, []string{
		"docker start c",
		"docker stop -t 0 c",
		"docker stop c",
		"docker restart c",
		"docker rm -f c",
		"docker exec -t c agent status",
		"docker exec -it c bash",
		"docker volume rm v1 v2",
	}, runner.Commands())

	calls := runner.Calls()
	assert.Equal(t, testutil.ModeRun, calls[5].Mode)
	assert.Equal(t, testutil.ModeAttach, calls[6].Mode)
}

func TestClient_PullRetriesTransientFailures(t *testing.T) {
	runner := testutil.NewRecordingRunner().On([]string{"pull"},
		testutil.Fail(1, "net/http: TLS handshake timeout"),
		testutil.Response{},
	)
	client := NewClient("", runner).WithPullPolicy(fastPull())

	require.NoError(t, client.Pull(context.Background(), "datadog/agent", "arm64"))
	calls := runner.CallsWith("pull")
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"docker", "pull", "datadog/agent", "--platform", "linux/arm64"}, calls[0].Argv())
}

func TestClient_PullFailsFastOnMissingImage(t *testing.T) {
	runner := testutil.NewRecordingRunner().On([]string{"pull"},
		testutil.Fail(1, "Error response from daemon: manifest for foo:latest not found"),
	)
	client := NewClient("", runner).WithPullPolicy(fastPull())

	err := client.Pull(context.Background(), "foo", "")
	var cmdErr *process.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Contains(t, err.Error(), "not found")
	assert.Len(t, runner.CallsWith("pull"), 1)
}

func TestClient_ListVolumes(t *testing.T) {
	runner := testutil.NewRecordingRunner().On([]string{"volume", "ls"},
		testutil.Response{Stdout: "foo\ndda-env-dev-linux-container-go_build_cache\n\nbar\n"},
	)

	volumes, err := NewClient("", runner).ListVolumes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "dda-env-dev-linux-container-go_build_cache", "bar"}, volumes)
	assert.Equal(t, []string{"docker volume ls --format {{.Name}}"}, runner.Commands())
}

func TestClient_VolumeSizes(t *testing.T) {
	runner := testutil.NewRecordingRunner().On([]string{"system", "df"},
		testutil.Response{Stdout: "foo 1TB\ncache-a 512MB\ncache-b 1GB\ntiny 1000B\nzero 0B\n"},
	)

	sizes, err := NewClient("", runner).VolumeSizes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(512*1024*1024), sizes["cache-a"])
	assert.Equal(t, int64(1024*1024*1024), sizes["cache-b"])
	assert.Equal(t, int64(1000), sizes["tiny"])
	assert.Equal(t, int64(0), sizes["zero"])
	assert.Len(t, sizes, 5)
}

func TestParseVolumeSizes_Invalid(t *testing.T) {
	_, err := ParseVolumeSizes("cache lots")
	assert.Error(t, err)

	_, err = ParseVolumeSizes("just-a-name")
	assert.Error(t, err)
}
