// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package dev

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
	"github.com/DataDog/datadog-agent-dev-sub000/test/testutil"
)

func TestCacheVolumeNames(t *testing.T) {
	f := newFixture(t)

	names := f.container(t, nil).CacheVolumeNames()
	require.Len(t, names, 10)
	assert.Equal(t, "dda-env-dev-linux-container-go_build_cache", names[0])
	assert.Equal(t, "dda-env-dev-linux-container-vscode_extensions", names[9])

	arm := f.container(t, func(config *Config) { config.Arch = "arm64" }).CacheVolumeNames()
	assert.Equal(t, "dda-env-dev-linux-container-arm64-go_build_cache", arm[0])
}

func TestRemoveCache(t *testing.T) {
	f := newFixture(t)
	f.runner.On([]string{"volume", "ls"}, testutil.Response{
		Stdout: "dda-env-dev-linux-container-pip_cache\nunrelated\ndda-env-dev-linux-container-go_mod_cache\n",
	})
	c := f.container(t, nil)

	require.NoError(t, c.RemoveCache(context.Background(), models.Status(models.StateStopped)))

	assert.Equal(t, []string{
		"docker", "volume", "rm",
		"dda-env-dev-linux-container-go_mod_cache",
		"dda-env-dev-linux-container-pip_cache",
	}, testutil.SingleCall(t, f.runner, "volume", "rm").Argv())
	assert.Equal(t, []string{"Removing cache"}, f.recorder.Messages())
}

func TestRemoveCache_NothingToRemove(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, nil)

	require.NoError(t, c.RemoveCache(context.Background(), models.Status(models.StateNonexistent)))

	testutil.AssertNoCallsWith(t, f.runner, "volume", "rm")
}

func TestRemoveCache_RequiresStoppedContainer(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, nil)

	err := c.RemoveCache(context.Background(), models.Status(models.StateStarted))

	assert.EqualError(t, err, "Cannot remove cache for developer environment `linux-container` in state `started`, must be one of: nonexistent, stopped")
	assert.Empty(t, f.runner.Calls())
}

func TestCacheSize(t *testing.T) {
	f := newFixture(t)
	f.runner.On([]string{"system", "df"}, testutil.Response{
		Stdout: "dda-env-dev-linux-container-go_mod_cache 512MB\n" +
			"dda-env-dev-linux-container-pip_cache 1GB\n" +
			"other 5GB\n",
	})
	c := f.container(t, nil)

	size, err := c.CacheSize(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1536*1024*1024), size)
	assert.Equal(t, []string{"Calculating cache size"}, f.recorder.Messages())
}
