// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package dev

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/env"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/events"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
)

// cacheCategories maps each cache kept across container lifecycles to its
// path inside the container.
var cacheCategories = []cacheVolume{
	{"go_build_cache", "/root/.cache/go-build"},
	{"go_mod_cache", "/go/pkg/mod"},
	{"pip_cache", "/root/.cache/pip"},
	{"uv_cache", "/root/.cache/uv"},
	{"cargo_registry", "/root/.cargo/registry"},
	{"cargo_git", "/root/.cargo/git"},
	{"omnibus_gems", "/omnibus/vendor/bundle"},
	{"omnibus_cache", "/omnibus/cache"},
	{"omnibus_git_cache", "/tmp/omnibus-git-cache"},
	{"vscode_extensions", "/root/.vscode-extensions"},
}

type cacheVolume struct {
	name string
	path string
}

// cacheVolumes are shared by every instance of the type and architecture.
func (c *LinuxContainer) cacheVolumes() []cacheVolume {
	prefix := "dda-env-dev-" + c.id.Type
	if c.config.Arch != "" {
		prefix += "-" + c.config.Arch
	}
	return lo.Map(cacheCategories, func(category cacheVolume, _ int) cacheVolume {
		return cacheVolume{name: prefix + "-" + category.name, path: category.path}
	})
}

// CacheVolumeNames lists the named volumes holding the caches.
func (c *LinuxContainer) CacheVolumeNames() []string {
	return lo.Map(c.cacheVolumes(), func(v cacheVolume, _ int) string { return v.name })
}

// RemoveCache deletes the cache volumes that exist.
func (c *LinuxContainer) RemoveCache(ctx context.Context, status models.EnvironmentStatus) error {
	if err := env.CheckTransition(c.id, env.OpRemoveCache, status); err != nil {
		return err
	}

	c.svc.Notify(events.EnvironmentCache, c.name, "Removing cache")
	existing, err := c.svc.Client().ListVolumes(ctx)
	if err != nil {
		return err
	}
	volumes := lo.Filter(c.CacheVolumeNames(), func(name string, _ int) bool {
		return lo.Contains(existing, name)
	})
	if err := c.svc.Client().RemoveVolumes(ctx, volumes...); err != nil {
		return fmt.Errorf("failed to remove cache volumes: %w", err)
	}
	return nil
}

// CacheSize returns the disk usage of the cache volumes in bytes.
func (c *LinuxContainer) CacheSize(ctx context.Context) (int64, error) {
	c.svc.Notify(events.EnvironmentCache, c.name, "Calculating cache size")
	sizes, err := c.svc.Client().VolumeSizes(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, name := range c.CacheVolumeNames() {
		total += sizes[name]
	}
	return total, nil
}
