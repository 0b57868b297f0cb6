// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package dev

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/env"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/process"
)

// repoResolver locates local checkouts of repositories.
type repoResolver struct {
	runner  process.Runner
	workDir string
}

// resolve returns the host path of repo: the working directory when it is
// a checkout of repo, whatever the directory is called, otherwise a sibling
// directory named after it.
func (r repoResolver) resolve(ctx context.Context, repo string) (string, error) {
	if r.originName(ctx, r.workDir) == repo {
		return r.workDir, nil
	}

	sibling := filepath.Join(filepath.Dir(r.workDir), repo)
	if info, err := os.Stat(sibling); err == nil && info.IsDir() {
		return sibling, nil
	}
	return "", &env.RepositoryNotFoundError{Repo: repo}
}

// originName infers the repository name from the origin remote of dir.
func (r repoResolver) originName(ctx context.Context, dir string) string {
	output, err := r.runner.Capture(ctx, process.Command{
		Name: "git",
		Args: []string{"-C", dir, "remote", "get-url", "origin"},
	})
	if err != nil {
		return ""
	}
	return repoNameFromURL(output)
}

// repoNameFromURL handles both https://host/org/repo.git and
// git@host:org/repo forms.
func repoNameFromURL(url string) string {
	url = strings.TrimSuffix(strings.TrimSpace(url), "/")
	url = strings.TrimSuffix(url, ".git")
	if i := strings.LastIndexAny(url, "/:"); i >= 0 {
		url = url[i+1:]
	}
	return url
}
