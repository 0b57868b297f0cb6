// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package editors opens remote repositories in local code editors.
package editors

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/DataDog/datadog-agent-dev-sub000/pkg/process"
)

// DefaultEditor is used when none is configured.
const DefaultEditor = "vscode"

// Editor opens a path of a remote host over ssh.
type Editor interface {
	Name() string
	OpenViaSSH(ctx context.Context, server string, port int, path string) error
}

// UnsupportedEditorError is returned for an unknown editor name.
type UnsupportedEditorError struct {
	Name      string
	Available []string
}

func (e *UnsupportedEditorError) Error() string {
	return fmt.Sprintf("Unknown editor `%s`, must be one of: %s", e.Name, strings.Join(e.Available, ", "))
}

// binaries maps editor names to their command line launcher.
var binaries = map[string]string{
	"vscode": "code",
	"cursor": "cursor",
}

// Available lists the supported editors in order.
func Available() []string {
	names := lo.Keys(binaries)
	slices.Sort(names)
	return names
}

// Get returns the named editor, launching it through runner.
func Get(name string, runner process.Runner) (Editor, error) {
	binary, ok := binaries[name]
	if !ok {
		return nil, &UnsupportedEditorError{Name: name, Available: Available()}
	}
	return &remoteEditor{name: name, binary: binary, runner: runner}, nil
}

// remoteEditor drives editors built on the VS Code remote extension.
type remoteEditor struct {
	name   string
	binary string
	runner process.Runner
}

func (e *remoteEditor) Name() string { return e.name }

func (e *remoteEditor) OpenViaSSH(ctx context.Context, server string, port int, path string) error {
	return e.runner.Run(ctx, process.Command{
		Name: e.binary,
		Args: []string{"--remote", fmt.Sprintf("ssh-remote+root@%s:%d", server, port), path},
	})
}
