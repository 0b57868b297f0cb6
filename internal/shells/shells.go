// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shells formats commands for the shells available in developer
// environments.
package shells

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"
)

// Shell turns a working directory and argv into a remote command line.
type Shell interface {
	Name() string
	// LoginCommand starts an interactive login shell in cwd.
	LoginCommand(cwd string) string
	// FormatCommand runs args in cwd.
	FormatCommand(args []string, cwd string) string
}

// UnknownShellError is returned by Get for an unsupported shell name.
type UnknownShellError struct {
	Name string
}

func (e *UnknownShellError) Error() string {
	return fmt.Sprintf("Unknown shell `%s`, must be one of: %s", e.Name, strings.Join(Available(), ", "))
}

var registry = map[string]Shell{
	"bash": posix{name: "bash"},
	"zsh":  posix{name: "zsh"},
	"nu":   nu{},
}

// Available lists the supported shell names in order.
func Available() []string {
	names := lo.Keys(registry)
	slices.Sort(names)
	return names
}

// Get returns the named shell.
func Get(name string) (Shell, error) {
	shell, ok := registry[name]
	if !ok {
		return nil, &UnknownShellError{Name: name}
	}
	return shell, nil
}

type posix struct {
	name string
}

func (s posix) Name() string { return s.name }

func (s posix) LoginCommand(cwd string) string {
	return inDir(cwd, shellquote.Join(s.name, "-l", "-i"))
}

func (s posix) FormatCommand(args []string, cwd string) string {
	return inDir(cwd, shellquote.Join(args...))
}

// nu does not support `&&`, so both forms run through sh.
type nu struct{}

func (nu) Name() string { return "nu" }

func (nu) LoginCommand(cwd string) string {
	return viaSh(inDir(cwd, shellquote.Join("nu", "-l", "-i")))
}

func (nu) FormatCommand(args []string, cwd string) string {
	return viaSh(inDir(cwd, shellquote.Join("nu", "-c", shellquote.Join(args...))))
}

func inDir(cwd, command string) string {
	return fmt.Sprintf("cd %s && %s", shellquote.Join(cwd), command)
}

func viaSh(command string) string {
	return shellquote.Join("sh", "-l", "-c", command)
}
