// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package env

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
)

var (
	// ErrRelativePath is returned for sandbox paths that are not absolute.
	ErrRelativePath = errors.New("path inside the environment must be absolute")

	// ErrBusy is returned when another process holds the instance lock.
	ErrBusy = errors.New("environment is busy")
)

// PreconditionError reports an operation requested in a state that does not
// allow it. Operation is empty for commands that merely need access to the
// environment, such as shell or run.
type PreconditionError struct {
	Identity  Identity
	Operation Operation
	State     models.EnvironmentState
	Allowed   []models.EnvironmentState
}

func (e *PreconditionError) Error() string {
	if e.Operation == "" {
		return fmt.Sprintf("%s is in state `%s`, %s", e.Identity.Describe(true), e.State, mustBe(e.Allowed))
	}
	return fmt.Sprintf("Cannot %s %s in state `%s`, %s", e.Operation, e.Identity.Describe(false), e.State, mustBe(e.Allowed))
}

func mustBe(allowed []models.EnvironmentState) string {
	if len(allowed) == 1 {
		return fmt.Sprintf("must be `%s`", allowed[0])
	}
	names := make([]string, 0, len(allowed))
	for _, state := range allowed {
		names = append(names, string(state))
	}
	slices.Sort(names)
	return "must be one of: " + strings.Join(names, ", ")
}

// RepositoryNotFoundError is returned when no local checkout of Repo exists.
type RepositoryNotFoundError struct {
	Repo string
}

func (e *RepositoryNotFoundError) Error() string {
	return "local repository not found: " + e.Repo
}

// NotSupportedError is returned for a capability or configuration option an
// environment type lacks.
type NotSupportedError struct {
	Identity   Identity
	Capability string
	Option     string
}

func (e *NotSupportedError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("The `%s` %s does not support the `%s` option", e.Identity.Type, e.Identity.Kind.Noun(), e.Option)
	}
	return fmt.Sprintf("%s type does not support %s: %s", e.Identity.Kind.Title(), e.Capability, e.Identity.Type)
}

// ReconfigureError is returned when options are passed to start an
// environment whose configuration was already persisted.
type ReconfigureError struct {
	Options []string
}

func (e *ReconfigureError) Error() string {
	return fmt.Sprintf(
		"Ignoring the following options as environments cannot be reconfigured from a stopped state: %s\n"+
			"To change the configuration, you must remove the environment after stopping it.",
		strings.Join(e.Options, ", "),
	)
}
