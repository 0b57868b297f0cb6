// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry maps environment type names to their implementations.
// The available types depend on the host platform.
package registry

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/agentconfig"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/env"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/env/dev"
	"github.com/DataDog/datadog-agent-dev-sub000/internal/env/qa"
)

// DevFactory opens a developer environment instance. A nil overrides map
// selects the persisted configuration.
type DevFactory func(host env.Host, instance string, overrides map[string]any) (env.DeveloperEnvironment, error)

// QAFactory opens a QA environment instance. template is only consulted
// when the environment is created.
type QAFactory func(host env.Host, instance string, overrides map[string]any, template *agentconfig.AgentConfig) (env.QAEnvironment, error)

// UnknownEnvironmentError is returned for a type not available on this
// platform.
type UnknownEnvironmentError struct {
	Kind      env.Kind
	Name      string
	Available []string
}

func (e *UnknownEnvironmentError) Error() string {
	kind := "developer"
	if e.Kind == env.KindQA {
		kind = "QA"
	}
	return fmt.Sprintf("Unknown %s environment: %s (available: %s)", kind, e.Name, strings.Join(e.Available, ", "))
}

// NotImplementedError is returned when opening a type that is registered
// for the platform but has no implementation yet.
type NotImplementedError struct {
	Kind env.Kind
	Name string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s type is not implemented: %s", e.Kind.Title(), e.Name)
}

func openDevLinuxContainer(host env.Host, instance string, overrides map[string]any) (env.DeveloperEnvironment, error) {
	return dev.Open(host, instance, overrides)
}

func openQALinuxContainer(host env.Host, instance string, overrides map[string]any, template *agentconfig.AgentConfig) (env.QAEnvironment, error) {
	return qa.Open(host, instance, overrides, template)
}

func unimplementedDev(name string) DevFactory {
	return func(env.Host, string, map[string]any) (env.DeveloperEnvironment, error) {
		return nil, &NotImplementedError{Kind: env.KindDev, Name: name}
	}
}

func unimplementedQA(name string) QAFactory {
	return func(env.Host, string, map[string]any, *agentconfig.AgentConfig) (env.QAEnvironment, error) {
		return nil, &NotImplementedError{Kind: env.KindQA, Name: name}
	}
}

// Registry resolves type names for one platform.
type Registry struct {
	goos string
	dev  map[string]DevFactory
	qa   map[string]QAFactory
}

// New returns the registry of the platform goos.
func New(goos string) *Registry {
	r := &Registry{
		goos: goos,
		dev: map[string]DevFactory{
			dev.Type:        openDevLinuxContainer,
			"windows-cloud": unimplementedDev("windows-cloud"),
		},
		qa: map[string]QAFactory{
			qa.Type: openQALinuxContainer,
		},
	}

	switch goos {
	case "windows":
		r.dev["windows-container"] = unimplementedDev("windows-container")
		r.qa["windows-container"] = unimplementedQA("windows-container")
	case "darwin":
		r.qa["local-macos-vm"] = unimplementedQA("local-macos-vm")
	}
	return r
}

// Default is the registry of the running platform.
func Default() *Registry {
	return New(runtime.GOOS)
}

// DefaultType is the environment type used when none is configured.
func (r *Registry) DefaultType() string {
	if r.goos == "windows" {
		return "windows-container"
	}
	return dev.Type
}

func (r *Registry) DevTypes() []string {
	return sortedKeys(r.dev)
}

func (r *Registry) QATypes() []string {
	return sortedKeys(r.qa)
}

// Dev returns the factory of the developer environment type name.
func (r *Registry) Dev(name string) (DevFactory, error) {
	factory, ok := r.dev[name]
	if !ok {
		return nil, &UnknownEnvironmentError{Kind: env.KindDev, Name: name, Available: r.DevTypes()}
	}
	return factory, nil
}

// QA returns the factory of the QA environment type name.
func (r *Registry) QA(name string) (QAFactory, error) {
	factory, ok := r.qa[name]
	if !ok {
		return nil, &UnknownEnvironmentError{Kind: env.KindQA, Name: name, Available: r.QATypes()}
	}
	return factory, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
