// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package env

import (
	"fmt"
	"path/filepath"
)

// DefaultInstance is used when no instance name is given.
const DefaultInstance = "default"

// Kind separates developer environments from QA environments.
type Kind string

const (
	KindDev Kind = "dev"
	KindQA  Kind = "qa"
)

// Noun returns the kind as written inside a sentence.
func (k Kind) Noun() string {
	if k == KindQA {
		return "QA environment"
	}
	return "developer environment"
}

// Title returns the kind as written at the start of a sentence.
func (k Kind) Title() string {
	if k == KindQA {
		return "QA environment"
	}
	return "Developer environment"
}

// Identity names a single environment instance.
type Identity struct {
	Kind     Kind
	Type     string
	Instance string
}

// NewIdentity returns the identity of instance, falling back to the
// default instance.
func NewIdentity(kind Kind, envType, instance string) Identity {
	if instance == "" {
		instance = DefaultInstance
	}
	return Identity{Kind: kind, Type: envType, Instance: instance}
}

// Describe names the environment in user facing messages. QA environments
// include the instance since several usually coexist.
func (id Identity) Describe(capitalized bool) string {
	noun := id.Kind.Noun()
	if capitalized {
		noun = id.Kind.Title()
	}
	if id.Kind == KindQA {
		return fmt.Sprintf("%s `%s` of type `%s`", noun, id.Instance, id.Type)
	}
	return fmt.Sprintf("%s `%s`", noun, id.Type)
}

// TypeDir is the directory shared by every instance of the type.
func (id Identity) TypeDir(dataDir string) string {
	return filepath.Join(dataDir, "env", string(id.Kind), id.Type)
}

// Dir is the storage directory exclusively owned by the instance.
func (id Identity) Dir(dataDir string) string {
	return filepath.Join(id.TypeDir(dataDir), id.Instance)
}

func (id Identity) String() string {
	return fmt.Sprintf("%s/%s/%s", id.Kind, id.Type, id.Instance)
}
