// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import (
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/docker/docker/api/types/mount"
	"github.com/samber/lo"
)

// ErrBindSourceRequired is returned for a bind mount without a host path.
var ErrBindSourceRequired = errors.New("source is required for bind mounts")

// Mount describes a bind or named volume mount in `--mount` flag terms.
type Mount struct {
	Type mount.Type `json:"type"`
	// Path inside the container.
	Path string `json:"path"`
	// Source is the host path for binds and the volume name for volumes.
	// Anonymous volumes leave it empty.
	Source        string            `json:"source,omitempty"`
	ReadOnly      bool              `json:"read_only,omitempty"`
	VolumeOptions map[string]string `json:"volume_options,omitempty"`
}

// BindMount mounts the host path source at path.
func BindMount(source, path string) Mount {
	return Mount{Type: mount.TypeBind, Source: source, Path: path}
}

// VolumeMount mounts the named volume at path.
func VolumeMount(name, path string) Mount {
	return Mount{Type: mount.TypeVolume, Source: name, Path: path}
}

// Validate checks the mount can be handed to the container runtime.
func (m Mount) Validate() error {
	switch m.Type {
	case mount.TypeBind:
		if m.Source == "" {
			return ErrBindSourceRequired
		}
	case mount.TypeVolume:
	default:
		return fmt.Errorf("unsupported mount type: %q", m.Type)
	}
	if m.Path == "" {
		return errors.New("mount path is required")
	}
	return nil
}

// CSV renders the mount as a single RFC 4180 record suitable for the
// `--mount` flag, without a trailing newline.
func (m Mount) CSV() (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}

	columns := []string{"type=" + string(m.Type)}
	if m.Source != "" {
		columns = append(columns, "src="+m.hostSource())
	}
	columns = append(columns, "dst="+m.Path)
	if m.ReadOnly {
		columns = append(columns, "ro")
	}

	options := lo.Keys(m.VolumeOptions)
	slices.Sort(options)
	for _, option := range options {
		columns = append(columns, fmt.Sprintf("volume-opt=%s=%s", option, m.VolumeOptions[option]))
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(columns); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\r\n"), nil
}

// hostSource converts absolute Windows bind sources to the /c/... form the
// runtime expects.
func (m Mount) hostSource() string {
	if m.Type != mount.TypeBind || runtime.GOOS != "windows" || !filepath.IsAbs(m.Source) {
		return m.Source
	}
	drive := filepath.VolumeName(m.Source)
	rest := filepath.ToSlash(m.Source[len(drive):])
	return "/" + strings.ToLower(strings.TrimSuffix(drive, ":")) + rest
}
