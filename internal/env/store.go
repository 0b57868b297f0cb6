// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package env

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
)

// ConfigFileName holds the persisted environment configuration.
const ConfigFileName = "config.json"

// SaveJSON writes v to path, creating parent directories.
func SaveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LoadJSON decodes path into v. It reports false, leaving v untouched, when
// the file does not exist.
func LoadJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return true, nil
}

// RemoveFile deletes path if it exists.
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// DecodeConfig overlays user supplied values onto result, which should
// already hold the defaults. Unknown keys are rejected and list values may
// be given as comma separated strings.
func DecodeConfig(input map[string]any, result any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           result,
		TagName:          "mapstructure",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("invalid environment configuration: %w", err)
	}
	return nil
}

// CheckReconfigure refuses explicitly set options when the environment
// already has a persisted configuration.
func CheckReconfigure(configFile string, explicit []string) error {
	if len(explicit) == 0 {
		return nil
	}
	if _, err := os.Stat(configFile); err != nil {
		return nil
	}
	options := slices.Clone(explicit)
	slices.Sort(options)
	return &ReconfigureError{Options: options}
}

// MachineID returns the identifier of this host, generating it on first use.
func MachineID(dataDir string) (string, error) {
	path := filepath.Join(dataDir, "machine_id")
	data, err := os.ReadFile(path)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to read machine id: %w", err)
	}

	id := uuid.NewString()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dataDir, err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("failed to write machine id: %w", err)
	}
	return id, nil
}
