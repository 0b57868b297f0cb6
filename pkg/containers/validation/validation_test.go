// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEnvironmentVariables(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		expectError   bool
		errorContains string
	}{
		{
			name: "valid agent variables",
			env: map[string]string{
				"DD_LOG_LEVEL":  "debug",
				"DD_SITE":       "datadoghq.eu",
				"_PRIVATE_FLAG": "1",
			},
			expectError: false,
		},
		{
			name:        "empty map",
			env:         map[string]string{},
			expectError: false,
		},
		{
			name:          "lower case name",
			env:           map[string]string{"dd_site": "x"},
			expectError:   true,
			errorContains: "must start with a letter or underscore",
		},
		{
			name:          "name starting with a digit",
			env:           map[string]string{"1DD": "x"},
			expectError:   true,
			errorContains: "must start with a letter or underscore",
		},
		{
			name:          "reserved name",
			env:           map[string]string{"PATH": "/bin"},
			expectError:   true,
			errorContains: "is a reserved environment variable name",
		},
		{
			name:          "null byte",
			env:           map[string]string{"DD_API_KEY": "a\x00b"},
			expectError:   true,
			errorContains: "contains null bytes",
		},
		{
			name:          "control character",
			env:           map[string]string{"DD_API_KEY": "a\x07b"},
			expectError:   true,
			errorContains: "contains control characters",
		},
		{
			name:          "value too long",
			env:           map[string]string{"DD_TAGS": strings.Repeat("a", 4097)},
			expectError:   true,
			errorContains: "exceeds maximum length",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEnvironmentVariables(tt.env)
			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEnvironmentVariables_MultipleErrorsSorted(t *testing.T) {
	err := ValidateEnvironmentVariables(map[string]string{"b": "1", "a": "2"})

	errs, ok := err.(ValidationErrors)
	assert.True(t, ok)
	assert.Len(t, errs, 2)
	assert.Contains(t, errs[0].Field, "'a'")
	assert.Contains(t, errs[1].Field, "'b'")
	assert.Contains(t, err.Error(), "multiple validation errors")
}

func TestValidateVolumeSpecs(t *testing.T) {
	tests := []struct {
		name        string
		specs       []string
		expectError bool
	}{
		{"bind", []string{"/home/me/.aws:/root/.aws"}, false},
		{"bind with options", []string{"/src:/dst:ro"}, false},
		{"named volume", []string{"cache:/cache"}, false},
		{"windows drive", []string{`C:\Users\me:/root/me`}, false},
		{"missing destination", []string{"/src"}, true},
		{"relative destination", []string{"/src:dst"}, true},
		{"too many parts", []string{"/a:/b:ro:extra"}, true},
		{"empty source", []string{":/dst"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVolumeSpecs(tt.specs)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMountSpecs(t *testing.T) {
	tests := []struct {
		name        string
		specs       []string
		expectError bool
	}{
		{"bind", []string{"type=bind,src=/tmp,dst=/tmp"}, false},
		{"target alias", []string{"type=volume,source=data,target=/data"}, false},
		{"quoted field", []string{`type=bind,"src=/a,b",dst=/ab`}, false},
		{"missing destination", []string{"type=bind,src=/tmp"}, true},
		{"broken quoting", []string{`type=bind,"src=/tmp`}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMountSpecs(tt.specs)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationErrors_Empty(t *testing.T) {
	assert.Equal(t, "no validation errors", ValidationErrors{}.Error())
}
