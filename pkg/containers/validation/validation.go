// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package validation

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// validEnvVarNameRegex matches valid environment variable names
// Environment variable names should be alphanumeric with underscores
var validEnvVarNameRegex = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("multiple validation errors: %s", strings.Join(messages, "; "))
}

// ValidateEnvironmentVariables validates extra variables injected into an
// environment. Names are checked in sorted order.
func ValidateEnvironmentVariables(env map[string]string) error {
	var errors ValidationErrors

	names := lo.Keys(env)
	slices.Sort(names)
	for _, name := range names {
		// Validate environment variable name
		if !validEnvVarNameRegex.MatchString(name) {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("environment variable '%s'", name),
				Message: "must start with a letter or underscore and contain only uppercase letters, numbers, and underscores",
			})
			continue
		}

		// Check for reserved names
		if isReservedEnvVar(name) {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("environment variable '%s'", name),
				Message: "is a reserved environment variable name",
			})
			continue
		}

		// Validate value
		if err := validateStringValue(env[name], fmt.Sprintf("environment variable value for '%s'", name)); err != nil {
			errors = append(errors, *err)
		}
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// ValidateVolumeSpecs validates `-v` specs of the form
// <source>:<destination>[:<options>]
func ValidateVolumeSpecs(specs []string) error {
	var errors ValidationErrors

	for _, spec := range specs {
		field := fmt.Sprintf("volume spec '%s'", spec)
		if err := validateStringValue(spec, field); err != nil {
			errors = append(errors, *err)
			continue
		}

		parts := splitVolumeSpec(spec)
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: "must have the form <source>:<destination>[:<options>]",
			})
			continue
		}
		if !strings.HasPrefix(parts[1], "/") {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: "destination must be an absolute path",
			})
		}
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// ValidateMountSpecs validates `--mount` specs, which are CSV lists of
// key=value fields that must name a destination
func ValidateMountSpecs(specs []string) error {
	var errors ValidationErrors

	for _, spec := range specs {
		field := fmt.Sprintf("mount spec '%s'", spec)
		if err := validateStringValue(spec, field); err != nil {
			errors = append(errors, *err)
			continue
		}

		fields, err := csv.NewReader(strings.NewReader(spec)).Read()
		if err != nil {
			errors = append(errors, ValidationError{Field: field, Message: "is not a valid CSV record"})
			continue
		}

		keys := lo.Map(fields, func(f string, _ int) string {
			key, _, _ := strings.Cut(f, "=")
			return strings.TrimSpace(key)
		})
		if !lo.ContainsBy(keys, func(k string) bool { return k == "dst" || k == "destination" || k == "target" }) {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: "must set dst, destination or target",
			})
		}
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// splitVolumeSpec splits on colons, keeping Windows drive letters such as
// C:\src attached to their path
func splitVolumeSpec(spec string) []string {
	parts := strings.Split(spec, ":")
	if len(parts) > 2 && len(parts[0]) == 1 && strings.HasPrefix(parts[1], `\`) {
		parts = append([]string{parts[0] + ":" + parts[1]}, parts[2:]...)
	}
	return parts
}

// validateStringValue performs common string validation
func validateStringValue(value, fieldName string) *ValidationError {
	// Check for null bytes (security issue)
	if strings.Contains(value, "\x00") {
		return &ValidationError{
			Field:   fieldName,
			Message: "contains null bytes",
		}
	}

	// Check for control characters (except common whitespace)
	for _, r := range value {
		if r < 32 && r != 9 && r != 10 && r != 13 { // Allow tab, LF, CR
			return &ValidationError{
				Field:   fieldName,
				Message: "contains control characters",
			}
		}
	}

	// Check maximum length (reasonable limit)
	if len(value) > 4096 {
		return &ValidationError{
			Field:   fieldName,
			Message: "exceeds maximum length of 4096 characters",
		}
	}

	return nil
}

// isReservedEnvVar checks if an environment variable name is reserved
func isReservedEnvVar(name string) bool {
	reserved := map[string]bool{
		"PATH":   true,
		"HOME":   true,
		"USER":   true,
		"SHELL":  true,
		"PWD":    true,
		"OLDPWD": true,
		"IFS":    true,
		"TERM":   true,
	}
	return reserved[name]
}
