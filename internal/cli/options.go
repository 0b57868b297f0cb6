// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/env"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/process"
)

// configKeyAnnotation marks flags that set an environment config key.
const configKeyAnnotation = "dda_config_key"

// target is the environment a command acts on.
type target struct {
	app      *App
	kind     env.Kind
	envType  string
	instance string
}

func (t *target) bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&t.envType, "type", "t", "", "environment type")
	cmd.PersistentFlags().StringVar(&t.instance, "id", env.DefaultInstance, "environment instance")
}

// Type is the selected environment type, falling back to the configured
// default.
func (t *target) Type() string {
	if t.envType != "" {
		return t.envType
	}
	defaultType := t.app.Config.Env.Dev.DefaultType
	if t.kind == env.KindQA {
		defaultType = t.app.Config.Env.QA.DefaultType
	}
	if defaultType != "" {
		return defaultType
	}
	return t.app.Registry.DefaultType()
}

func (t *target) Identity() env.Identity {
	return env.NewIdentity(t.kind, t.Type(), t.instance)
}

// configFlag binds the flag name to the environment config key.
func configFlag(flags *pflag.FlagSet, name, key string) {
	_ = flags.SetAnnotation(name, configKeyAnnotation, []string{key})
}

// explicitOptions returns the config values of the flags set on the
// command line, by config key.
func explicitOptions(flags *pflag.FlagSet) (map[string]any, error) {
	options := map[string]any{}
	var err error
	flags.Visit(func(f *pflag.Flag) {
		keys := f.Annotations[configKeyAnnotation]
		if len(keys) == 0 || err != nil {
			return
		}
		switch f.Value.Type() {
		case "bool":
			options[keys[0]], err = flags.GetBool(f.Name)
		case "stringArray":
			options[keys[0]], err = flags.GetStringArray(f.Name)
		default:
			options[keys[0]] = f.Value.String()
		}
	})
	return options, err
}

// mergeOptions layers explicit options over the configured defaults of
// envType without mutating either.
func (a *App) mergeOptions(envType string, explicit map[string]any) map[string]any {
	overrides := maps.Clone(a.Config.EnvDefaults(envType))
	maps.Copy(overrides, explicit)
	return overrides
}

func setDefault(options map[string]any, key string, value any) {
	if _, ok := options[key]; !ok {
		options[key] = value
	}
}

// parseAssignments turns NAME=VALUE arguments into a variable map.
func parseAssignments(values []string) (map[string]any, error) {
	vars := make(map[string]any, len(values))
	for _, value := range values {
		name, v, ok := strings.Cut(value, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid environment variable `%s`, expected NAME=VALUE", value)
		}
		vars[name] = v
	}
	return vars, nil
}

func optionNames(options map[string]any) []string {
	return lo.Keys(options)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// commandExit converts a failed user command into its exit code.
func commandExit(err error) error {
	var cmdErr *process.CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		return &ExitError{Code: cmdErr.ExitCode}
	}
	return err
}

func shellExit(code int, err error) error {
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
