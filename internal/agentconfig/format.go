// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package agentconfig

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode parses an agent or integration YAML document. An empty document
// yields an empty map.
func Decode(data []byte) (map[string]any, error) {
	config := map[string]any{}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if config == nil {
		config = map[string]any{}
	}
	return config, nil
}

// Encode renders config as block style YAML.
func Encode(config map[string]any) ([]byte, error) {
	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(config); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// ToEnvVars flattens config into DD_ environment variables: nested keys are
// joined with underscores, booleans are lower-cased, lists are space
// separated and nulls are skipped.
func ToEnvVars(config map[string]any) map[string]string {
	vars := make(map[string]string)
	flatten(config, "", vars)
	return vars
}

func flatten(config map[string]any, prefix string, vars map[string]string) {
	for key, value := range config {
		if value == nil {
			continue
		}

		name := strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if prefix == "" {
			name = "DD_" + name
		} else {
			name = prefix + "_" + name
		}

		switch v := value.(type) {
		case map[string]any:
			flatten(v, name, vars)
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				items = append(items, scalar(item))
			}
			vars[name] = strings.Join(items, " ")
		default:
			vars[name] = scalar(v)
		}
	}
}

// scalar renders a YAML scalar. Floats keep a decimal point so that 1.0
// stays distinguishable from the integer 1.
func scalar(value any) string {
	switch v := value.(type) {
	case bool:
		return strconv.FormatBool(v)
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if strings.Trim(s, "-0123456789") == "" {
			s += ".0"
		}
		return s
	}
	return fmt.Sprint(value)
}

// Truthy reports whether value would enable a feature: false, zero, empty
// and null values do not.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case map[string]any:
		return len(v) > 0
	case []any:
		return len(v) > 0
	}
	return true
}

// Section returns the nested mapping under key, or nil.
func Section(config map[string]any, key string) map[string]any {
	section, _ := config[key].(map[string]any)
	return section
}
