// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/docker/go-units"
	"github.com/samber/lo"

	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
)

var (
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	keyStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	valueStyle  = lipgloss.NewStyle().Padding(0, 1)
)

var binaryAbbrs = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB", "ZiB", "YiB"}

// formatSize renders a byte count with two decimal binary units.
func formatSize(size int64) string {
	switch {
	case size <= 0:
		return "Empty"
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	}
	return units.CustomSize("%.2f %s", float64(size), 1024.0, binaryAbbrs)
}

// renderTable renders data as a key/value table, nesting tables for
// mapping values. Keys are sorted.
func renderTable(data map[string]any) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(_, col int) lipgloss.Style {
			if col == 0 {
				return keyStyle
			}
			return valueStyle
		})
	for _, key := range sortedKeys(data) {
		t.Row(key, renderValue(data[key]))
	}
	return t.String()
}

func renderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case map[string]any:
		if len(v) == 0 {
			return "{}"
		}
		return renderTable(v)
	case []any:
		return strings.Join(lo.Map(v, func(item any, _ int) string { return renderValue(item) }), "\n")
	case []string:
		return strings.Join(v, "\n")
	}
	return fmt.Sprint(value)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}

// toMap converts a JSON tagged value into plain maps.
func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func statusLines(status models.EnvironmentStatus) []string {
	lines := []string{"State: " + string(status.State)}
	if status.Info != "" {
		lines = append(lines, "Info: "+status.Info)
	}
	return lines
}
