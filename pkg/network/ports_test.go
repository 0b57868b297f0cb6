// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package network

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveDynamicPort_KnownValues(t *testing.T) {
	tests := []struct {
		key  string
		want int
	}{
		{"dda-linux-container-default-ssh", 61938},
		{"dda-linux-container-default-mcp", 50069},
		{"dda-qa-linux-container-default-cmd", 57680},
		{"dda-qa-linux-container-default-dogstatsd", 65351},
		{"dda-qa-linux-container-default-apm", 61712},
		{"foo", 52991},
		{"", 49480},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveDynamicPort(tt.key))
		})
	}
}

func TestDeriveDynamicPort_DeterministicAndInRange(t *testing.T) {
	keys := []string{"a", "b", strings.Repeat("x", 1024), "ünïcödé", "dda-qa-linux-container-test-expvar"}
	for i := 0; i < 200; i++ {
		keys = append(keys, fmt.Sprintf("container-%d-ssh", i))
	}

	for _, key := range keys {
		first := DeriveDynamicPort(key)
		second := DeriveDynamicPort(key)
		assert.Equal(t, first, second, "key %q", key)
		assert.GreaterOrEqual(t, first, MinDynamicPort, "key %q", key)
		assert.LessOrEqual(t, first, MaxDynamicPort, "key %q", key)
	}
}

func TestHostname_LowerCase(t *testing.T) {
	name := Hostname()
	assert.NotEmpty(t, name)
	assert.Equal(t, strings.ToLower(name), name)
}
