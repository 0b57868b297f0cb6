// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// AssertNoCallsWith verifies that no recorded command started with prefix
func AssertNoCallsWith(t *testing.T, runner *RecordingRunner, prefix ...string) {
	t.Helper()
	assert.Empty(t, runner.CallsWith(prefix...), "unexpected commands: %v", runner.Commands())
}

// AssertOnlyInspected verifies that the runner only ever inspected containers
func AssertOnlyInspected(t *testing.T, runner *RecordingRunner) {
	t.Helper()
	for _, call := range runner.Calls() {
		if len(call.Command.Args) == 0 || call.Command.Args[0] != "inspect" {
			t.Errorf("unexpected command: %v", call.Argv())
		}
	}
}

// SingleCall returns the only command starting with prefix
func SingleCall(t *testing.T, runner *RecordingRunner, prefix ...string) Call {
	t.Helper()
	calls := runner.CallsWith(prefix...)
	if len(calls) != 1 {
		t.Fatalf("expected exactly one %v command, got %d: %v", prefix, len(calls), runner.Commands())
	}
	return calls[0]
}
