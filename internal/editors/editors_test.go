// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package editors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DataDog/datadog-agent-dev-sub000/test/testutil"
)

func TestGet_OpenViaSSH(t *testing.T) {
	tests := []struct {
		name   string
		binary string
	}{
		{"vscode", "code"},
		{"cursor", "cursor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := testutil.NewRecordingRunner()
			editor, err := Get(tt.name, runner)
			require.NoError(t, err)
			assert.Equal(t, tt.name, editor.Name())

			require.NoError(t, editor.OpenViaSSH(context.Background(), "localhost", 61938, "/root/repos/datadog-agent"))

			calls := runner.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, testutil.ModeRun, calls[0].Mode)
			assert.Equal(t,
				[]string{tt.binary, "--remote", "ssh-remote+root@localhost:61938", "/root/repos/datadog-agent"},
				calls[0].Argv(),
			)
		})
	}
}

func TestGet_Unsupported(t *testing.T) {
	_, err := Get("emacs", testutil.NewRecordingRunner())

	var unsupported *UnsupportedEditorError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, []string{"cursor", "vscode"}, unsupported.Available)
	assert.Equal(t, "Unknown editor `emacs`, must be one of: cursor, vscode", err.Error())
}
