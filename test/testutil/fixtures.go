// Copyright (C) 2025-2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFile writes content to path below root, creating parents
func WriteFile(t *testing.T, root, path, content string) string {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(path))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return full
}

// WriteAgentTemplate creates an agent config template named name under
// dataDir. integrations maps an integration name to its config.yaml body.
func WriteAgentTemplate(t *testing.T, dataDir, name, datadogYAML string, integrations map[string]string) string {
	t.Helper()
	root := filepath.Join(dataDir, "env", "config", "templates", name)
	WriteFile(t, root, "datadog.yaml", datadogYAML)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "integrations"), 0o755))
	for integration, body := range integrations {
		WriteFile(t, root, filepath.Join("integrations", integration, "config.yaml"), body)
	}
	return root
}
