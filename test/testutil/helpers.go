// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package testutil

import (
	"encoding/json"
)

// InspectOutput renders `inspect` output for a container in status with
// the given exit code
func InspectOutput(status string, exitCode int) string {
	data, _ := json.Marshal([]map[string]any{
		{"State": map[string]any{"Status": status, "ExitCode": exitCode}},
	})
	return string(data)
}

// Inspect is an `inspect` response for a container in status
func Inspect(status string, exitCode int) Response {
	return Response{Stdout: InspectOutput(status, exitCode)}
}

// Running is `inspect` output of a running container
func Running() Response {
	return Inspect("running", 0)
}

// Stopped is `inspect` output of a cleanly exited container
func Stopped() Response {
	return Inspect("exited", 0)
}

// Missing is what the runtime prints when inspecting an unknown container
func Missing() Response {
	resp := Fail(1, "Error: No such object")
	resp.Stdout = "[]"
	return resp
}
