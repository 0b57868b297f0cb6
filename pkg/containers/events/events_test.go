// Copyright (C) 2025-2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventType_String(t *testing.T) {
	tests := []struct {
		eventType EventType
		expected  string
	}{
		{EnvironmentPulling, "environment.pulling"},
		{EnvironmentCreating, "environment.creating"},
		{EnvironmentWaiting, "environment.waiting"},
		{EnvironmentStarting, "environment.starting"},
		{EnvironmentStopping, "environment.stopping"},
		{EnvironmentRestarting, "environment.restarting"},
		{EnvironmentRemoving, "environment.removing"},
		{EnvironmentCloning, "environment.cloning"},
		{EnvironmentMCP, "environment.mcp"},
		{EnvironmentCache, "environment.cache"},
		{EnvironmentWarning, "environment.warning"},
		{EnvironmentFailed, "environment.failed"},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.eventType))
		})
	}
}

func TestNew(t *testing.T) {
	event := New(EnvironmentPulling, "dda-linux-container-default", "Pulling image: datadog/agent")

	assert.True(t, strings.HasPrefix(event.ID, "evt_"))
	assert.NotEqual(t, event.ID, New(EnvironmentPulling, "x", "y").ID)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, "dda-linux-container-default", event.Environment)
	assert.Nil(t, event.Data)
}

func TestEvent_WithDoesNotMutate(t *testing.T) {
	base := New(EnvironmentCreating, "env", "msg").With("image", "datadog/agent")
	derived := base.With("arch", "arm64")

	assert.Equal(t, map[string]any{"image": "datadog/agent"}, base.Data)
	assert.Equal(t, map[string]any{"image": "datadog/agent", "arch": "arm64"}, derived.Data)
}

func TestEvent_JSONSerialization(t *testing.T) {
	event := New(EnvironmentWarning, "env", "No API key set in the Agent config, using a placeholder").With("key", "api_key")

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var unmarshaled Event
	require.NoError(t, json.Unmarshal(data, &unmarshaled))
	assert.Equal(t, event.ID, unmarshaled.ID)
	assert.Equal(t, event.Type, unmarshaled.Type)
	assert.Equal(t, event.Message, unmarshaled.Message)
	assert.Equal(t, "api_key", unmarshaled.Data["key"])
}

func TestConsolePublisher_Plain(t *testing.T) {
	var buf bytes.Buffer
	publisher := NewConsolePublisherWriter(&buf, false)

	require.NoError(t, publisher.Publish(New(EnvironmentPulling, "env", "Pulling image: foo")))
	require.NoError(t, publisher.Publish(New(EnvironmentWarning, "env", "careful")))
	require.NoError(t, publisher.Publish(New(EnvironmentStarting, "env", "")))

	assert.Equal(t, "Pulling image: foo\ncareful\n", buf.String())
}

func TestConsolePublisher_StyledKeepsText(t *testing.T) {
	var buf bytes.Buffer
	publisher := NewConsolePublisherWriter(&buf, true)

	require.NoError(t, publisher.Publish(New(EnvironmentWarning, "env", "careful")))
	assert.Contains(t, buf.String(), "careful")
}

func TestRecorder(t *testing.T) {
	recorder := &Recorder{}
	require.NoError(t, recorder.Publish(New(EnvironmentCreating, "env", "one")))
	require.NoError(t, recorder.Publish(New(EnvironmentWaiting, "env", "two")))

	assert.Equal(t, []string{"one", "two"}, recorder.Messages())
	assert.Len(t, recorder.Events(), 2)
	assert.NoError(t, Discard.Publish(New(EnvironmentCache, "env", "ignored")))
}
