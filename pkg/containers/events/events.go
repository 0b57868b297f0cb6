// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of environment event
type EventType string

const (
	EnvironmentPulling    EventType = "environment.pulling"
	EnvironmentCreating   EventType = "environment.creating"
	EnvironmentWaiting    EventType = "environment.waiting"
	EnvironmentStarting   EventType = "environment.starting"
	EnvironmentStopping   EventType = "environment.stopping"
	EnvironmentRestarting EventType = "environment.restarting"
	EnvironmentRemoving   EventType = "environment.removing"
	EnvironmentCloning    EventType = "environment.cloning"
	EnvironmentMCP        EventType = "environment.mcp"
	EnvironmentCache      EventType = "environment.cache"
	EnvironmentWarning    EventType = "environment.warning"
	EnvironmentFailed     EventType = "environment.failed"
)

// Event represents a user visible step of an environment operation
type Event struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	Environment string         `json:"environment"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
}

// New creates an event for environment, usually a container name
func New(eventType EventType, environment, message string) Event {
	return Event{
		ID:          "evt_" + uuid.NewString(),
		Type:        eventType,
		Timestamp:   time.Now(),
		Environment: environment,
		Message:     message,
	}
}

// With attaches a data field to the event
func (e Event) With(key string, value any) Event {
	data := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		data[k] = v
	}
	data[key] = value
	e.Data = data
	return e
}

// Publisher defines the interface for publishing environment events
type Publisher interface {
	Publish(event Event) error
}

// Discard drops every event
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) error { return nil }
