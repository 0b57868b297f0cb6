// Copyright (C) 2025-2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/docker"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/events"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/retry"
)

// Service manages container lifecycle and publishes events
type Service struct {
	client       docker.ClientInterface
	publisher    events.Publisher
	waitTimeout  time.Duration
	waitInterval time.Duration
}

// NewServiceWithClient creates a new container service with provided client
func NewServiceWithClient(client docker.ClientInterface, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Discard
	}
	return &Service{
		client:       client,
		publisher:    publisher,
		waitTimeout:  retry.DefaultWaitTimeout,
		waitInterval: retry.DefaultWaitInterval,
	}
}

// WithReadinessPolling overrides how long and how often readiness is polled
func (s *Service) WithReadinessPolling(timeout, interval time.Duration) *Service {
	s.waitTimeout = timeout
	s.waitInterval = interval
	return s
}

// Client returns the underlying runtime client
func (s *Service) Client() docker.ClientInterface {
	return s.client
}

// Status returns the current state of the named container
func (s *Service) Status(ctx context.Context, name string) (models.EnvironmentStatus, error) {
	return s.client.Status(ctx, name)
}

// Pull fetches image before a container is created from it
func (s *Service) Pull(ctx context.Context, name, image, arch string) error {
	s.Notify(events.EnvironmentPulling, name, "Pulling image: "+image)
	if err := s.client.Pull(ctx, image, arch); err != nil {
		s.publishFailedEvent(name, "pull", err)
		return err
	}
	return nil
}

// Create creates and starts the container described by config
func (s *Service) Create(ctx context.Context, config *models.ContainerConfig) error {
	s.Notify(events.EnvironmentCreating, config.Name, "Creating and starting container: "+config.Name)
	if err := s.client.Run(ctx, config); err != nil {
		s.publishFailedEvent(config.Name, "create", err)
		return err
	}
	return nil
}

// Start starts an existing container
func (s *Service) Start(ctx context.Context, name string) error {
	s.Notify(events.EnvironmentStarting, name, "Starting container: "+name)
	if err := s.client.Start(ctx, name); err != nil {
		s.publishFailedEvent(name, "start", err)
		return err
	}
	return nil
}

// Stop stops a running container
func (s *Service) Stop(ctx context.Context, name string, timeout *time.Duration) error {
	s.Notify(events.EnvironmentStopping, name, "Stopping container: "+name)
	if err := s.client.Stop(ctx, name, timeout); err != nil {
		s.publishFailedEvent(name, "stop", err)
		return err
	}
	return nil
}

func (s *Service) Restart(ctx context.Context, name string) error {
	s.Notify(events.EnvironmentRestarting, name, "Restarting container: "+name)
	if err := s.client.Restart(ctx, name); err != nil {
		s.publishFailedEvent(name, "restart", err)
		return err
	}
	return nil
}

// Remove deletes a container
func (s *Service) Remove(ctx context.Context, name string) error {
	s.Notify(events.EnvironmentRemoving, name, "Removing container: "+name)
	if err := s.client.Remove(ctx, name); err != nil {
		s.publishFailedEvent(name, "remove", err)
		return err
	}
	return nil
}

// WaitForLog polls the container logs until they contain marker
func (s *Service) WaitForLog(ctx context.Context, name, marker string) error {
	s.Notify(events.EnvironmentWaiting, name, "Waiting for container: "+name)
	err := retry.WaitFor(ctx, s.waitTimeout, s.waitInterval, func(ctx context.Context) error {
		output, err := s.client.Logs(ctx, name)
		if err != nil {
			return err
		}
		if !strings.Contains(output, marker) {
			return fmt.Errorf("container %s is not ready", name)
		}
		return nil
	})
	if err != nil {
		s.publishFailedEvent(name, "wait", err)
	}
	return err
}

// Notify publishes a user visible message about environment
func (s *Service) Notify(eventType events.EventType, environment, message string) {
	_ = s.publisher.Publish(events.New(eventType, environment, message))
}

// Warn publishes a warning about environment
func (s *Service) Warn(environment, message string) {
	s.Notify(events.EnvironmentWarning, environment, message)
}

func (s *Service) publishFailedEvent(name, operation string, err error) {
	event := events.New(events.EnvironmentFailed, name, "").
		With("operation", operation).
		With("error", err.Error())
	_ = s.publisher.Publish(event)
}
