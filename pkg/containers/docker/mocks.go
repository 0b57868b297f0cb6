// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package docker

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/DataDog/datadog-agent-dev-sub000/pkg/containers/models"
)

// MockClient is a mock implementation of ClientInterface
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Status(ctx context.Context, name string) (models.EnvironmentStatus, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(models.EnvironmentStatus), args.Error(1)
}

func (m *MockClient) Pull(ctx context.Context, image, arch string) error {
	args := m.Called(ctx, image, arch)
	return args.Error(0)
}

func (m *MockClient) Run(ctx context.Context, config *models.ContainerConfig) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}

func (m *MockClient) Start(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockClient) Stop(ctx context.Context, name string, timeout *time.Duration) error {
	args := m.Called(ctx, name, timeout)
	return args.Error(0)
}

func (m *MockClient) Restart(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockClient) Remove(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockClient) Logs(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockClient) Exec(ctx context.Context, name string, cmd []string) error {
	args := m.Called(ctx, name, cmd)
	return args.Error(0)
}

func (m *MockClient) ExecInteractive(ctx context.Context, name string, cmd []string) (int, error) {
	args := m.Called(ctx, name, cmd)
	return args.Int(0), args.Error(1)
}

func (m *MockClient) ListVolumes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockClient) RemoveVolumes(ctx context.Context, names ...string) error {
	args := m.Called(ctx, names)
	return args.Error(0)
}

func (m *MockClient) VolumeSizes(ctx context.Context) (map[string]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}
