// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package env

import (
	"context"
	"time"

	"github.com/DataDog/datadog-agent-dev-sub000/internal/logger"
	"github.com/DataDog/datadog-agent-dev-sub000/pkg/process"
)

// LoggedRunner logs every command it runs. Environment values are never
// logged, only their names.
type LoggedRunner struct {
	Runner process.Runner
}

// Compile-time check that LoggedRunner implements process.Runner
var _ process.Runner = LoggedRunner{}

func (r LoggedRunner) Capture(ctx context.Context, cmd process.Command) (string, error) {
	start := time.Now()
	output, err := r.Runner.Capture(ctx, cmd)
	r.log("capture", cmd, start, err)
	return output, err
}

func (r LoggedRunner) Run(ctx context.Context, cmd process.Command) error {
	start := time.Now()
	err := r.Runner.Run(ctx, cmd)
	r.log("run", cmd, start, err)
	return err
}

func (r LoggedRunner) Attach(ctx context.Context, cmd process.Command) (int, error) {
	start := time.Now()
	code, err := r.Runner.Attach(ctx, cmd)
	r.log("attach", cmd, start, err)
	return code, err
}

func (r LoggedRunner) log(mode string, cmd process.Command, start time.Time, err error) {
	log := logger.GetProcessLogger()
	log.Debug().
		Err(err).
		Str("mode", mode).
		Str("name", cmd.Name).
		Strs("args", cmd.Args).
		Strs("env", process.EnvNames(cmd.Env)).
		Dur("duration", time.Since(start)).
		Msg("Ran command")
}
