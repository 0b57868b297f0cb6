// Copyright (C) 2025-2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package testutil

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/DataDog/datadog-agent-dev-sub000/pkg/process"
)

// Invocation modes recorded by RecordingRunner
const (
	ModeCapture = "capture"
	ModeRun     = "run"
	ModeAttach  = "attach"
)

// Call is a single recorded command
type Call struct {
	Mode    string
	Command process.Command
}

// Argv returns the binary followed by its arguments
func (c Call) Argv() []string {
	return append([]string{c.Command.Name}, c.Command.Args...)
}

// Response scripts the outcome of a matching command
type Response struct {
	Stdout   string
	ExitCode int
	Err      error
}

// Fail builds a response for a command exiting with code and stderr
func Fail(code int, stderr string) Response {
	return Response{ExitCode: code, Err: &process.CommandError{ExitCode: code, Stderr: stderr}}
}

type handler struct {
	prefix    []string
	responses []Response
}

// RecordingRunner implements process.Runner, recording every command and
// replying with scripted responses
type RecordingRunner struct {
	mu       sync.Mutex
	calls    []Call
	handlers []*handler
}

// Compile-time check that RecordingRunner implements process.Runner
var _ process.Runner = (*RecordingRunner)(nil)

// NewRecordingRunner creates a runner where unmatched commands succeed silently
func NewRecordingRunner() *RecordingRunner {
	return &RecordingRunner{}
}

// On scripts responses for commands whose arguments start with prefix.
// Responses are consumed in order and the last one repeats.
func (r *RecordingRunner) On(prefix []string, responses ...Response) *RecordingRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, &handler{prefix: prefix, responses: responses})
	return r
}

func (r *RecordingRunner) Capture(_ context.Context, cmd process.Command) (string, error) {
	resp := r.record(ModeCapture, cmd)
	if ce, ok := resp.Err.(*process.CommandError); ok {
		copied := *ce
		copied.Command = cmd.String()
		copied.Stdout = resp.Stdout
		return resp.Stdout, &copied
	}
	return resp.Stdout, resp.Err
}

func (r *RecordingRunner) Run(_ context.Context, cmd process.Command) error {
	return r.record(ModeRun, cmd).Err
}

func (r *RecordingRunner) Attach(_ context.Context, cmd process.Command) (int, error) {
	resp := r.record(ModeAttach, cmd)
	if _, ok := resp.Err.(*process.CommandError); ok {
		return resp.ExitCode, nil
	}
	return resp.ExitCode, resp.Err
}

// Calls returns every recorded command in order
func (r *RecordingRunner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// CallsWith returns recorded commands whose arguments start with prefix
func (r *RecordingRunner) CallsWith(prefix ...string) []Call {
	var matched []Call
	for _, call := range r.Calls() {
		if hasPrefix(call.Command.Args, prefix) {
			matched = append(matched, call)
		}
	}
	return matched
}

// Commands renders every recorded command line, handy in failure output
func (r *RecordingRunner) Commands() []string {
	var lines []string
	for _, call := range r.Calls() {
		lines = append(lines, strings.Join(call.Argv(), " "))
	}
	return lines
}

func (r *RecordingRunner) record(mode string, cmd process.Command) Response {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, Call{Mode: mode, Command: cmd})
	for _, h := range r.handlers {
		if !hasPrefix(cmd.Args, h.prefix) || len(h.responses) == 0 {
			continue
		}
		resp := h.responses[0]
		if len(h.responses) > 1 {
			h.responses = h.responses[1:]
		}
		return resp
	}
	return Response{}
}

func hasPrefix(args, prefix []string) bool {
	return len(args) >= len(prefix) && slices.Equal(args[:len(prefix)], prefix)
}
