// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package retry polls for readiness and retries flaky operations.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Readiness polling parameters used when starting environments.
const (
	DefaultWaitTimeout  = 30 * time.Second
	DefaultWaitInterval = 300 * time.Millisecond
)

// TimeoutError is returned when a condition never held within the window.
type TimeoutError struct {
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("timed out after %s", e.Timeout)
	}
	return fmt.Sprintf("timed out after %s: %v", e.Timeout, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

type failFastError struct{ err error }

func (e *failFastError) Error() string { return e.err.Error() }
func (e *failFastError) Unwrap() error { return e.err }

// FailFast marks err as not worth retrying.
func FailFast(err error) error {
	if err == nil {
		return nil
	}
	return &failFastError{err: err}
}

type delayedError struct {
	err   error
	after time.Duration
}

func (e *delayedError) Error() string { return e.err.Error() }
func (e *delayedError) Unwrap() error { return e.err }

// Delayed asks for the next attempt to happen after d instead of the
// computed backoff, e.g. when a registry sends Retry-After.
func Delayed(err error, d time.Duration) error {
	if err == nil {
		return nil
	}
	return &delayedError{err: err, after: d}
}

// WaitFor calls check every interval until it returns nil. It gives up with
// a *TimeoutError once timeout has elapsed, or immediately when check
// returns an error wrapped with FailFast.
func WaitFor(ctx context.Context, timeout, interval time.Duration, check func(context.Context) error) error {
	err := run(ctx, check,
		backoff.WithBackOff(backoff.NewConstantBackOff(interval)),
		backoff.WithMaxElapsedTime(timeout),
	)
	var fatal *failFastError
	if err == nil || ctx.Err() != nil || errors.As(err, &fatal) {
		return unwrapFailFast(err)
	}
	return &TimeoutError{Timeout: timeout, Err: err}
}

// Policy configures Do.
type Policy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// Jitter is the randomization factor applied to every interval.
	Jitter         float64
	MaxElapsedTime time.Duration
	MaxTries       uint
	// OnRetry is called before sleeping for the next attempt.
	OnRetry func(err error, next time.Duration)
}

// DefaultPolicy is truncated exponential backoff with jitter.
func DefaultPolicy() Policy {
	return Policy{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2,
		Jitter:          0.5,
		MaxElapsedTime:  2 * time.Minute,
	}
}

// Do runs op until it succeeds, returns a FailFast error, or the policy
// runs out. The last error from op is returned.
func Do(ctx context.Context, policy Policy, op func(context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = policy.InitialInterval
	b.MaxInterval = policy.MaxInterval
	b.Multiplier = policy.Multiplier
	b.RandomizationFactor = policy.Jitter

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(policy.MaxElapsedTime),
	}
	if policy.MaxTries > 0 {
		opts = append(opts, backoff.WithMaxTries(policy.MaxTries))
	}
	if policy.OnRetry != nil {
		opts = append(opts, backoff.WithNotify(policy.OnRetry))
	}

	return unwrapFailFast(run(ctx, op, opts...))
}

// run adapts op to backoff and always reports op's own last error.
func run(ctx context.Context, op func(context.Context) error, opts ...backoff.RetryOption) error {
	var last error
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		last = op(ctx)
		if last == nil {
			return struct{}{}, nil
		}

		var fatal *failFastError
		if errors.As(last, &fatal) {
			return struct{}{}, backoff.Permanent(last)
		}
		var delayed *delayedError
		if errors.As(last, &delayed) {
			return struct{}{}, &backoff.RetryAfterError{Duration: delayed.after}
		}
		return struct{}{}, last
	}, opts...)

	if err == nil {
		return nil
	}
	if last == nil || ctx.Err() != nil {
		return err
	}
	return last
}

func unwrapFailFast(err error) error {
	var fatal *failFastError
	if errors.As(err, &fatal) {
		return fatal.err
	}
	return err
}
