// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package transfer

import "fmt"

// InvalidOperationError is returned when a transfer would clobber data or
// mix up files and directories.
type InvalidOperationError struct {
	Message string
}

func (e *InvalidOperationError) Error() string {
	return e.Message
}

func invalidf(format string, args ...any) error {
	return &InvalidOperationError{Message: fmt.Sprintf(format, args...)}
}
