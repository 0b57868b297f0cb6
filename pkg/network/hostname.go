// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package network

import (
	"os"
	"strings"
)

// Hostname returns the lower-cased name of the local machine, or "localhost"
// when the kernel does not report one.
func Hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "localhost"
	}
	return strings.ToLower(name)
}
