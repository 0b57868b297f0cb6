// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package network derives stable host ports and host identity for environments.
package network

import (
	"crypto/sha256"
	"math/big"
)

// Bounds of the IANA dynamic/private port range (RFC 6335, section 6).
const (
	MinDynamicPort = 49152
	MaxDynamicPort = 65535
)

var portRange = big.NewInt(MaxDynamicPort - MinDynamicPort)

// DeriveDynamicPort maps key to a port in the dynamic range. The result only
// depends on the SHA-256 digest of key, so every process on every platform
// agrees on it. Distinct keys may collide.
func DeriveDynamicPort(key string) int {
	digest := sha256.Sum256([]byte(key))
	n := new(big.Int).SetBytes(digest[:])
	return int(n.Mod(n, portRange).Int64()) + MinDynamicPort
}
