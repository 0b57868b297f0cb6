// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import (
	"fmt"
	"strconv"

	"github.com/docker/go-connections/nat"
)

const (
	ProtocolTCP = "tcp"
	ProtocolUDP = "udp"
)

// Port is a host port published by an environment.
type Port struct {
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`
}

// TCPPort returns a TCP port.
func TCPPort(port int) Port {
	return Port{Port: port, Protocol: ProtocolTCP}
}

// UDPPort returns a UDP port.
func UDPPort(port int) Port {
	return Port{Port: port, Protocol: ProtocolUDP}
}

// Nat returns the port in port/proto form.
func (p Port) Nat() (nat.Port, error) {
	proto := p.Protocol
	if proto == "" {
		proto = ProtocolTCP
	}
	return nat.NewPort(proto, strconv.Itoa(p.Port))
}

// PublishSpec maps the port to the same number inside the container,
// e.g. 8125:8125/udp.
func (p Port) PublishSpec() (string, error) {
	natPort, err := p.Nat()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d:%s", p.Port, natPort), nil
}
