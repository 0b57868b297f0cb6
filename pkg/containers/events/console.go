// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	waitingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// ConsolePublisher prints event messages one per line
type ConsolePublisher struct {
	mu     sync.Mutex
	w      io.Writer
	styled bool
}

// NewConsolePublisher writes to f, styling output only when f is a terminal
func NewConsolePublisher(f *os.File) *ConsolePublisher {
	fd := f.Fd()
	return NewConsolePublisherWriter(f, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

// NewConsolePublisherWriter writes to w
func NewConsolePublisherWriter(w io.Writer, styled bool) *ConsolePublisher {
	return &ConsolePublisher{w: w, styled: styled}
}

func (p *ConsolePublisher) Publish(event Event) error {
	if event.Message == "" {
		return nil
	}

	line := event.Message
	if p.styled {
		switch event.Type {
		case EnvironmentWarning:
			line = warningStyle.Render(line)
		case EnvironmentWaiting:
			line = waitingStyle.Render(line)
		case EnvironmentFailed:
			line = errorStyle.Render(line)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintln(p.w, line)
	return err
}

// Recorder keeps every published event in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns the recorded events in order
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Messages returns the recorded messages in order
func (r *Recorder) Messages() []string {
	var messages []string
	for _, event := range r.Events() {
		messages = append(messages, event.Message)
	}
	return messages
}
