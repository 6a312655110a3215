// Package testing provides test utilities for TUI components.
package testing

import (
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultTimeout bounds how long a single command may run. Commands that
// wait longer, such as clock ticks, are abandoned.
const DefaultTimeout = 2 * time.Second

// Collect runs cmd and returns the messages it produces, flattening
// batches. Animation messages (spinner and cursor blinks) are dropped.
func Collect(cmd tea.Cmd) []tea.Msg {
	return CollectWithin(cmd, DefaultTimeout)
}

// CollectWithin is Collect with an explicit per-command timeout.
func CollectWithin(cmd tea.Cmd, timeout time.Duration) []tea.Msg {
	if cmd == nil {
		return nil
	}

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(timeout):
		return nil
	}

	switch msg := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, CollectWithin(c, timeout)...)
		}
		return out
	case spinner.TickMsg, cursor.BlinkMsg:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

// Driver feeds commands back into a root model until it settles.
type Driver struct {
	// Messages holds every message delivered to the model, in order.
	Messages []tea.Msg
	Timeout  time.Duration
}

// NewDriver creates a driver with DefaultTimeout.
func NewDriver() *Driver {
	return &Driver{Timeout: DefaultTimeout}
}

// Send delivers msg and then runs every resulting command to completion.
func (d *Driver) Send(model tea.Model, msg tea.Msg) tea.Model {
	d.Messages = append(d.Messages, msg)
	next, cmd := model.Update(msg)
	return d.Run(next, cmd)
}

// Run executes cmd and delivers what it produces, recursively.
func (d *Driver) Run(model tea.Model, cmd tea.Cmd) tea.Model {
	for _, msg := range CollectWithin(cmd, d.Timeout) {
		model = d.Send(model, msg)
	}
	return model
}

// Keys delivers keys one after another, running each resulting command.
func (d *Driver) Keys(model tea.Model, keys ...tea.KeyMsg) tea.Model {
	for _, k := range keys {
		model = d.Send(model, k)
	}
	return model
}
