package tui

import "github.com/Veraticus/frontdesk/internal/eventbus"

// busMsg carries one broadcast topic into the update loop.
type busMsg struct {
	topic eventbus.Topic
}

// statusMsg sets the transient status line.
type statusMsg struct {
	text  string
	isErr bool
}
