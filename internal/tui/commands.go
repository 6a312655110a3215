package tui

import (
	"time"

	"github.com/Veraticus/frontdesk/internal/eventbus"
	"github.com/Veraticus/frontdesk/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
)

// listenBus waits for the next broadcast. It is re-issued after every
// busMsg so exactly one listener is pending at a time.
func listenBus(ch <-chan eventbus.Topic) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		topic, ok := <-ch
		if !ok {
			return nil
		}
		return busMsg{topic: topic}
	}
}

// tick drives the working-hours status and the booking clamp. A zero
// interval disables it.
func tick(interval time.Duration) tea.Cmd {
	if interval <= 0 {
		return nil
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return components.TickMsg(t)
	})
}

func setStatus(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}
