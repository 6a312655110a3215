package tui

import (
	"time"

	"github.com/Veraticus/frontdesk/internal/eventbus"
	"github.com/Veraticus/frontdesk/internal/hours"
	"github.com/Veraticus/frontdesk/internal/location"
	"github.com/Veraticus/frontdesk/internal/service"
	"github.com/Veraticus/frontdesk/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme       themes.Theme
	Backend     service.Backend
	Preferences service.Preferences
	Locations   *location.Context
	Bus         *eventbus.Bus
	Now         func() time.Time
	Timeout     time.Duration
	// TickInterval paces the clock-driven refreshes; zero disables them.
	TickInterval time.Duration
	Width        int
	Height       int
	// SidebarCollapsed is the persisted collapse flag at startup.
	SidebarCollapsed bool
	AltScreen        bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:        themes.Default,
		Now:          time.Now,
		Timeout:      15 * time.Second,
		TickInterval: hours.TickInterval,
		Width:        100,
		Height:       32,
		AltScreen:    true,
	}
}

// WithBackend sets the backend collaborators.
func WithBackend(backend service.Backend) Option {
	return func(c *Config) {
		c.Backend = backend
	}
}

// WithSession sets the location context, the preference store behind it and
// the event bus they publish on.
func WithSession(locations *location.Context, prefs service.Preferences, bus *eventbus.Bus) Option {
	return func(c *Config) {
		c.Locations = locations
		c.Preferences = prefs
		c.Bus = bus
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

// WithTimeout bounds every backend call.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithSidebarCollapsed sets the initial sidebar state.
func WithSidebarCollapsed(collapsed bool) Option {
	return func(c *Config) {
		c.SidebarCollapsed = collapsed
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}

// WithTickInterval changes how often time-dependent state is re-evaluated.
func WithTickInterval(d time.Duration) Option {
	return func(c *Config) {
		c.TickInterval = d
	}
}
