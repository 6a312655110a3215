// Package themes holds the lipgloss styles of the terminal interface.
package themes

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Normal      lipgloss.Style
	Bold        lipgloss.Style
	Faint       lipgloss.Style
	Selected    lipgloss.Style
	Highlighted lipgloss.Style
	RoundedBox  lipgloss.Style
	BorderedBox lipgloss.Style

	// Calendar cells
	Today   lipgloss.Style
	Padding lipgloss.Style
	Badge   lipgloss.Style
	Weekday lipgloss.Style

	// Tabs
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	// Status line
	StatusOpen    lipgloss.Style
	StatusClosed  lipgloss.Style
	StatusUnknown lipgloss.Style
	StatusError   lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusInfo    lipgloss.Style

	Income  lipgloss.Style
	Expense lipgloss.Style

	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Foreground lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Info       lipgloss.Color
}

type palette struct {
	primary, secondary, success, warning, danger, info lipgloss.Color
	foreground, subtle, border, muted, surface, onPrimary lipgloss.Color
}

func build(p palette) Theme {
	fg := lipgloss.NewStyle().Foreground(p.foreground)

	return Theme{
		Primary:    p.primary,
		Secondary:  p.secondary,
		Muted:      p.muted,
		Border:     p.border,
		Foreground: p.foreground,
		Success:    p.success,
		Warning:    p.warning,
		Error:      p.danger,
		Info:       p.info,

		Title:    fg.Bold(true).MarginBottom(1),
		Subtitle: lipgloss.NewStyle().Foreground(p.subtle),
		Normal:   fg,
		Bold:     fg.Bold(true),
		Faint:    lipgloss.NewStyle().Foreground(p.muted),
		Selected: lipgloss.NewStyle().
			Background(p.primary).
			Foreground(p.onPrimary).
			Bold(true),
		Highlighted: lipgloss.NewStyle().
			Background(p.surface).
			Foreground(p.foreground),
		RoundedBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1),
		BorderedBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(p.border).
			Padding(0, 1),

		Today:   lipgloss.NewStyle().Foreground(p.secondary).Bold(true).Underline(true),
		Padding: lipgloss.NewStyle().Foreground(p.muted),
		Badge:   lipgloss.NewStyle().Foreground(p.info),
		Weekday: lipgloss.NewStyle().Foreground(p.subtle).Bold(true),

		TabActive: lipgloss.NewStyle().
			Foreground(p.primary).
			Bold(true).
			Underline(true).
			Padding(0, 1),
		TabInactive: lipgloss.NewStyle().
			Foreground(p.muted).
			Padding(0, 1),

		StatusOpen:    lipgloss.NewStyle().Foreground(p.success).Bold(true),
		StatusClosed:  lipgloss.NewStyle().Foreground(p.danger).Bold(true),
		StatusUnknown: lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		StatusError:   lipgloss.NewStyle().Foreground(p.danger).Bold(true),
		StatusSuccess: lipgloss.NewStyle().Foreground(p.success).Bold(true),
		StatusWarning: lipgloss.NewStyle().Foreground(p.warning).Bold(true),
		StatusInfo:    lipgloss.NewStyle().Foreground(p.info).Bold(true),

		Income:  lipgloss.NewStyle().Foreground(p.success),
		Expense: lipgloss.NewStyle().Foreground(p.danger),
	}
}

// Default is the default theme.
var Default = build(palette{
	primary:    lipgloss.Color("#7c3aed"),
	secondary:  lipgloss.Color("#a78bfa"),
	success:    lipgloss.Color("#10b981"),
	warning:    lipgloss.Color("#f59e0b"),
	danger:     lipgloss.Color("#ef4444"),
	info:       lipgloss.Color("#3b82f6"),
	foreground: lipgloss.Color("#fafafa"),
	subtle:     lipgloss.Color("#a3a3a3"),
	border:     lipgloss.Color("#404040"),
	muted:      lipgloss.Color("#737373"),
	surface:    lipgloss.Color("#262626"),
	onPrimary:  lipgloss.Color("#fafafa"),
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(palette{
	primary:    lipgloss.Color("#cba6f7"),
	secondary:  lipgloss.Color("#f5c2e7"),
	success:    lipgloss.Color("#a6e3a1"),
	warning:    lipgloss.Color("#f9e2af"),
	danger:     lipgloss.Color("#f38ba8"),
	info:       lipgloss.Color("#89dceb"),
	foreground: lipgloss.Color("#cdd6f4"),
	subtle:     lipgloss.Color("#a6adc8"),
	border:     lipgloss.Color("#45475a"),
	muted:      lipgloss.Color("#6c7086"),
	surface:    lipgloss.Color("#313244"),
	onPrimary:  lipgloss.Color("#1e1e2e"),
})

var registry = map[string]Theme{
	"default":          Default,
	"catppuccin":       CatppuccinMocha,
	"catppuccin-mocha": CatppuccinMocha,
}

// GetTheme returns a theme by name, falling back to Default.
func GetTheme(name string) Theme {
	if t, ok := registry[name]; ok {
		return t
	}
	return Default
}

// Known reports whether name is a registered theme.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Names lists the registered theme names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
