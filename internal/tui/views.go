package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := m.header.View(m.width)

	var main string
	if m.showHelp {
		main = m.renderHelp()
	} else {
		main = m.renderSurface()
	}

	body := main
	if side := m.sidebar.View(); side != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, side, " ", main)
	}

	return strings.Join([]string{header, "", body, "", m.renderFooter()}, "\n")
}

func (m Model) renderSurface() string {
	switch m.surface {
	case SurfaceDay:
		return m.day.View()
	case SurfaceReport:
		return m.report.View()
	case SurfaceExpense:
		return m.expense.View()
	case SurfaceWizard:
		return m.wizard.View()
	default:
		return m.calendar.View()
	}
}

func (m Model) renderHelp() string {
	return m.theme.RoundedBox.Render(
		m.theme.Title.Render("Keyboard shortcuts") + "\n" + m.help.FullHelpView(m.keymap.FullHelp()),
	)
}

func (m Model) renderFooter() string {
	var status string
	switch {
	case m.status == "":
	case m.statusErr:
		status = m.theme.StatusError.Render(m.status)
	default:
		status = m.theme.StatusSuccess.Render(m.status)
	}

	clock := m.theme.Faint.Render(m.clock().Format("Mon Jan 2 15:04"))
	line := m.help.ShortHelpView(m.keymap.ShortHelp())
	if status != "" {
		line = status + "  " + line
	}
	return line + "  " + clock
}
