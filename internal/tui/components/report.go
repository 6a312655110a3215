package components

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/report"
	"github.com/Veraticus/frontdesk/internal/service"
	"github.com/Veraticus/frontdesk/internal/tui/themes"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

// ReportModel shows the financial report of the active location.
type ReportModel struct {
	theme   themes.Theme
	report  *report.Report
	svc     service.Reports
	scope   func() service.Scope
	bar     progress.Model
	timeout time.Duration
}

// NewReportModel creates a monthly report around base.
func NewReportModel(theme themes.Theme, svc service.Reports, scope func() service.Scope, base time.Time, timeout time.Duration) ReportModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return ReportModel{
		theme:   theme,
		bar:     bar,
		report:  report.New(model.PeriodMonth, base),
		svc:     svc,
		scope:   scope,
		timeout: timeout,
	}
}

// Refresh re-fetches the viewed period. Older responses are dropped.
func (m ReportModel) Refresh() tea.Cmd {
	req := m.report.Begin(m.scope())
	svc, timeout := m.svc, m.timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return ReportLoadedMsg{Result: report.Fetch(ctx, svc, req)}
	}
}

// Report returns the report state.
func (m ReportModel) Report() *report.Report {
	return m.report
}

// Update handles messages.
func (m ReportModel) Update(msg tea.Msg) (ReportModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ReportLoadedMsg:
		m.report.Apply(msg.Result)

	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h", "[":
			m.report.Shift(-1)
		case "right", "l", "]":
			m.report.Shift(1)
		case "p", "tab":
			m.report.CyclePeriod()
		default:
			return m, nil
		}
		return m, m.Refresh()
	}
	return m, nil
}

// View renders the report.
func (m ReportModel) View() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(fmt.Sprintf("Report · %s (%s)", m.report.Title(), m.report.Period())))
	b.WriteString("\n")

	switch {
	case m.report.Err() != nil:
		b.WriteString(m.theme.StatusError.Render("Could not load the report"))
		return b.String()
	case !m.report.Loaded():
		b.WriteString(m.theme.StatusUnknown.Render("Loading report..."))
		return b.String()
	}

	rep := m.report.Current()
	if rep == nil {
		return b.String()
	}

	b.WriteString(m.theme.Subtitle.Render(rep.BusinessName + " · " + rep.LocationName))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%-12s %s\n", "Income", m.theme.Income.Render(rep.TotalIncome.StringFixed(2)))
	fmt.Fprintf(&b, "%-12s %s\n", "Expenses", m.theme.Expense.Render(rep.TotalExpense.StringFixed(2)))
	net := m.theme.Income
	if rep.NetProfit.IsNegative() {
		net = m.theme.Expense
	}
	fmt.Fprintf(&b, "%-12s %s\n", "Net profit", net.Bold(true).Render(rep.NetProfit.StringFixed(2)))
	fmt.Fprintf(&b, "%-12s %s\n\n", "Spent", m.bar.ViewAs(ExpenseRatio(rep)))

	for _, e := range rep.Entries {
		style := m.theme.Income
		if e.Kind == model.EntryExpense {
			style = m.theme.Expense
		}
		line := fmt.Sprintf("%s  %-24s %-24s %10s", e.Date.Format(model.DateLayout), e.Description, e.Details, e.Amount.StringFixed(2))
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.theme.Faint.Render("←/→: previous/next · p: period · esc: back"))
	return b.String()
}

// ExpenseRatio is the share of income spent, clamped to [0, 1]. A period
// without income counts as fully spent when it has any expense.
func ExpenseRatio(rep *model.FinancialReport) float64 {
	if rep == nil || !rep.TotalExpense.IsPositive() {
		return 0
	}
	if !rep.TotalIncome.IsPositive() {
		return 1
	}
	ratio := rep.TotalExpense.Div(rep.TotalIncome)
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		return 1
	}
	return ratio.InexactFloat64()
}
