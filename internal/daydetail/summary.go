package daydetail

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/shopspring/decimal"
)

// SummaryLine is one appointment in a printable summary.
type SummaryLine struct {
	Price   decimal.Decimal
	Client  string
	Service string
	Time    model.TimeOfDay
}

// Summary is a printable listing of one day's appointments.
type Summary struct {
	Date  time.Time
	Total decimal.Decimal
	Lines []SummaryLine
}

// Summarize builds the summary of appts on date. The order of appts is kept.
func Summarize(date time.Time, appts []model.AppointmentSummary) Summary {
	s := Summary{Date: model.DateOnly(date), Total: decimal.Zero}
	for _, a := range appts {
		s.Lines = append(s.Lines, SummaryLine{
			Time:    model.TimeOfDayOf(a.Start),
			Client:  a.CustomerName,
			Service: a.ServiceName,
			Price:   a.Price,
		})
		s.Total = s.Total.Add(a.Price)
	}
	return s
}

// Count returns the number of appointments in the summary.
func (s Summary) Count() int {
	return len(s.Lines)
}

// Text renders the summary for printing.
func (s Summary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Appointments for %s\n", s.Date.Format("Monday, January 2, 2006"))
	if len(s.Lines) == 0 {
		b.WriteString("  No appointments\n")
	}
	for _, l := range s.Lines {
		fmt.Fprintf(&b, "  %s  %-24s %-24s %10s\n", l.Time, truncate(l.Client, 24), truncate(l.Service, 24), l.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: %s (%d appointments)\n", s.Total.StringFixed(2), len(s.Lines))
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
