// Package report tracks the financial report shown for the active location.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/frontdesk/internal/common"
	"github.com/Veraticus/frontdesk/internal/eventbus"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
)

// RefreshTopics are the broadcasts after which the report is re-fetched.
var RefreshTopics = []eventbus.Topic{
	eventbus.LocationChanged,
	eventbus.AppointmentChanged,
	eventbus.ExpenseChanged,
}

// ParsePeriod parses "day", "month" or "year".
func ParsePeriod(s string) (model.ReportPeriod, error) {
	switch p := model.ReportPeriod(strings.ToLower(strings.TrimSpace(s))); p {
	case model.PeriodDay, model.PeriodMonth, model.PeriodYear:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown report period %q", common.ErrValidation, s)
	}
}

// Request is a tagged report fetch.
type Request struct {
	Base       time.Time
	Period     model.ReportPeriod
	Scope      service.Scope
	Generation uint64
}

// Result answers a Request.
type Result struct {
	Err    error
	Report *model.FinancialReport
	Request
}

// Report holds the period being viewed and the last report fetched for it.
type Report struct {
	base       time.Time
	err        error
	current    *model.FinancialReport
	period     model.ReportPeriod
	generation uint64
	loaded     bool
}

// New creates a report view for period around base.
func New(period model.ReportPeriod, base time.Time) *Report {
	r := &Report{period: period}
	r.base = startOf(period, base)
	return r
}

// Period returns the viewed period.
func (r *Report) Period() model.ReportPeriod { return r.period }

// Base returns the first day of the viewed period.
func (r *Report) Base() time.Time { return r.base }

// Current returns the last accepted report, if any.
func (r *Report) Current() *model.FinancialReport { return r.current }

// Err returns the error of the last accepted fetch.
func (r *Report) Err() error { return r.err }

// Loaded reports whether the latest request has been answered.
func (r *Report) Loaded() bool { return r.loaded }

// SetPeriod switches the period, keeping the base date inside it.
func (r *Report) SetPeriod(p model.ReportPeriod) {
	r.period = p
	r.base = startOf(p, r.base)
}

// CyclePeriod moves day -> month -> year -> day.
func (r *Report) CyclePeriod() {
	switch r.period {
	case model.PeriodDay:
		r.SetPeriod(model.PeriodMonth)
	case model.PeriodMonth:
		r.SetPeriod(model.PeriodYear)
	default:
		r.SetPeriod(model.PeriodDay)
	}
}

// Shift moves the base date by n periods.
func (r *Report) Shift(n int) {
	switch r.period {
	case model.PeriodYear:
		r.base = r.base.AddDate(n, 0, 0)
	case model.PeriodMonth:
		r.base = r.base.AddDate(0, n, 0)
	default:
		r.base = r.base.AddDate(0, 0, n)
	}
}

// Title describes the viewed period.
func (r *Report) Title() string {
	switch r.period {
	case model.PeriodYear:
		return r.base.Format("2006")
	case model.PeriodMonth:
		return r.base.Format("January 2006")
	default:
		return r.base.Format("Monday, January 2, 2006")
	}
}

// Begin tags a fetch of the viewed period at scope.
func (r *Report) Begin(scope service.Scope) Request {
	r.generation++
	r.loaded = false
	return Request{Scope: scope, Period: r.period, Base: r.base, Generation: r.generation}
}

// Fetch loads the report for req.
func Fetch(ctx context.Context, svc service.Reports, req Request) Result {
	rep, err := svc.GetReport(ctx, req.Scope, req.Period, req.Base)
	if err != nil {
		err = fmt.Errorf("failed to load %s report: %w", req.Period, err)
	}
	return Result{Request: req, Report: rep, Err: err}
}

// Apply stores res unless a newer request superseded it.
func (r *Report) Apply(res Result) bool {
	if res.Generation != r.generation {
		slog.Debug("Dropping stale report", "period", res.Period, "generation", res.Generation)
		return false
	}
	r.loaded = true
	r.err = res.Err
	if res.Err != nil {
		r.current = nil
		return true
	}
	r.current = res.Report
	return true
}

// Refresh fetches the viewed period synchronously.
func (r *Report) Refresh(ctx context.Context, svc service.Reports, scope service.Scope) error {
	res := Fetch(ctx, svc, r.Begin(scope))
	r.Apply(res)
	return res.Err
}

// Entries returns the lines of the current report of kind.
func (r *Report) Entries(kind model.EntryKind) []model.ReportEntry {
	if r.current == nil {
		return nil
	}
	var out []model.ReportEntry
	for _, e := range r.current.Entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func startOf(p model.ReportPeriod, t time.Time) time.Time {
	y, m, d := t.Date()
	switch p {
	case model.PeriodYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, t.Location())
	case model.PeriodMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
}
