package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/frontdesk/internal/common"
	"github.com/Veraticus/frontdesk/internal/daydetail"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/Veraticus/frontdesk/internal/service"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func agendaCmd() *cobra.Command {
	var (
		from string
		days int
	)

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Print the appointments of one or more days",
		Long: `Print the daily appointment listing of the active location, one block
per day with the total of the day.`,
		Example: `  frontdesk agenda
  frontdesk agenda --from 2024-03-04 --days 7`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := parseDate(from, time.Now())
			if err != nil {
				return err
			}

			opts, err := optionsFromConfig(appCfg)
			if err != nil {
				return err
			}
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			return printAgenda(cmd.Context(), cmd.OutOrStdout(), progressOutput(), s.client, s.locations.Scope(), start, days)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (default: today)")
	cmd.Flags().IntVar(&days, "days", 1, "number of days to print")

	return cmd
}

// parseDate reads a YYYY-MM-DD date in now's zone. Empty means now's day.
func parseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.DateOnly(now), nil
	}
	d, err := time.ParseInLocation(model.DateLayout, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", common.ErrValidation, s)
	}
	return d, nil
}

// progressOutput returns stderr when it is a terminal, nil otherwise.
func progressOutput() io.Writer {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return os.Stderr
	}
	return nil
}

func printAgenda(ctx context.Context, out, progress io.Writer, backend service.Backend, scope service.Scope, start time.Time, days int) error {
	if days < 1 {
		return fmt.Errorf("%w: days must be at least 1", common.ErrValidation)
	}

	var bar *progressbar.ProgressBar
	if progress != nil {
		bar = progressbar.NewOptions(days,
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("Loading agenda"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
	}

	agg := daydetail.New(backend, backend, nil)
	summaries := make([]daydetail.Summary, 0, days)
	for i := range days {
		date := start.AddDate(0, 0, i)
		err := agg.LoadDay(ctx, date, scope)
		if _, apptErr := agg.AppointmentsState(); apptErr != nil {
			return apptErr
		}
		if err != nil {
			slog.Warn("Expenses could not be loaded", "date", date.Format(model.DateLayout), "error", err)
		}
		summaries = append(summaries, agg.GenerateSummary())

		if bar != nil {
			if err := bar.Add(1); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	total := decimal.Zero
	count := 0
	for _, s := range summaries {
		fmt.Fprintln(out, s.Text())
		total = total.Add(s.Total)
		count += s.Count()
	}
	if days > 1 {
		fmt.Fprintf(out, "%d days: %d appointments, %s\n", days, count, total.StringFixed(2))
	}
	return nil
}
