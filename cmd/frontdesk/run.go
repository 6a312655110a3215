package main

import (
	"context"
	"log/slog"

	"github.com/Veraticus/frontdesk/internal/config"
	"github.com/Veraticus/frontdesk/internal/tui"
	"github.com/Veraticus/frontdesk/internal/tui/themes"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Open the front desk",
		Long: `Open the interactive front desk against the configured backend.

The backend URL comes from api.base_url (or --api-url) and the credential
from auth.token or auth.token_file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := optionsFromConfig(appCfg)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), opts, appCfg)
		},
	}
}

func runTUI(ctx context.Context, opts sessionOptions, cfg *config.Config) error {
	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Warn("Failed to close preference store", "error", err)
		}
	}()

	collapsed, err := s.prefs.SidebarCollapsed(ctx)
	if err != nil {
		slog.Warn("Could not read sidebar preference", "error", err)
	}

	closeLog, err := redirectLogs(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	if !themes.Known(cfg.UI.Theme) {
		slog.Warn("Unknown theme, using default", "theme", cfg.UI.Theme)
	}

	return tui.Run(ctx,
		tui.WithBackend(s.client),
		tui.WithSession(s.locations, s.prefs, s.bus),
		tui.WithTheme(themes.GetTheme(cfg.UI.Theme)),
		tui.WithTimeout(cfg.API.Timeout),
		tui.WithSidebarCollapsed(collapsed),
	)
}
