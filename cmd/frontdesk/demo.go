package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/frontdesk/internal/api/fake"
	"github.com/Veraticus/frontdesk/internal/common"
	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func demoCmd() *cobra.Command {
	var (
		role       string
		locationID int64
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Open the front desk against a built-in demo studio",
		Long: `Start an in-memory demo backend with two locations and a month of
bookings, then open the front desk signed in as an owner or a staff member.
Nothing is persisted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := parseRole(role)
			if err != nil {
				return err
			}

			backend, err := startDemoBackend(time.Now(), r, locationID)
			if err != nil {
				return err
			}
			defer func() {
				if err := backend.Close(); err != nil {
					slog.Warn("Failed to stop demo backend", "error", err)
				}
			}()

			return runTUI(cmd.Context(), backend.Options(appCfg.API.Timeout), appCfg)
		},
	}

	cmd.Flags().StringVar(&role, "role", string(model.RoleOwner), "sign in as owner or staff")
	cmd.Flags().Int64Var(&locationID, "location", fake.DemoDowntown, "assigned location of the demo user")

	return cmd
}

func parseRole(s string) (model.Role, error) {
	switch r := model.Role(strings.ToLower(strings.TrimSpace(s))); r {
	case model.RoleOwner, model.RoleStaff:
		return r, nil
	default:
		return "", fmt.Errorf("%w: role must be owner or staff, got %q", common.ErrValidation, s)
	}
}

// demoBackend is a fake backend listening on a loopback port.
type demoBackend struct {
	server *http.Server
	URL    string
	Token  string
}

func startDemoBackend(now time.Time, role model.Role, locationID int64) (*demoBackend, error) {
	store := fake.NewStore(now.Location())
	fake.SeedDemo(store, now)
	secret := []byte(uuid.NewString())

	token, err := fake.Token(secret, role, "demo-"+string(role), locationID, 12*time.Hour)
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to listen for demo backend: %w", err)
	}

	srv := &http.Server{
		Handler:           fake.NewServer(store, secret),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Demo backend stopped", "error", err)
		}
	}()

	slog.Debug("Demo backend listening", "addr", ln.Addr().String())
	return &demoBackend{server: srv, URL: "http://" + ln.Addr().String(), Token: token}, nil
}

// Options returns session options for the demo user. Preferences live in
// memory.
func (d *demoBackend) Options(timeout time.Duration) sessionOptions {
	return sessionOptions{
		BaseURL:     d.URL,
		Token:       d.Token,
		StoragePath: ":memory:",
		Timeout:     timeout,
		Retries:     1,
	}
}

func (d *demoBackend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return d.server.Shutdown(ctx)
}
