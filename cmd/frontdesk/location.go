package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Veraticus/frontdesk/internal/common"
	"github.com/Veraticus/frontdesk/internal/location"
	"github.com/spf13/cobra"
)

func locationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Show or change the active location",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the locations of the business",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := sessionFromConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			printLocations(cmd.OutOrStdout(), s.locations)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <location-id>",
		Short: "Make a location active (owners only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: location id must be a number, got %q", common.ErrValidation, args[0])
			}

			s, err := sessionFromConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if err := setLocation(cmd.Context(), s.locations, id); err != nil {
				return err
			}
			printLocations(cmd.OutOrStdout(), s.locations)
			return nil
		},
	})

	return cmd
}

func sessionFromConfig(ctx context.Context) (*session, error) {
	opts, err := optionsFromConfig(appCfg)
	if err != nil {
		return nil, err
	}
	return openSession(ctx, opts)
}

func printLocations(w io.Writer, locs *location.Context) {
	active := locs.Active()
	for _, l := range locs.Locations() {
		marker := " "
		if l.ID == active {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-4d %-20s %s\n", marker, l.ID, l.Name, l.Address)
	}
	if locs.Locked() {
		fmt.Fprintln(w, "Staff accounts stay on their assigned location.")
	}
}

func setLocation(ctx context.Context, locs *location.Context, id int64) error {
	if locs.Locked() {
		return common.NewUserError("Staff accounts cannot change location", nil)
	}
	if err := locs.SetActive(ctx, id); err != nil {
		if errors.Is(err, location.ErrUnknownLocation) {
			return common.NewUserError(fmt.Sprintf("Location %d does not belong to your business", id), err)
		}
		return err
	}
	return nil
}
