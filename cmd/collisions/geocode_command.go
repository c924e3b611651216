package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/collision-data-etl/internal/domain"
)

func newGeocodeCommand(ctx *commandContext) *cobra.Command {
	var city, state string
	var mock bool

	cmd := &cobra.Command{
		Use:   "geocode ADDRESS",
		Short: "Resolve one address through the same fallback tiers as normalize",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("mock") {
				ctx.cfg.GeocodeMock = mock
			}
			if state == "" {
				state = ctx.cfg.DefaultState
			}

			address := args[0]
			location := domain.JoinLocation(address, city, state)
			coords, ok := ctx.newResolver().Resolve(cmd.Context(), location, city, state)
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no coordinates found for %q", location)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%.6f, %.6f\n", location, coords.Lat, coords.Lon)
			return nil
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "City of the address")
	cmd.Flags().StringVar(&state, "state", "", "State of the address (default $DEFAULT_STATE)")
	cmd.Flags().BoolVar(&mock, "mock", false, "Use synthetic coordinates instead of the geocoding service")

	return cmd
}
