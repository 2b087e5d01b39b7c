package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"climate-server/internal/db"
	"climate-server/internal/migrate"
	"climate-server/internal/modules/climate/types"
	"climate-server/internal/seed"
)

func newSeedCmd(opts *options) *cobra.Command {
	var stationsPath, measurementsPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load station and measurement fixtures (CSV or YAML) in one transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stations, measurements, err := loadFixtures(stationsPath, measurementsPath)
			if err != nil {
				return err
			}

			conn, err := db.Open(opts.writable())
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(conn); err != nil {
					slog.Error("db close", "error", err)
				}
			}()

			if _, err := migrate.Run(cmd.Context(), conn); err != nil {
				return err
			}
			res, err := seed.Insert(cmd.Context(), conn, stations, measurements)
			if err != nil {
				return err
			}
			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]int{
					"stations":     res.Stations,
					"measurements": res.Measurements,
				})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d stations, %d measurements\n", res.Stations, res.Measurements)
			return err
		},
	}

	cmd.Flags().StringVar(&stationsPath, "stations", "", "station fixture file (.csv, .yaml, .yml)")
	cmd.Flags().StringVar(&measurementsPath, "measurements", "", "measurement fixture file (.csv, .yaml, .yml)")
	return cmd
}

func loadFixtures(stationsPath, measurementsPath string) ([]types.Station, []types.Measurement, error) {
	if stationsPath == "" && measurementsPath == "" {
		return nil, nil, errors.New("at least one of --stations or --measurements is required")
	}
	var (
		stations     []types.Station
		measurements []types.Measurement
		err          error
	)
	if stationsPath != "" {
		if stations, err = seed.LoadStations(stationsPath); err != nil {
			return nil, nil, err
		}
	}
	if measurementsPath != "" {
		if measurements, err = seed.LoadMeasurements(measurementsPath); err != nil {
			return nil, nil, err
		}
	}
	return stations, measurements, nil
}
