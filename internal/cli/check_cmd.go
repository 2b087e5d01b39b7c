package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/service"
	"climate-server/internal/modules/climate/types"
)

type checkReport struct {
	Summary              summaryView             `json:"summary"`
	PrecipitationDates   int                     `json:"precipitation_dates"`
	Stations             int                     `json:"stations"`
	TemperatureReadings  int                     `json:"temperature_observations"`
	TemperatureStats     *types.TemperatureStats `json:"temperature_stats,omitempty"`
	PrecipitationProblem string                  `json:"precipitation_problem,omitempty"`
}

// newCheckCmd runs every query against fixture files without touching a
// database, using the configured date and duplicate policies.
func newCheckCmd(opts *options) *cobra.Command {
	var stationsPath, measurementsPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the API queries over fixture files in memory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stations, measurements, err := loadFixtures(stationsPath, measurementsPath)
			if err != nil {
				return err
			}
			svc := service.NewService(repository.NewMemoryRepository(stations, measurements), service.Options{
				StrictDateValidation: opts.cfg.StrictDateValidation,
				PrecipDuplicates:     opts.cfg.PrecipDuplicates,
			})
			ctx := cmd.Context()

			sum, err := svc.Summary(ctx)
			if err != nil {
				return err
			}
			report := checkReport{Summary: newSummaryView(sum)}

			ids, err := svc.ListStations(ctx)
			if err != nil {
				return err
			}
			report.Stations = len(ids)

			precipitation, err := svc.PrecipitationLastYear(ctx)
			switch {
			case err == nil:
				report.PrecipitationDates = len(precipitation)
			case errors.Is(err, types.ErrDuplicateDate), errors.Is(err, types.ErrDataUnavailable):
				report.PrecipitationProblem = err.Error()
			default:
				return err
			}

			if sum.Measurements > 0 {
				tobs, err := svc.TemperatureObservationsLastYear(ctx)
				if err != nil {
					return err
				}
				report.TemperatureReadings = len(tobs)
				stats, err := svc.TemperatureStatsRange(ctx, sum.FirstDate, sum.LastDate)
				if err != nil {
					return err
				}
				report.TemperatureStats = &stats
			}

			if opts.output == "json" {
				return printJSON(cmd.OutOrStdout(), report)
			}
			if err := printSummary(cmd.OutOrStdout(), "text", sum); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if report.PrecipitationProblem != "" {
				_, err = fmt.Fprintf(w, "precipitation:      %s\n", report.PrecipitationProblem)
			} else {
				_, err = fmt.Fprintf(w, "precipitation:      %d dates in the last year\n", report.PrecipitationDates)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(w, "tobs:               %d observations in the last year\n", report.TemperatureReadings)
			return err
		},
	}

	cmd.Flags().StringVar(&stationsPath, "stations", "", "station fixture file (.csv, .yaml, .yml)")
	cmd.Flags().StringVar(&measurementsPath, "measurements", "", "measurement fixture file (.csv, .yaml, .yml)")
	return cmd
}
