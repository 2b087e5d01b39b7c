package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"climate-server/internal/db"
	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/service"
)

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print row counts, date span and the most active station",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := db.Open(opts.cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(conn); err != nil {
					slog.Error("db close", "error", err)
				}
			}()

			svc := service.NewService(repository.NewRepository(conn), service.Options{})
			sum, err := svc.Summary(cmd.Context())
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), opts.output, sum)
		},
	}
}
