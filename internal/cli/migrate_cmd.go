package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"climate-server/internal/db"
	"climate-server/internal/migrate"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, err := db.Open(opts.writable())
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(conn); err != nil {
					slog.Error("db close", "error", err)
				}
			}()

			applied, err := migrate.Run(cmd.Context(), conn)
			if err != nil {
				return err
			}
			if opts.output == "json" {
				if applied == nil {
					applied = []string{}
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"applied": applied})
			}
			if len(applied) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return err
			}
			for _, name := range applied {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
