// Package cli implements climatectl, the maintenance tool for the climate
// dataset.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"climate-server/internal/config"
	"climate-server/internal/logging"
)

const appName = "climatectl"

var version = "dev"

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// options carries the resolved configuration to subcommands.
type options struct {
	cfg    config.Config
	dbPath string
	driver string
	output string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Maintain the climate dataset served by climate-server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			if opts.dbPath != "" {
				cfg.SQLitePath = opts.dbPath
				cfg.SQLiteDSN = ""
			}
			switch opts.driver {
			case "":
			case config.DriverMattn, config.DriverModernc:
				cfg.SQLiteDriver = opts.driver
			default:
				return fmt.Errorf("unsupported driver %q: use %q or %q", opts.driver, config.DriverMattn, config.DriverModernc)
			}
			switch opts.output {
			case "text", "json":
			default:
				return fmt.Errorf("unsupported output format %q: use 'text' or 'json'", opts.output)
			}
			opts.cfg = cfg
			slog.SetDefault(logging.NewWithWriter(cmd.ErrOrStderr(), cfg, version, appName))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite file (overrides SQLITE_PATH and DB_DSN)")
	rootCmd.PersistentFlags().StringVar(&opts.driver, "driver", "", "database/sql driver: sqlite3 or sqlite (overrides DB_DRIVER)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text or json")

	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newSeedCmd(opts))
	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))

	return rootCmd
}

// writable returns the configuration with read-only mode turned off.
func (o *options) writable() config.Config {
	cfg := o.cfg
	cfg.SQLiteReadOnly = false
	return cfg
}
