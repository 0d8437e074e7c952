package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"medcore/m/internal/config"
	"medcore/m/internal/database"
	"medcore/m/internal/logger"
	"medcore/m/internal/migrations"
	"medcore/m/internal/recordstore"
)

func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Reference remote record server",
	}
	cmd.AddCommand(newRecordsServeCmd())
	return cmd
}

func newRecordsServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /api/{collection} backed by SQLite or Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port != "" {
				cfg.HTTPPort = port
			}
			log := logger.WithComponent("records")

			db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := migrations.RunRecords(db); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			handler := recordstore.New(recordstore.NewStore(db), cfg.SyncSecret, log)
			return recordstore.Serve(ctx, ":"+cfg.HTTPPort, handler.Router(), log)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default HTTP_PORT)")
	return cmd
}
