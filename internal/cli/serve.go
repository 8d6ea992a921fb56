package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quantforge/ta/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST/WebSocket API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		// structured output for the long-running server
		level := logger.GetLevel()
		srvLogger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return server.New(cfg, srvLogger, db).Run(ctx)
	},
}
