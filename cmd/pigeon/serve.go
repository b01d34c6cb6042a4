package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pigeon/internal/app"
	"pigeon/internal/config"
	"pigeon/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook listener and dispatcher",
	Long: `Start the HTTP listener on PIGEON_PORT, the timer and the dispatch loop.

Configuration is read from the environment:
  PIGEON_TOKEN            bot user OAuth token (required)
  PIGEON_SECRET           request signing secret (required)
  PIGEON_PORT             listener port (default 3000)
  PIGEON_TIMEZONE         time zone schedules are evaluated in
  PIGEON_TICK_INTERVAL    timer interval (default 60s)
  PIGEON_API_TIMEOUT      Slack Web API timeout (default 10s)
  PIGEON_SCHEDULE_FILE    schedule document on disk
  PIGEON_SCHEDULE_BUCKET  S3 bucket holding the schedule document
  PIGEON_SCHEDULE_KEY     S3 key of the schedule document
  LOG_LEVEL, LOG_FILE     logging`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := app.InitLogger(cfg); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Sync()
		log := logger.GetLogger()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client, err := app.NewClient(ctx, cfg)
		if err != nil {
			log.Error("failed to build bot", zap.Error(err))
			return fmt.Errorf("failed to build bot: %w", err)
		}

		log.Info("starting pigeon",
			zap.Int("port", cfg.Port),
			zap.String("timezone", cfg.Location().String()),
			zap.Duration("tick_interval", cfg.TickInterval))

		// Errors are returned so the deferred stop and Sync still run.
		if err := client.Run(ctx); err != nil {
			log.Error("bot stopped", zap.Error(err))
			return fmt.Errorf("bot stopped: %w", err)
		}
		log.Info("pigeon stopped")
		return nil
	},
}
