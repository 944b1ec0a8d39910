package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"roombook/config"
	"roombook/di"
	"roombook/shared/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := di.InitializeNotifier()

	if err := worker.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Notifier stopped")

		stop()
		os.Exit(1)
	}

	log.Info().Msg("Notifier shut down.")
}
