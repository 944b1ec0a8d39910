package main

import (
	"errors"
	"os"

	"roombook/config"
	"roombook/helper"
	"roombook/shared/logger"

	"github.com/rs/zerolog/log"
)

const (
	argLength = 2
)

func main() {
	logger.InitLogger()

	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration direction (up/down/drop/step-up) is required")
	}

	cfg := config.Get()
	logger.SetLogLevel(cfg)

	direction := os.Args[1]

	err := helper.Runner(cfg, direction)
	if errors.Is(err, helper.ErrUnknownAction) {
		log.Fatal().Str("direction", direction).Msg("Invalid direction. Use 'up', 'down', 'drop' or 'step-up'")
	}

	if err != nil {
		log.Fatal().Err(err).Str("direction", direction).Msg("Migration failed")
	}
}
