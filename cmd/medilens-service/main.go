package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/q-pitt/Medilense-3bros/medilensservice"
)

func main() {
	if err := medilensservice.Run(); err != nil {
		log.Error().Err(err).Msg("medilens-service exited with error")
		os.Exit(1)
	}
}
