package main

import (
	"context"
	"flag"
	"os"

	"github.com/yigit/scholarlink/internal/bootstrap"
	"github.com/yigit/scholarlink/internal/pkg/logger" // Still needed for initial error logging
	"github.com/yigit/scholarlink/internal/server"
)

func main() {
	configPath := flag.String("config", bootstrap.DefaultConfigPath, "path to the YAML configuration file")
	flag.Parse()

	srv, err := server.NewServer(context.Background(), *configPath)
	if err != nil {
		// Error details are logged within the bootstrap functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
