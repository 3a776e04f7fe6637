package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"docgen/cmd"
	"docgen/internal/config"
	"docgen/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// A broken configuration must not stop --help or the rate command;
	// commands that need it load it again and fail with the full error.
	if err := setupLogging(); err != nil {
		log.Printf("Warning: Could not load configuration, using default logging: %v", err)
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting docgen")

	cmd.Execute()

	log.Debug().Msg("Docgen shutdown")
	os.Exit(0)
}

// setupLogging configures the logger from the environment. On a
// configuration error it falls back to the default logger and returns the
// error for the caller to report.
func setupLogging() error {
	cfg, err := config.Load()
	if err != nil {
		if setupErr := logger.Setup(logger.DefaultConfig()); setupErr != nil {
			log.Fatalf("Failed to initialize logger: %v", setupErr)
		}
		return err
	}

	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	return nil
}
