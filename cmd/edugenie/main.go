package main

import (
	"log"
	"os"

	"edugenie/internal/config"
	"edugenie/internal/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	rootCmd := NewCLI(cfg, os.Stdin, os.Stdout).GetRootCommand()
	if err := rootCmd.Execute(); err != nil {
		logger.Sync()
		os.Exit(1)
	}
}
