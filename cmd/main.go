package main

import (
	"context"
	"os"

	"github.com/desertthunder/melodi/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnvFiles(".env"); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	configPath := os.Getenv("MELODI_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			logger.Fatal("failed to load config", "path", configPath, "error", err)
		}
		config = loaded
	}
	if err := config.ApplyEnv(); err != nil {
		logger.Fatal("invalid environment", "error", err)
	}
	if err := shared.ConfigureLogger(logger, config.Log); err != nil {
		logger.Warn("ignoring log level", "error", err)
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "melodi",
		Usage:    "Music catalog, recommendations & external search",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		runner.Close()
		logger.Fatalf("application error: %v", err)
	}
}
