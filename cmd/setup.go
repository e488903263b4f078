package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/melodi/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing and migrates the SQLite database it names.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.logger.Info("config file created", "path", configPath)
		config = shared.DefaultConfig()
	}
	if err := config.ApplyEnv(); err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		return r.writePlain("✓ Rolled back latest migration on %s\n", config.Database.Path)
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := r.writePlain("✓ Database ready at %s\n", config.Database.Path); err != nil {
		return err
	}
	if config.Database.Driver != "sqlite" {
		return r.writePlain("Set database.driver = \"sqlite\" in %s to serve from it.\n", configPath)
	}
	return nil
}
