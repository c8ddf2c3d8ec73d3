package main

import (
	"context"

	"github.com/desertthunder/grabbit/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a starter config file and initializes the local database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		r.logger.Warn("could not create config file", "path", configPath, "error", err)
	} else {
		r.logger.Info("config file created", "path", configPath)
	}

	config, err := shared.LoadConfig(configPath)
	if err != nil {
		r.logger.Warn("could not load config, using defaults", "error", err)
		config = shared.DefaultConfig()
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	r.writePlain("✓ Setup complete\n")
	r.writePlain("Edit %s and add your Google OAuth credentials, then run 'auth login'.\n", configPath)

	return nil
}
