package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/grabbit/internal/auth"
	"github.com/desertthunder/grabbit/internal/engine"
	"github.com/desertthunder/grabbit/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		logger.Fatalf("could not open database: %v", err)
	}
	defer db.Close()
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		logger.Fatalf("could not migrate database: %v", err)
	}

	store := auth.NewSQLiteStore(db)
	deviceUUID, err := store.DeviceUUID()
	if err != nil {
		logger.Warn("could not load device id, using a transient one", "error", err)
		deviceUUID = shared.GenerateID()
	}

	flow := auth.NewFlow(config, func() string { return deviceUUID }, logger)
	licenses := auth.NewLicenseService(config, deviceUUID, logger)
	session := auth.NewManager(store, flow, licenses, shared.OpenBrowser, logger)
	daemon := engine.NewHTTPEngine(config, logger)

	runner := NewRunner(RunnerOpts{
		Config:  config,
		DB:      db,
		Session: session,
		Engine:  daemon,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "grabbit",
		Usage:    "Queue and download music from link drops",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	session.Initialize(context.Background())

	if err := app.Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrLicenseInvalid):
			logger.Error("downloads need a valid license, run 'auth license' for details")
			os.Exit(1)
		case errors.Is(err, shared.ErrEngineUnavailable):
			logger.Error("the download daemon is not reachable, is it running?")
			logger.Fatalf("%v", err)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
