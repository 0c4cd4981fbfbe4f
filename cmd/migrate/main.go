package main

import (
	"flag"
	"log/slog"
	"os"

	"marketplace/internal/config"
	"marketplace/internal/infra/db"
)

// usage: migrate <up|down|version>
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		logger.Error("usage: migrate <up|down|version>")
		os.Exit(1)
	}

	config.LoadDotEnv(".env", "../.env")
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	mg, err := db.NewMigrator(cfg.DSN())
	if err != nil {
		logger.Error("failed to create migrator", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = mg.Close() }()

	switch args[0] {
	case "up":
		applied, err := mg.Up()
		if err != nil {
			logger.Error("migration up failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if !applied {
			logger.Info("no pending migrations")
			return
		}
		logger.Info("migrations applied successfully")

	case "down":
		rolled, err := mg.Down()
		if err != nil {
			logger.Error("migration down failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if !rolled {
			logger.Info("no migrations to rollback")
			return
		}
		logger.Info("migration rolled back successfully")

	case "version":
		v, dirty, err := mg.Version()
		if err != nil {
			logger.Error("failed to get version", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("current migration version", slog.Uint64("version", uint64(v)), slog.Bool("dirty", dirty))

	default:
		logger.Error("unknown command", slog.String("command", args[0]))
		os.Exit(1)
	}
}
