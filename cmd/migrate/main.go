package main

import (
	"context"
	"flag"
	"os"

	"github.com/bolao-platform/bolao-backend/pkg/config"
	"github.com/bolao-platform/bolao-backend/pkg/db"
	"github.com/bolao-platform/bolao-backend/pkg/logger"
	"github.com/bolao-platform/bolao-backend/pkg/migrate"
	"github.com/joho/godotenv"
)

func main() {
	dir := flag.String("dir", migrate.DefaultDir, "directory with migration files")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	logg := logger.New(logger.Options{ServiceName: "migrate"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	client, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to connect to database", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	sqlDB, err := client.DB().DB()
	if err != nil {
		logg.Error(context.Background(), "failed to extract sql handle", err)
		os.Exit(1)
	}

	ctx := logg.WithFields(context.Background(), map[string]any{
		"command": command,
		"dir":     *dir,
	})
	logg.Info(ctx, "running migrations")

	if err := migrate.Run(ctx, sqlDB, cfg.DB.Driver, *dir, command, flag.Args()[1:]...); err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}

	logg.Info(ctx, "migrations completed")
}
