package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/greenbasket/greenbasket-backend/migrations"
	"github.com/greenbasket/greenbasket-backend/pkg/config"
	"github.com/greenbasket/greenbasket-backend/pkg/db"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/migrate"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.NewClient(cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	dialect := "postgres"
	if cfg.FeatureFlags.UseSQLite {
		dialect = "sqlite3"
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
	})

	switch *cmd {
	case "up":
		if err := migrate.Up(ctx, dbClient, migrations.FS, dialect); err != nil {
			logg.Error(ctx, "goose up failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "migrations applied")

	case "down":
		if err := migrate.Down(ctx, dbClient, migrations.FS, dialect); err != nil {
			logg.Error(ctx, "goose down failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "migration rolled back")

	case "status":
		statuses, err := migrate.Status(ctx, dbClient, migrations.FS, dialect)
		if err != nil {
			logg.Error(ctx, "goose status failed", err)
			os.Exit(1)
		}
		for _, st := range statuses {
			applied := string(st.State)
			if st.State == goose.StateApplied {
				applied = st.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%-20s %s\n", applied, st.Source.Path)
		}

	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}
}
