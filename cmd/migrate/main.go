package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"customer-addressbook/internal/config"
	"customer-addressbook/internal/logger"
	"customer-addressbook/internal/migrate"
)

func main() {
	var down bool
	flag.BoolVar(&down, "down", false, "Roll back every migration instead of applying them")
	flag.Parse()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New("addressbook-migrate", cfg.LogLevel)

	ctx := context.Background()
	if down {
		if err := migrate.Down(ctx, cfg.DBConnString); err != nil {
			log.Error("roll back migrations", slog.Any("error", err))
			os.Exit(1)
		}
		log.Info("migrations rolled back")
		return
	}

	if err := migrate.Apply(ctx, cfg.DBConnString, log); err != nil {
		log.Error("apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
}
