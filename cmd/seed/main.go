package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"customer-addressbook/internal/config"
	"customer-addressbook/internal/db"
	"customer-addressbook/internal/logger"
	addrrepo "customer-addressbook/internal/repository/address"
	customerrepo "customer-addressbook/internal/repository/customer"
	"customer-addressbook/internal/repository/region"
	"customer-addressbook/internal/seed"
	customersvc "customer-addressbook/internal/service/customer"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New("addressbook-seed", cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Error("connect db", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	hash, err := customersvc.New(customerrepo.NewPostgres(pool, log), log).HashPassword(seed.FixturePassword)
	if err != nil {
		log.Error("hash fixture password", slog.Any("error", err))
		os.Exit(1)
	}

	regions := region.NewPostgres(pool)
	deps := seed.Deps{
		Pool:      pool,
		Regions:   regions,
		Addresses: addrrepo.NewPostgres(pool, log),
	}

	// A stale region cache is only a warning; seeding still proceeds.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, region cache not invalidated", slog.Any("error", err))
	} else {
		deps.Cache = region.NewCached(regions, rdb, cfg.RegionCacheTTL, log)
	}

	if err := seed.Apply(ctx, deps, hash); err != nil {
		log.Error("seed apply", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("seed applied",
		slog.Int("regions", len(seed.DefaultRegions)),
		slog.String("customer_email", seed.FixtureEmail),
	)
}
