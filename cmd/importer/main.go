package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"customer-addressbook/internal/config"
	"customer-addressbook/internal/db"
	"customer-addressbook/internal/importer"
	"customer-addressbook/internal/logger"
	"customer-addressbook/internal/repository/region"
	"github.com/redis/go-redis/v9"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to region directory CSV (region_id,country_id,code,default_name)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New("addressbook-importer", cfg.LogLevel)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Error("connect db", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	regions := region.NewPostgres(pool)
	var cache importer.CacheInvalidator
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, region cache not invalidated", slog.Any("error", err))
	} else {
		cache = region.NewCached(regions, rdb, cfg.RegionCacheTTL, log)
	}

	f, err := os.Open(filePath)
	if err != nil {
		log.Error("open file", slog.Any("error", err))
		os.Exit(1)
	}
	defer f.Close()

	start := time.Now()
	count, err := importer.NewCSVImporter(f, regions, cache).Run(ctx)
	if err != nil {
		log.Error("import failed", slog.Int("imported", count), slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("regions imported",
		slog.Int("count", count),
		slog.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)),
	)
}
