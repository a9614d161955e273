package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"customer-addressbook/internal/config"
	"customer-addressbook/internal/db"
	"customer-addressbook/internal/event"
	"customer-addressbook/internal/httpserver"
	"customer-addressbook/internal/logger"
	addrrepo "customer-addressbook/internal/repository/address"
	customerrepo "customer-addressbook/internal/repository/customer"
	"customer-addressbook/internal/repository/region"
	addresssvc "customer-addressbook/internal/service/address"
	customersvc "customer-addressbook/internal/service/customer"
	"customer-addressbook/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// redisPinger adapts the redis client to httpserver.Pinger.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New("addressbook-api", cfg.LogLevel)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Error("connect to db", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("connect to redis", slog.Any("error", err))
		os.Exit(1)
	}

	publisher := event.NewKafkaPublisher(cfg.KafkaBrokers, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("close event publisher", slog.Any("error", err))
		}
	}()

	addressRepo := addrrepo.NewPostgres(dbpool, log)
	customerRepo := customerrepo.NewPostgres(dbpool, log)
	regions := region.NewCached(region.NewPostgres(dbpool), rdb, cfg.RegionCacheTTL, log)

	opts := []addresssvc.Option{addresssvc.WithEvents(publisher), addresssvc.WithLogger(log)}
	if cfg.CustomerAggregateMode() {
		opts = append(opts, addresssvc.WithCustomerRepository(customerRepo))
	}
	addressService := addresssvc.New(addressRepo, regions, opts...)
	customerService := customersvc.New(customerRepo, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv, err := httpserver.New(cfg.HTTPAddr, log, httpserver.Deps{
		Sessions:    session.NewStore(rdb, cfg.SessionTTL),
		Cookie:      httpserver.CookieConfig{Name: cfg.SessionCookieName, Secure: cfg.SessionCookieSecure},
		AddressSvc:  addressService,
		CustomerSvc: customerService,
		ReadyChecks: map[string]httpserver.Pinger{
			"postgres": dbpool,
			"redis":    redisPinger{client: rdb},
		},
		CORSOrigins: cfg.CORSAllowedOrigins,
		Registry:    reg,
	})
	if err != nil {
		log.Error("init server", slog.Any("error", err))
		os.Exit(1)
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting http server",
			slog.String("addr", cfg.HTTPAddr),
			slog.String("address_save_mode", cfg.AddressSaveMode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.Info("shutting down", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server error", slog.Any("error", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", slog.Any("error", err))
	} else {
		log.Info("server stopped")
	}
}
