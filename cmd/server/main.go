package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iradwatkins/steppers-inventory/internal/adapter/handler"
	"github.com/iradwatkins/steppers-inventory/internal/adapter/storage"
	"github.com/iradwatkins/steppers-inventory/internal/clock"
	"github.com/iradwatkins/steppers-inventory/internal/config"
	"github.com/iradwatkins/steppers-inventory/internal/core/domain"
	"github.com/iradwatkins/steppers-inventory/internal/core/service"
	"github.com/iradwatkins/steppers-inventory/internal/port"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().
		Timestamp().
		Str("app", cfg.AppName).
		Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL: durable sold/available baseline
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("open mysql")
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping mysql")
	}
	logger.Info().Msg("connected to mysql")

	// Redis: availability projection for frontend reads
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	logger.Info().Msg("connected to redis")

	var store port.InventoryStore = storage.NewMySQLStore(db)
	var cache port.AvailabilityCache = storage.NewRedisCache(rdb)

	notifier := service.NewNotifier(logger)
	inventory := service.NewInventoryService(store, notifier, clock.NewSystem(), logger,
		service.WithChannelTTLs(service.ChannelTTLs{
			Online:    cfg.OnlineHoldTTL,
			Cash:      cfg.CashHoldTTL,
			BoxOffice: cfg.BoxOfficeHoldTTL,
		}),
		service.WithThresholds(domain.StatusThresholds{
			VeryLow: cfg.VeryLowStockThreshold,
			Low:     cfg.LowStockThreshold,
		}),
		service.WithLowInventoryThreshold(cfg.LowInventoryThreshold),
	)

	unsubscribe := notifier.Subscribe(service.NewProjectionSubscriber(cache, logger))
	defer unsubscribe()

	sweeper := service.NewSweeper(inventory, clock.NewSystem(), cfg.SweepInterval, logger)
	go sweeper.Run(ctx)
	logger.Info().Dur("interval", cfg.SweepInterval).Msg("hold sweeper started")

	httpHandler := handler.NewHTTPHandler(inventory)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", httpHandler.HealthCheck)
	mux.HandleFunc("/api/availability", httpHandler.CheckAvailability)
	mux.HandleFunc("/api/holds", httpHandler.CreateHold)
	mux.HandleFunc("/api/holds/complete", httpHandler.CompletePurchase)
	mux.HandleFunc("/api/holds/confirm", httpHandler.ConfirmHold)
	mux.HandleFunc("/api/holds/release", httpHandler.Release)
	mux.HandleFunc("/api/inventory", httpHandler.GetInventory)
	mux.HandleFunc("/api/summary", httpHandler.EventSummary)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: handler.RequestLogger(mux, logger),
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	cancel() // stops the sweeper

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}

	rdb.Close()
	db.Close()
	logger.Info().Msg("stopped")
}
