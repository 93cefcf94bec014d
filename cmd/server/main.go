package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/y1ran/journal-dashboard/internal/clients/journal"
	"github.com/y1ran/journal-dashboard/internal/config"
	"github.com/y1ran/journal-dashboard/internal/database"
	"github.com/y1ran/journal-dashboard/internal/events"
	"github.com/y1ran/journal-dashboard/internal/modules/balance"
	balancejobs "github.com/y1ran/journal-dashboard/internal/modules/balance/jobs"
	"github.com/y1ran/journal-dashboard/internal/modules/charts"
	"github.com/y1ran/journal-dashboard/internal/modules/history"
	"github.com/y1ran/journal-dashboard/internal/modules/portfolio"
	"github.com/y1ran/journal-dashboard/internal/modules/records"
	"github.com/y1ran/journal-dashboard/internal/scheduler"
	"github.com/y1ran/journal-dashboard/internal/server"
	"github.com/y1ran/journal-dashboard/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting journal dashboard")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	kv := database.NewKVStore(db.Conn(), log)
	eventManager := events.NewManager(log)

	// Journal backend collaborator
	apiClient := journal.NewClient(cfg.JournalAPIURL, cfg.JournalAPIToken, log)

	// Balance polling
	balanceStore, err := balance.NewStore(kv, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize balance store")
	}
	balanceService := balance.NewService(balanceStore, apiClient, eventManager, log)

	// Asset history and portfolio aggregation
	tracker, err := history.NewTracker(kv, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history tracker")
	}
	portfolioService := portfolio.NewService(tracker, log)
	balanceStore.OnBalanceUpdate(portfolioService.HandleBalanceUpdate)

	// Charts
	seriesBuilder := charts.NewSeriesBuilder(tracker)

	// Trade records
	recordStore, err := records.NewStore(apiClient, kv, eventManager, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize record store")
	}

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	pollJob := balancejobs.NewPollJob(balanceService, log)
	if err := sched.AddJob(cfg.PollSpec, pollJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register balance poll job")
	}

	// Run one poll cycle up front so the dashboard has data on first paint.
	go func() {
		if err := sched.RunNow(pollJob); err != nil {
			log.Error().Err(err).Msg("Initial balance poll failed")
		}
	}()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		DevMode:   cfg.DevMode,
		Portfolio: portfolio.NewHandler(portfolioService, cfg.TWDRate, log),
		Charts:    charts.NewHandler(seriesBuilder, portfolioService, log),
		Balance:   balance.NewHandler(balanceStore, balanceService, log),
		Records:   records.NewHandler(recordStore, log),
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
