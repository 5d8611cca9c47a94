package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sparq-System/Stock-Manager-sub001/internal/api"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/config"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/database"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/logging"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/repository"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/scheduler"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/service"
	"github.com/Sparq-System/Stock-Manager-sub001/internal/version"
	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New("info", "console")
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to open database")
	}
	defer db.Close()

	applied, err := database.Migrate(context.Background(), db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	logger.Info().
		Str("path", cfg.Database.Path).
		Ints64("migrationsApplied", applied).
		Msg("connected to database")

	server, sched, err := newServer(cfg, db, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}
	if sched != nil {
		sched.Start()
	}

	// Start server in a goroutine
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Str("version", version.Version).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sched != nil {
		sched.Stop(ctx)
	}

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	logger.Info().Msg("server exited")
}

// newServer wires repositories, services and the router over db. The returned
// scheduler is nil when no NAV snapshot schedule is configured and is not started.
func newServer(cfg *config.Config, db *sql.DB, logger zerolog.Logger) (*http.Server, *scheduler.Scheduler, error) {
	// Create repositories
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	valueRepo := repository.NewValueRepository(db)
	totalsRepo := repository.NewTotalsRepository(db)
	navRepo := repository.NewNAVRepository(db)

	// Create services
	valueService := service.NewValueService(db, valueRepo, logger)
	totalsService := service.NewTotalsService(totalsRepo, logger)
	navService := service.NewNAVService(db, navRepo, valueRepo, totalsRepo, logger)
	accountService := service.NewAccountService(
		db,
		accountRepo,
		transactionRepo,
		valueService,
		navService,
		totalsService,
		logger,
	)
	ledgerService := service.NewLedgerService(
		db,
		holdingRepo,
		accountRepo,
		accountService,
		valueService,
		navService,
		totalsService,
		cfg.Ledger.SellRetries,
		logger,
	)
	transactionService := service.NewTransactionService(transactionRepo, accountRepo)
	fundService := service.NewFundService(valueService, navService, totalsService)
	systemService := service.NewSystemService(db, cfg.Ledger.NAVSnapshotSchedule)

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		Account:     accountService,
		Ledger:      ledgerService,
		Transaction: transactionService,
		Fund:        fundService,
		Value:       valueService,
		NAV:         navService,
		Totals:      totalsService,
	}, cfg, logger)

	// Optional NAV snapshot
	var sched *scheduler.Scheduler
	if cfg.Ledger.NAVSnapshotSchedule != "" {
		sched = scheduler.New(logger)
		if err := sched.ScheduleNAVSnapshot(cfg.Ledger.NAVSnapshotSchedule, navService); err != nil {
			return nil, nil, fmt.Errorf("failed to schedule nav snapshot: %w", err)
		}
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server, sched, nil
}
