package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/config"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/infra"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/repository"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/router"
	"github.com/fatimanadieshdaburgos-ai/deliciasjurasicas-sub000/internal/worker"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Start goroutine worker pool for async tasks (alert emails, session
	// reports). Worker handlers are wired here (composition root) so that the
	// pool has full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	cashRepo := repository.NewCashRepository(db)
	productRepo := repository.NewProductRepository(db)

	workerHandlers := &worker.Handlers{
		Alert:  worker.NewAlertWorker(mailer, cfg.AlertEmail),
		Report: worker.NewReportWorker(cashRepo, mailer, cfg.AlertEmail, cfg.ReportStoragePath),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)

	// Periodic sweep catches products that drifted below minimum outside the
	// request path (seeds, direct SQL fixes).
	worker.StartLowStockCron(ctx, worker.LowStockCronConfig{
		ProductRepo: productRepo,
		RDB:         rdb,
		Dispatcher:  dispatcher,
		Interval:    time.Duration(cfg.LowStockScanMinutes) * time.Minute,
	})

	r := router.New(cfg, db, rdb, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("bakery backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
