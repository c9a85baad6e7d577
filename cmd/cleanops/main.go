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
	"time"

	"github.com/google/uuid"

	"github.com/example/cleanops/internal/application"
	"github.com/example/cleanops/internal/config"
	httptransport "github.com/example/cleanops/internal/http"
	"github.com/example/cleanops/internal/persistence/sqlite"
	"github.com/example/cleanops/internal/scantoken"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.Open(ctx, cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	idGenerator := uuid.NewString
	now := time.Now

	staffRepo := sqlite.NewStaffRepository(pool)
	sessionRepo := sqlite.NewSessionRepository(pool)
	locationRepo := sqlite.NewLocationRepository(pool)
	jobRepo := sqlite.NewJobRepository(pool)
	taskRepo := sqlite.NewTaskRepository(pool)
	availabilityRepo := sqlite.NewAvailabilityRepository(pool)

	signer := scantoken.NewSigner(cfg.ScanTokenSecret, cfg.ScanTokenTTL, now)

	authService := application.NewAuthService(staffRepo, sessionRepo, nil, idGenerator, now, cfg.SessionTTL, logger)
	staffService := application.NewStaffService(staffRepo, availabilityRepo, idGenerator, now, logger)
	locationService := application.NewLocationService(locationRepo, signer, idGenerator, now, logger)
	jobService := application.NewJobService(jobRepo, locationRepo, idGenerator, now, logger)
	taskService := application.NewTaskService(taskRepo, jobRepo, staffRepo, locationRepo, availabilityRepo, idGenerator, now, logger)
	reportService := application.NewReportService(taskService, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:     logger,
		Auth:       httptransport.NewAuthHandler(authService, logger),
		Staff:      httptransport.NewStaffHandler(staffService, logger),
		Locations:  httptransport.NewLocationHandler(locationService, logger),
		Jobs:       httptransport.NewJobHandler(jobService, logger),
		Tasks:      httptransport.NewTaskHandler(taskService, logger),
		Scan:       httptransport.NewScanHandler(locationService, authService, logger),
		Reports:    httptransport.NewReportHandler(reportService, logger),
		Sessions:   authService,
		Middleware: []httptransport.Middleware{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("cleanops API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
