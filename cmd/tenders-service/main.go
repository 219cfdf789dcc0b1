package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nurpe/oil-tenders/internal/auth"
	"github.com/nurpe/oil-tenders/internal/config"
	"github.com/nurpe/oil-tenders/internal/db"
	"github.com/nurpe/oil-tenders/internal/excel"
	httphandler "github.com/nurpe/oil-tenders/internal/http"
	"github.com/nurpe/oil-tenders/internal/http/middleware"
	"github.com/nurpe/oil-tenders/internal/logger"
	"github.com/nurpe/oil-tenders/internal/pdf"
	"github.com/nurpe/oil-tenders/internal/repository"
	"github.com/nurpe/oil-tenders/internal/service"
	"github.com/nurpe/oil-tenders/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := source.NewClient(source.Config{
		BaseURL:         cfg.Offers.APIBase,
		DesiredTotal:    cfg.Offers.DesiredTotal,
		PageSize:        cfg.Offers.PageSize,
		Timeout:         cfg.Offers.Timeout,
		RateLimitPerSec: cfg.Offers.RateLimitPerSec,
		MaxRetries:      cfg.Offers.MaxRetries,
	})
	snapshot := source.NewSnapshot(client, cfg.Offers.DesiredTotal)

	loadCtx, cancel := context.WithTimeout(ctx, 2*cfg.Offers.Timeout)
	if count, err := snapshot.Refresh(loadCtx); err != nil {
		log.Warn().Err(err).Msg("initial offer fetch failed, will retry on first request")
	} else {
		log.Info().Int("offers", count).Msg("offers loaded")
	}
	cancel()

	go snapshot.Run(ctx, cfg.Offers.RefreshInterval, func(err error) {
		log.Warn().Err(err).Msg("scheduled offer refresh failed")
	})

	filterRepo := repository.NewFilterRepository(database)
	exportRepo := repository.NewExportRepository(database)
	dashboardService := service.NewDashboardService(
		snapshot,
		filterRepo,
		exportRepo,
		excel.NewGenerator(),
		pdf.NewGenerator(),
		cfg.Dashboard.SourceUnit,
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(dashboardService, client, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.CORSAllowedOrigins, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().Str("addr", addr).Msg("starting tenders service")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
