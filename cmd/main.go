package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"kilofresh-admin/internal/api"
	"kilofresh-admin/internal/backend"
	"kilofresh-admin/internal/config"
	"kilofresh-admin/internal/console"
)

const serviceName = "kilofresh-admin"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, relying on system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if cfg.AppEnv == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	logger := log.With().Str("service", serviceName).Logger()
	logger.Info().Str("env", cfg.AppEnv).Str("backend", cfg.Backend.BaseURL).Msg("starting console")

	// Backend client and screens.
	client := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger)
	notifier := console.NewNotifier()
	categories := console.NewCategoryScreen(client, notifier, cfg.Upload.MaxFileSize, logger)
	products := console.NewProductScreen(client, categories.Store(), notifier, cfg.Upload.MaxFileSize, logger)
	orders := console.NewOrderScreen(client, notifier, logger)

	// Warm the snapshots; failures are non-fatal, the list views fall back
	// to their loading state and retry on first request.
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
	for name, load := range map[string]func(context.Context) error{
		"categories": categories.Load,
		"products":   products.Load,
		"orders":     orders.Load,
	} {
		if err := load(warmCtx); err != nil {
			logger.Warn().Err(err).Str("resource", name).Msg("initial load failed")
		}
	}
	cancelWarm()

	// HTTP server.
	handler := api.NewHTTPHandler(categories, products, orders, notifier, cfg.Upload.MaxRequestSize, logger)
	notices := api.NewNoticeStream(notifier, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	registerHealthCheck(router)
	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		handler.RegisterRoutes(r)
	})
	// The notice stream is long-lived and must stay outside the request
	// timeout.
	router.Get("/api/v1/notices/ws", notices.Handle)

	server := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      router,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		logger.Info().Str("port", cfg.HttpServer.Port).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	waitForShutdown(logger, server)
}

func registerHealthCheck(router *chi.Mux) {
	router.Get("/api/v1/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":      "healthy",
			"serviceName": serviceName,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
	})
}

func waitForShutdown(logger zerolog.Logger, server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info().Str("signal", sig.String()).Msg("starting graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http server graceful shutdown failed")
	} else {
		logger.Info().Msg("http server gracefully shut down")
	}
}
