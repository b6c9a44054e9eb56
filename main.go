package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	database "github.com/viatorai/viator-assistant/app/db"
	appLogger "github.com/viatorai/viator-assistant/app/logger"
	"github.com/viatorai/viator-assistant/app/observability/metrics"
	"github.com/viatorai/viator-assistant/app/tracer"
	"github.com/viatorai/viator-assistant/config"
	"github.com/viatorai/viator-assistant/internal/api/chat"
	generativeAI "github.com/viatorai/viator-assistant/internal/api/generative_ai"
	"github.com/viatorai/viator-assistant/internal/api/geocoding"
	"github.com/viatorai/viator-assistant/internal/api/news"
	"github.com/viatorai/viator-assistant/internal/api/places"
	"github.com/viatorai/viator-assistant/internal/api/spiral"
	"github.com/viatorai/viator-assistant/internal/api/weather"
	"github.com/viatorai/viator-assistant/internal/kvstore"
	approuter "github.com/viatorai/viator-assistant/internal/router"
)

const upstreamTimeout = 15 * time.Second

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracer.InitTracingAndMetrics()
	metrics.InitAppMetrics()

	// --- Key/value store ---
	// Postgres when configured, in-process memory otherwise.
	var store kvstore.Store
	if cfg.Repositories.Postgres.Host != "" {
		dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
		if err != nil {
			logger.Error("Failed to generate database config", slog.Any("error", err))
			os.Exit(1)
		}
		if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
			logger.Error("Failed to run database migrations", slog.Any("error", err))
			os.Exit(1)
		}
		pool, err := database.Init(dbConfig.ConnectionURL, logger)
		if err != nil {
			logger.Error("Failed to initialize database pool", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		if !database.WaitForDB(ctx, pool, logger) {
			logger.Error("Database not ready after waiting, exiting.")
			os.Exit(1)
		}
		store = kvstore.NewPostgresStore(pool)
	} else {
		logger.Info("No Postgres host configured, using in-memory key/value store")
		store = kvstore.NewMemoryStore()
	}

	// --- Dependency injection ---
	aiClient, err := generativeAI.NewAIClient(ctx, cfg.Upstream.Gemini.Model)
	if err != nil {
		logger.Error("Failed to initialize generative AI client", slog.Any("error", err))
		os.Exit(1)
	}

	geocodingService := geocoding.NewService(cfg.Upstream.OpenWeather.GeoBaseURL, cfg.Upstream.OpenWeather.APIKey, upstreamTimeout, logger)
	weatherService := weather.NewService(cfg.Upstream.OpenWeather.BaseURL, cfg.Upstream.OpenWeather.APIKey, upstreamTimeout, logger)
	placesService := places.NewService(cfg.Upstream.Overpass.BaseURL, upstreamTimeout, logger)
	newsService := news.NewService(cfg.Upstream.News.BaseURL, cfg.Upstream.News.APIKey, cfg.Upstream.News.DailyLimit,
		cfg.Cache.NewsTTL, upstreamTimeout, store, logger)
	spiralService := spiral.NewService(weatherService, geocodingService, store,
		cfg.Spiral.RadiusKm, cfg.Spiral.NumPoints, cfg.Spiral.Concurrency, cfg.Cache.SpiralTTL, logger)
	chatService := chat.NewService(aiClient, geocodingService, weatherService, placesService, newsService, spiralService,
		cfg.Spiral.RadiusKm, cfg.Upstream.News.PageSize, logger)

	routerConfig := &approuter.Config{
		ChatHandler:      chat.NewHandler(chatService, logger),
		GeocodingHandler: geocoding.NewHandler(geocodingService, logger),
		WeatherHandler:   weather.NewHandler(weatherService, logger),
		NewsHandler:      news.NewHandler(newsService, cfg.Upstream.News.PageSize, logger),
		PlacesHandler:    places.NewHandler(placesService, logger),
		SpiralHandler:    spiral.NewHandler(spiralService, logger),
	}
	mainRouter := approuter.SetupRouter(routerConfig)

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(cfg.Server.Timeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		jsonOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
