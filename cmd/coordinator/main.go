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

	"github.com/joho/godotenv"

	"github.com/example/meeting-coordinator/internal/application"
	"github.com/example/meeting-coordinator/internal/calendar"
	"github.com/example/meeting-coordinator/internal/config"
	"github.com/example/meeting-coordinator/internal/extract"
	httptransport "github.com/example/meeting-coordinator/internal/http"
	"github.com/example/meeting-coordinator/internal/llm"
	"github.com/example/meeting-coordinator/internal/persistence/sqlite"
	"github.com/example/meeting-coordinator/internal/schedule"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// A missing .env file is fine; the environment wins either way.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env file", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	cache, err := llm.NewResponseCache(cfg.CacheCapacity)
	if err != nil {
		logger.Error("failed to create response cache", "error", err)
		os.Exit(1)
	}
	llmClient := llm.NewClient(llm.Config{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		MaxTokens:   int64(cfg.LLMMaxTokens),
		Temperature: cfg.LLMTemperature,
		TopP:        cfg.LLMTopP,
		Timeout:     cfg.LLMTimeout,
	}, cache, logger)

	extractor := extract.NewExtractorWithLogger(llmClient, extract.Config{
		DefaultDurationMinutes: cfg.DefaultDurationMinutes,
		DefaultDomain:          cfg.DefaultDomain,
	}, logger)

	// The service stays up without calendar credentials; every participant is
	// then treated as unconstrained and named in the decision diagnostics.
	var provider calendar.Provider
	if googleProvider, err := calendar.NewGoogleProvider(calendar.GoogleConfig{
		ClientID:        cfg.GoogleClientID,
		ClientSecret:    cfg.GoogleClientSecret,
		CredentialsFile: cfg.GoogleCredentialsFile,
		TokensDir:       cfg.CalendarTokensDir,
	}, logger); err != nil {
		logger.Warn("calendar provider unavailable", "error", err)
	} else {
		provider = googleProvider
	}
	fetcher := calendar.NewFetcherWithLogger(provider, cfg.PerFetchTimeout, logger)

	decisionRepo := sqlite.NewDecisionRepository(pool)

	coordinator := application.NewCoordinatorWithLogger(
		extractor,
		fetcher,
		decisionRepo,
		application.CoordinatorConfig{
			OverallDeadline:  cfg.OverallDeadline,
			ExtractionBudget: cfg.ExtractionBudget,
			FetchBudget:      cfg.FetchBudget,
			LookaheadDays:    cfg.LookaheadDays,
			WorkingHours: schedule.WorkingHours{
				StartHour: cfg.BusinessHoursStart,
				EndHour:   cfg.BusinessHoursEnd,
				Location:  time.UTC,
			},
		},
		time.Now,
		logger,
	)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Schedule:   httptransport.NewScheduleHandler(coordinator, logger),
		Decisions:  httptransport.NewDecisionHandler(decisionRepo, logger),
		Health:     httptransport.NewHealthHandler(pool, logger),
		Middleware: []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
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

	logger.Info("coordinator API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
