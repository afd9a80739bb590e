package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fmuoria/resume-shortlister/internal/api"
	"github.com/fmuoria/resume-shortlister/internal/config"
	"github.com/fmuoria/resume-shortlister/internal/ingestion"
	"github.com/fmuoria/resume-shortlister/internal/logger"
	"github.com/fmuoria/resume-shortlister/internal/screening"
	"github.com/fmuoria/resume-shortlister/internal/shortlist"
	"github.com/fmuoria/resume-shortlister/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Setup(slog.LevelInfo)
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Setup(slog.LevelInfo)
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	logger.Setup(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		kv       store.KV
		history  store.CriteriaHistory
		checkers []store.Checker
	)

	if cfg.RedisAddr != "" {
		client, err := store.NewRedisClient(ctx, store.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			slog.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()

		redisKV := store.NewRedisKV(client, "shortlister:")
		kv = redisKV
		checkers = append(checkers, redisKV)
		slog.Info("Using Redis session store", "addr", cfg.RedisAddr)
	} else {
		kv = store.NewMemoryKV()
		slog.Info("Using in-memory session store")
	}

	if cfg.DatabaseURL != "" {
		pool, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("Failed to connect to Postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pgHistory, err := store.NewPostgresHistory(ctx, pool)
		if err != nil {
			slog.Error("Failed to prepare criteria history", "error", err)
			os.Exit(1)
		}
		history = pgHistory
		checkers = append(checkers, pgHistory)
	} else {
		history = store.NewKVHistory(kv)
	}

	service := screening.NewService(
		shortlist.NewEngine(cfg.Policy()),
		kv,
		history,
		ingestion.NewFileHandler(cfg.UploadsDir),
		time.Duration(cfg.SessionTTLMinutes)*time.Minute,
	)
	server := api.NewServer(service, cfg.MaxUploadMB<<20, checkers...)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting Resume Shortlister",
		"port", cfg.Port,
		"uploads_dir", cfg.UploadsDir,
		"skill_match_threshold", cfg.SkillMatchThreshold,
	)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}
