package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/madplan/madsearch/internal/config"
	dbRedis "github.com/madplan/madsearch/internal/db/redis"
	"github.com/madplan/madsearch/internal/domain/entity"
	logpkg "github.com/madplan/madsearch/internal/logger"
	"github.com/madplan/madsearch/internal/metrics"
	catalogrepo "github.com/madplan/madsearch/internal/repository/catalog"
	recordrepo "github.com/madplan/madsearch/internal/repository/record"
	searchrepo "github.com/madplan/madsearch/internal/repository/search"
	chiTransport "github.com/madplan/madsearch/internal/transport/chi"
	healthuc "github.com/madplan/madsearch/internal/usecase/health"
	indexeruc "github.com/madplan/madsearch/internal/usecase/indexer"
	searchuc "github.com/madplan/madsearch/internal/usecase/search"
	"github.com/madplan/madsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting madsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterIndexingMetrics()

	// Create repositories (domain-native, no adapters)
	recordRepo := recordrepo.New(store)
	catalogRepo := catalogrepo.New(store, cfg.Index.EntityPrefix)
	searchRepo := searchrepo.New(store)

	// Create use case services
	indexerSvc := indexeruc.NewService(recordRepo, catalogRepo, logger, cfg.Index.OrphanGraceHrs)
	if err := indexerSvc.Setup(ctx); err != nil {
		logger.Fatal("Failed to create search index", zap.Error(err))
	}
	searchSvc := searchuc.NewService(searchRepo, logger)
	healthSvc := healthuc.New(store, store)

	// Change-event queue: one worker, per-kind handlers
	queue := indexeruc.NewQueue(cfg.Index.QueueSize, logger)
	queue.Register(entity.KindBoard, indexerSvc.HandleBoardChange)
	queue.Register(entity.KindList, indexerSvc.HandleListChange)
	queue.Register(entity.KindCard, indexerSvc.HandleCardChange)
	queue.Start(ctx)

	// Periodic rebuild + orphan sweep
	indexeruc.NewScheduler(indexerSvc, cfg.Index.RebuildIntervalHrs, logger).Start(ctx)

	// Create chi server
	pages := chiTransport.PageLimits{
		Default: cfg.Index.DefaultPageSize,
		Max:     cfg.Index.MaxPageSize,
	}
	server := chiTransport.NewServer(searchSvc, indexerSvc, queue, healthSvc, pages, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.RegisterRoutes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.NewContext(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
