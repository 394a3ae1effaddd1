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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Simplici0/staffquote/internal/config"
	"github.com/Simplici0/staffquote/internal/db"
	"github.com/Simplici0/staffquote/internal/logger"
	"github.com/Simplici0/staffquote/internal/metrics"
	"github.com/Simplici0/staffquote/internal/migrations"
	"github.com/Simplici0/staffquote/internal/pricing"
	"github.com/Simplici0/staffquote/internal/proposals"
	"github.com/Simplici0/staffquote/internal/rules"
	"github.com/Simplici0/staffquote/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.Database.MigrateOnStart || cfg.IsDev() {
		if err := migrations.Up(ctx, database); err != nil {
			return err
		}
	}

	stats, err := seed.Run(ctx, database, pricing.DefaultRules())
	if err != nil {
		return fmt.Errorf("seed default rules: %w", err)
	}
	log.Info("rule seed complete", zap.Int("inserted", stats.Inserts), zap.Int("skipped", stats.Skipped))

	var repo rules.Repository = rules.NewStore(database)
	if cfg.Redis.Address != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable, rule cache will fall back to sqlite", zap.String("address", cfg.Redis.Address), zap.Error(err))
		}
		cancel()
		repo = rules.NewCache(repo, client, cfg.Redis.TTL, log.Named("rules"))
	}

	stored, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	for _, r := range stored {
		metrics.AddFunctions(r.Function)
	}

	engine := pricing.NewEngine(cfg.Pricing.Defaults(),
		pricing.WithHomeState(cfg.Pricing.HomeState),
		pricing.WithDefaultRuleID(cfg.Pricing.DefaultRuleID),
	)

	srv, err := newServer(database, engine, repo, proposals.NewStore(database), log)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", httpServer.Addr), zap.String("environment", cfg.App.Environment))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/proposals/preview", s.handlePreviewProposal)
		r.Post("/proposals", s.handleCreateProposal)
		r.Get("/proposals", s.handleListProposals)
		r.Get("/proposals/{id}", s.handleGetProposal)
		r.Get("/proposals/{id}/text", s.handleProposalText)
		r.Get("/rules", s.handleListRules)
		r.Put("/rules/{id}", s.handleUpsertRule)
		r.Delete("/rules/{id}", s.handleDeactivateRule)
	})

	return r
}

// requestLogger logs one line per request with its status and latency.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.log.Debug("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)))
	})
}
