package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	flag "github.com/spf13/pflag"

	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/calculator"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/config"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/logger"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/metrics"
	"github.com/ExhibitionDefi/exhibition-defi-sub002/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "launchpad-engine: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A local .env fills in variables the environment leaves unset.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.BindFlags(flag.CommandLine)
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout, cfg.LogFormat, level)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Initialize store ---
	var st store.Store
	var cleanup []func()
	defer func() {
		for _, fn := range cleanup {
			fn()
		}
	}()

	if cfg.DatabaseURL != "" {
		if cfg.Migrate {
			if err := store.Migrate(log, cfg.DatabaseURL); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		cleanup = append(cleanup, pool.Close)
		st = store.NewPostgresStore(pool)
		log.Info("connected to PostgreSQL")

		// Wrap with Redis read-through cache if configured.
		if cfg.RedisURL != "" {
			opt, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("invalid REDIS_URL: %w", err)
			}
			rdb := redis.NewClient(opt)
			cleanup = append(cleanup, func() { rdb.Close() })
			st = store.NewCachedStore(st, rdb, cfg.CacheTTL)
			log.Info("Redis cache enabled", "ttl", cfg.CacheTTL)
		}
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store (data will not persist)")
		st = store.NewMemoryStore()
	}

	// --- WebSocket hub ---
	wsHub := calculator.NewWSHub()
	go wsHub.Run(ctx)

	// --- Calculator service ---
	svc := calculator.NewService(st, cfg.PlatformFee(), cfg.SwapFees, wsHub)

	// --- HTTP router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	// CORS for the launch form frontend.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"launchpad-engine"}`))
	})

	// Prometheus metrics endpoint.
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// WebSocket endpoint for draft reports and contributions.
		r.Get("/ws", wsHub.HandleWS)

		// Stateless calculations.
		r.Post("/amounts/parse", svc.ParseAmount)
		r.Post("/amounts/format", svc.FormatAmount)
		r.Post("/amounts/renormalize", svc.Renormalize)
		r.Post("/percentages/parse", svc.ParsePercentage)
		r.Post("/allocations", svc.SplitAllocation)
		r.Post("/swaps/fees", svc.ComputeSwapFees)
		r.Post("/swaps/quote", svc.QuoteSwap)
		r.Post("/tokenomics/validate", svc.ValidateTokenomics)
		r.Post("/durations", svc.NormalizeDuration)

		// Sale drafts.
		r.Get("/drafts", svc.ListDrafts)
		r.Post("/drafts", svc.CreateDraft)
		r.Route("/drafts/{draftID}", func(r chi.Router) {
			r.Get("/", svc.GetDraft)
			r.Put("/", svc.UpdateDraft)
			r.Get("/report", svc.GetDraftReport)
			r.Get("/launch-args", svc.GetDraftArgs)
			r.Get("/allocation", svc.GetDraftAllocation)

			// Contribution ledger.
			r.Get("/contributions", svc.ListContributions)
			r.Post("/contributions", svc.RecordContribution)
			r.Post("/contributions/check", svc.CheckContribution)
		})
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("launchpad-engine listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown.
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Info("shutting down launchpad-engine...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "err", err)
	}
	log.Info("launchpad-engine stopped")
	return nil
}
