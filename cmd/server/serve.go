package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/atlekbai/tourney/internal/catalog"
	"github.com/atlekbai/tourney/internal/config"
	"github.com/atlekbai/tourney/internal/db"
	"github.com/atlekbai/tourney/internal/handler"
	"github.com/atlekbai/tourney/internal/logger"
	"github.com/atlekbai/tourney/internal/metrics"
	"github.com/atlekbai/tourney/internal/middleware"
	"github.com/atlekbai/tourney/internal/query"
	"github.com/atlekbai/tourney/internal/schema"
	"github.com/atlekbai/tourney/internal/server"
	"github.com/atlekbai/tourney/internal/service"
	"github.com/atlekbai/tourney/internal/store"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and Connect API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.Init(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	registry, err := catalog.New()
	if err != nil {
		return err
	}
	log.Info("entity catalog loaded", "entities", registry.Names())

	backend, closeDB, err := openBackend(ctx, cfg, registry, log)
	if err != nil {
		return err
	}
	defer closeDB()

	assembler := query.NewAssembler(
		query.WithLogger(log),
		query.WithObserver(metrics.QueryObserver{}),
	)
	st := store.New(backend, cfg.QueryTimeout, log)

	router := mux.NewRouter()
	router.Use(middleware.Recovery(log), middleware.Logging(log))
	router.Handle("/metrics", promhttp.Handler())
	handler.New(registry, assembler, st).Register(router)

	interceptors := []connect.Interceptor{
		server.LoggingInterceptor(log),
	}
	services := []server.ConnectService{
		service.NewQueryService(registry, assembler, st),
	}
	for _, path := range server.Mount(router, services, interceptors...) {
		log.Info("connect service mounted", "path", path)
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"*"},
		}).Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("listening", "addr", cfg.Addr())
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// openBackend connects to the configured engine. Postgres descriptors are
// checked against the live schema before serving.
func openBackend(ctx context.Context, cfg *config.Config, registry *query.Registry, log *slog.Logger) (store.Backend, func(), error) {
	if cfg.DatabaseDriver == "sqlite" {
		sqlDB, err := store.OpenSQLite(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store.NewSQLBackend(sqlDB), func() { closeSQL(sqlDB, log) }, nil
	}

	if cfg.Migrate {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		log.Info("migrations applied")
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := schema.Verify(ctx, pool, registry.Tables(), registry.ColumnRefs()...); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store.NewPgBackend(pool), pool.Close, nil
}

func closeSQL(sqlDB *sql.DB, log *slog.Logger) {
	if err := sqlDB.Close(); err != nil {
		log.Error("close database", "error", err)
	}
}
