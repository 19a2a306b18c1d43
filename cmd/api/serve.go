package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/petclinic/records/internal/config"
	"github.com/petclinic/records/internal/handler"
	"github.com/petclinic/records/internal/middleware"
	"github.com/petclinic/records/internal/repo"
	"github.com/petclinic/records/internal/service"
	"github.com/petclinic/records/migrations"
)

const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	var migrate bool
	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("migrate") {
				cfg.AutoMigrate = migrate
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
	c.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving (overrides AUTO_MIGRATE)")
	return c
}

// serve runs the API until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()
	logger.Info("database connection established", "driver", cfg.DatabaseDriver)

	if cfg.AutoMigrate {
		p, err := migrations.NewProvider(cfg.DatabaseDriver, st.sqlDB)
		if err != nil {
			return err
		}
		results, err := p.Up(ctx)
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("migrations applied", "count", len(results))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(st.collectors...)

	router, err := newRouter(cfg, logger, reg, st.holders)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newRouter assembles the middleware chain, the metrics endpoint and the API
// routes around holders. Metrics are registered on reg.
func newRouter(cfg config.Config, logger *slog.Logger, reg *prometheus.Registry, holders repo.HolderRepo) (http.Handler, error) {
	metrics, err := middleware.NewMetrics(reg)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(metrics.Handler)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := handler.NewServer(service.NewHolderService(holders, nil), service.NewExportService(holders), logger)
	srv.Register(r)
	return r, nil
}
