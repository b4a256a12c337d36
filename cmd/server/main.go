package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"capela/internal/card"
	credhandler "capela/internal/credential/handler"
	credservice "capela/internal/credential/service"
	credstore "capela/internal/credential/store"
	eventhandler "capela/internal/event/handler"
	eventservice "capela/internal/event/service"
	eventstore "capela/internal/event/store"
	"capela/internal/export"
	jwttoken "capela/internal/jwt"
	"capela/internal/platform/config"
	"capela/internal/platform/httpserver"
	"capela/internal/platform/logger"
	"capela/internal/platform/metrics"
	"capela/internal/platform/middleware"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx := context.Background()
	m := metrics.New()

	var store credstore.Store
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err.Error())
			os.Exit(1)
		}
		defer pool.Close()

		pg := credstore.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Error("schema migration failed", "error", err.Error())
			os.Exit(1)
		}
		store = pg
		log.Info("using postgres credential store")
	} else {
		store = credstore.NewMemory()
		log.Warn("no postgres url configured, using in-memory credential store")
	}

	credentials, err := credservice.New(store, log, m)
	if err != nil {
		log.Error("credential service init failed", "error", err.Error())
		os.Exit(1)
	}
	events, err := eventservice.New(eventstore.NewMemory(), log)
	if err != nil {
		log.Error("event service init failed", "error", err.Error())
		os.Exit(1)
	}
	compositor, err := card.NewCompositor(card.NewDirLoader(cfg.TemplateDir), log, m)
	if err != nil {
		log.Error("card compositor init failed", "error", err.Error())
		os.Exit(1)
	}
	exporter, err := export.New(credentials, credentials, log, m)
	if err != nil {
		log.Error("export service init failed", "error", err.Error())
		os.Exit(1)
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "capela", "capela-api")
	validator := jwttoken.NewJWTServiceAdapter(jwtService)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, log))

		credHandler := credhandler.New(credentials, log)
		credHandler.Register(r)
		card.NewHandler(credentials, compositor, log).Register(r)
		eventhandler.New(events, log).Register(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(log))
			credHandler.RegisterAdmin(r)
			export.NewHandler(exporter, log).Register(r)
		})
	})

	srv := httpserver.New(cfg.Addr, r)

	go func() {
		log.Info("starting capela server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
	log.Info("server stopped")
}
