// main runs the Applicants admin view.
//
// STARTUP SEQUENCE:
//  1. Load configuration and initialise the logger
//  2. Build the remote client for the students collaborator
//  3. Create the applicants store and load the collection once
//  4. Serve the page, its actions and /metrics
//  5. On SIGINT/SIGTERM close the store, then shut the server down
//
// RUNNING:
//
//	go run ./cmd/students-api --config=config/local.yaml   # collaborator
//	go run ./cmd/applicants --config=config/local.yaml     # admin view
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

	"github.com/aanand-mishra/applicants/internal/applicants"
	"github.com/aanand-mishra/applicants/internal/config"
	"github.com/aanand-mishra/applicants/internal/http/handlers/admin"
	"github.com/aanand-mishra/applicants/internal/http/middleware"
	"github.com/aanand-mishra/applicants/internal/logger"
	"github.com/aanand-mishra/applicants/internal/metrics"
	"github.com/aanand-mishra/applicants/internal/remote"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// ── 1. Config + Logger ────────────────────────────────────────────────
	cfg := config.MustLoad()
	log := logger.Setup(cfg.Env, os.Stdout)

	log.Info("starting applicants admin",
		slog.String("env", cfg.Env),
		slog.String("backend", cfg.Admin.BackendURL),
	)

	// ── 2. Remote Client ──────────────────────────────────────────────────
	client, err := remote.New(cfg.Admin.BackendURL,
		&http.Client{Timeout: cfg.Admin.RequestTimeout}, log)
	if err != nil {
		log.Error("failed to create remote client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// ── 3. Store ──────────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder, err := metrics.New(reg)
	if err != nil {
		log.Error("failed to register metrics", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store := applicants.NewStore(client, log, recorder)

	// A failed load leaves the collection empty; the store has reported it
	// and the page still serves.
	loadCtx, cancelLoad := context.WithTimeout(
		middleware.WithRequestID(context.Background(), uuid.NewString()),
		cfg.Admin.RequestTimeout)
	if err := store.Load(loadCtx); err == nil {
		log.Info("applicants loaded", slog.Int("count", len(store.Snapshot().Students)))
	}
	cancelLoad()

	// ── 4. Routes + Server ────────────────────────────────────────────────
	router := http.NewServeMux()
	admin.Register(router, store)
	router.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:    cfg.Admin.Addr,
		Handler: middleware.RequestID(router),

		ReadTimeout: 10 * time.Second,
		// Actions wait on the collaborator; leave room for one full call.
		WriteTimeout: cfg.Admin.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server started", slog.String("address", cfg.Admin.Addr))

		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 5. Shutdown ───────────────────────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// Results still in flight after this point are discarded.
	store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
