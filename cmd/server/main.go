package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docdiff/internal/api"
	"github.com/dgallion1/docdiff/internal/backend"
	"github.com/dgallion1/docdiff/internal/config"
	"github.com/dgallion1/docdiff/internal/pipeline"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	st, err := backend.OpenStore(cfg)
	if err != nil {
		log.Error("open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	cmp, err := backend.NewComparator(cfg)
	if err != nil {
		log.Error("create comparator", "provider", cfg.CompareProvider, "error", err)
		os.Exit(1)
	}

	// Initialize pipeline.
	segments := pipeline.NewSegmentComparator(cmp, log, cfg.MaxConcurrentCompare)
	orch := pipeline.NewOrchestrator(cfg, segments, st, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, cmp.Stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		cmp.Close()
		if err := st.Close(); err != nil {
			log.Error("close store", "error", err)
		}
	}()

	log.Info("starting docdiff",
		"port", cfg.Port,
		"store", cfg.StoreBackend,
		"provider", cfg.CompareProvider,
		"model", cmp.Model(),
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
