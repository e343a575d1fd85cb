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

	"github.com/mudikgratis2025/detik-syndicator/app/api"
	"github.com/mudikgratis2025/detik-syndicator/app/caption"
	"github.com/mudikgratis2025/detik-syndicator/app/cfg"
	"github.com/mudikgratis2025/detik-syndicator/app/destinations"
	"github.com/mudikgratis2025/detik-syndicator/app/distributor"
	"github.com/mudikgratis2025/detik-syndicator/app/ledger"
	"github.com/mudikgratis2025/detik-syndicator/app/media"
	"github.com/mudikgratis2025/detik-syndicator/app/pipeline"
	"github.com/mudikgratis2025/detik-syndicator/app/publisher"
	"github.com/mudikgratis2025/detik-syndicator/app/source"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Detik Syndicator", "version", appCfg.Version)

	// Destinations must load at startup: running the pipeline with no valid
	// destination configuration is meaningless.
	registry := destinations.NewRegistry(appCfg.PagesPath)
	pages, err := registry.Load()
	if err != nil {
		slog.Error("Failed to load destinations configuration", "error", err)
		os.Exit(1)
	}
	for _, page := range pages {
		slog.Info("Loaded destination", "page_id", page.ID, "name", page.Name)
	}

	led := ledger.NewLedger(appCfg.LedgerPath)
	if err := led.Run(); err != nil {
		slog.Error("Failed to initialize ledger", "error", err)
		os.Exit(1)
	}
	slog.Info("Ledger loaded", "path", appCfg.LedgerPath, "entries", led.GetCount())

	httpClient := &http.Client{Timeout: 30 * time.Second}
	uploadClient := &http.Client{Timeout: 10 * time.Minute}

	var sourceAdapter source.Adapter
	switch appCfg.SourceKind {
	case "rss":
		sourceAdapter = source.NewRSSAdapter(httpClient, appCfg.SourceURL, appCfg.UserAgent)
	default:
		sourceAdapter = source.NewScraper(httpClient, appCfg.SourceURL, appCfg.UserAgent)
	}

	pub := publisher.NewClient(uploadClient, appCfg.UserAgent)
	dist := distributor.NewDistributor(registry, pub, appCfg.GetUploadDelay(), nil)

	controller := pipeline.NewController(
		sourceAdapter,
		media.NewAcquirer(appCfg.DownloadDir),
		media.NewTransformer(appCfg.DownloadDir),
		dist,
		led,
		caption.Default,
		pipeline.Options{
			PollInterval:   appCfg.GetPollInterval(),
			CooldownDelay:  appCfg.GetCooldownDelay(),
			ReelMaxSeconds: appCfg.ReelMaxSeconds,
			DownloadDir:    appCfg.DownloadDir,
		})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipelineDone := make(chan struct{})
	go func() {
		defer close(pipelineDone)
		controller.Run(ctx)
	}()

	apiHandler := api.NewHandler(led, appCfg.Version)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Detik Syndicator started", "poll_interval", appCfg.GetPollInterval().String(), "destinations", len(pages))

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", "error", err)
	}

	select {
	case <-pipelineDone:
		slog.Info("Pipeline stopped")
	case <-shutdownCtx.Done():
		slog.Warn("Pipeline did not stop before shutdown timeout")
	}

	slog.Info("Shutdown complete")
}
