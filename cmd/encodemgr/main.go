// Command encodemgr runs the Encode Manager as a long-lived daemon: it
// loads configuration, wires the recording-metadata store, the process
// supervisor, and the event broadcaster, then serves Enqueue/Cancel
// through the Manager until it receives SIGINT or SIGTERM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"encodemgr/config"
	"encodemgr/events"
	"encodemgr/ffprobe"
	"encodemgr/logging"
	"encodemgr/manager"
	"encodemgr/process"
	"encodemgr/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if cfg.DryRun {
		cfg.PrintConfig()
		fmt.Println("\nconfiguration is valid; no manager started.")
		return
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewSlogLogger(level)

	recordedStore, videoFileStore, videoUtil, closeStore, err := buildStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "store initialization error: %v\n", err)
		os.Exit(1)
	}
	if closeStore != nil {
		defer closeStore()
	}

	broadcaster := events.NewBroadcaster(logger)

	m := manager.New(cfg, manager.Deps{
		RecordedStore:  recordedStore,
		VideoFileStore: videoFileStore,
		VideoUtil:      videoUtil,
		ProcessManager: process.NewExecManager(),
		Emitter:        broadcaster,
		Logger:         logger,
		Verifier:       ffprobe.DurationVerifier{},
	})
	m.Start()
	defer m.Close()

	logger.Info("encodemgr started", "concurrentEncodeNum", cfg.ConcurrentEncodeNum)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
	}
}

// buildStore wires the RecordedStore/VideoFileStore/VideoUtil trio from
// configuration: SQLite-backed when RecordedDB is set, otherwise an
// in-memory store seeded with nothing (fine for a fresh --dry-run-free
// daemon that will be seeded by whatever admits Job Requests).
func buildStore(cfg *config.Config) (store.RecordedStore, store.VideoFileStore, store.VideoUtil, func() error, error) {
	if cfg.RecordedDB == "" {
		mem := store.NewMemoryStore(cfg.ParentDirs)
		return mem, mem.AsVideoFileStore(), mem.AsVideoUtil(), nil, nil
	}

	sqliteStore, err := store.NewSQLiteStore(cfg.RecordedDB)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("open recorded db: %w", err)
	}
	sqliteStore.WithParentDirs(cfg.ParentDirs)
	return sqliteStore, sqliteStore.AsVideoFileStore(), sqliteStore.AsVideoUtil(), sqliteStore.Close, nil
}
