// Command encodemgrtop runs the Encode Manager together with a live
// terminal dashboard (tui.Run): an operator-facing alternative to
// encodemgr for interactive sessions, since the manager exposes no
// network RPC for a separate process to attach to.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"encodemgr/config"
	"encodemgr/events"
	"encodemgr/ffprobe"
	"encodemgr/logging"
	"encodemgr/manager"
	"encodemgr/process"
	"encodemgr/store"
	"encodemgr/tui"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if cfg.DryRun {
		cfg.PrintConfig()
		return
	}

	level := slog.LevelWarn // the dashboard owns the terminal; keep slog quiet by default
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

	if err := tui.Run(m, broadcaster); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard error: %v\n", err)
		os.Exit(1)
	}
}

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
