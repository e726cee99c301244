// Command worldsim runs the Hearthvale village simulation and serves it
// over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/talgya/hearthvale/internal/api"
	"github.com/talgya/hearthvale/internal/config"
	"github.com/talgya/hearthvale/internal/engine"
	"github.com/talgya/hearthvale/internal/persistence"
	"github.com/talgya/hearthvale/internal/world"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.Logging.NewLogger(os.Stdout))
	slog.Info("Hearthvale village simulation")

	tuning := engine.DefaultTuning()
	if cfg.Tuning != "" {
		if tuning, err = engine.LoadTuning(cfg.Tuning); err != nil {
			slog.Error("failed to load tuning", "error", err)
			os.Exit(1)
		}
		slog.Info("tuning loaded", "path", cfg.Tuning)
	}

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(cfg.Storage.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Storage.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Load or Generate World State ─────────────────────────────────
	w, err := loadWorld(ctx, cfg, db, tuning)
	if err != nil {
		slog.Error("failed to load world", "error", err)
		os.Exit(1)
	}

	// ── Engine ───────────────────────────────────────────────────────
	eng := engine.NewEngine(w, cfg.Engine.TickInterval)
	if err := eng.SetSpeed(cfg.Engine.Speed); err != nil {
		slog.Error("invalid speed", "error", err)
		os.Exit(1)
	}
	eng.SetPaused(cfg.Engine.Paused)

	srv := api.NewServer(eng, db, cfg.API.Port, cfg.API.AdminKey)
	srv.SnapshotDir = cfg.Storage.SnapshotDir

	var (
		saving  atomic.Bool
		daysRun int
	)
	eng.OnTick = srv.Hub().Publish
	eng.OnDay = func(w *engine.World) {
		engine.LogDailyReport(w)
		daysRun++
		if cfg.Engine.AutosaveDays <= 0 || daysRun%cfg.Engine.AutosaveDays != 0 {
			return
		}
		if !saving.CompareAndSwap(false, true) {
			slog.Warn("autosave skipped, previous save still running")
			return
		}
		snap := w.Snapshot()
		go func() {
			defer saving.Store(false)
			save(context.Background(), db, cfg.Storage.SnapshotDir, snap)
		}()
	}

	srv.Start(ctx)
	eng.Run(ctx)

	// ── Shutdown ─────────────────────────────────────────────────────
	for saving.Load() {
		time.Sleep(50 * time.Millisecond)
	}
	var snap *engine.Snapshot
	eng.View(func(w *engine.World) { snap = w.Snapshot() })
	save(context.Background(), db, cfg.Storage.SnapshotDir, snap)
	slog.Info("shutdown complete", "tick", snap.Ticks)
}

// loadWorld restores the database state, falling back to the newest
// snapshot file, then to a freshly seeded village.
func loadWorld(ctx context.Context, cfg *config.Config, db *persistence.DB, tuning engine.Tuning) (*engine.World, error) {
	snap, err := db.LoadWorldState(ctx)
	switch {
	case err == nil:
		slog.Info("found saved world state, loading...")
		return engine.Restore(snap, tuning)
	case !errors.Is(err, persistence.ErrNoWorldState):
		return nil, err
	}

	if cfg.Storage.SnapshotDir != "" {
		path, err := persistence.LatestSnapshot(cfg.Storage.SnapshotDir)
		if err != nil {
			return nil, err
		}
		if path != "" {
			slog.Info("restoring from snapshot file", "path", path)
			snap, err := persistence.ReadSnapshot(path)
			if err != nil {
				return nil, err
			}
			return engine.Restore(snap, tuning)
		}
	}

	slog.Info("no saved state found, seeding new village...")
	gen := world.DefaultGenConfig()
	gen.Size = cfg.World.GridSize
	gen.Seed = cfg.World.Seed
	seed := engine.DefaultSeedConfig()
	seed.Population = cfg.World.Population
	seed.Houses = cfg.World.Houses
	return engine.NewSeededWorld(gen, seed, tuning), nil
}

func save(ctx context.Context, db *persistence.DB, dir string, snap *engine.Snapshot) {
	if err := db.SaveWorldState(ctx, snap); err != nil {
		slog.Error("failed to save world state", "error", err)
	}
	if dir == "" {
		return
	}
	if _, err := persistence.WriteSnapshot(dir, snap, time.Now()); err != nil {
		slog.Error("failed to write snapshot file", "error", err)
	}
}
