package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/talgya/hearthvale/internal/engine"
	"github.com/talgya/hearthvale/internal/world"
)

func testSnapshot(t *testing.T) *engine.Snapshot {
	t.Helper()
	cfg := engine.DefaultSeedConfig()
	cfg.Population = 20
	cfg.Houses = 6
	cfg.Farms = 1
	cfg.Shops = 1
	w := engine.NewSeededWorld(world.SmallTestConfig(), cfg, engine.DefaultTuning())
	w.AdvanceN(24 * 8)
	return w.Snapshot()
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "world.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadEmptyDatabase(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if db.HasWorldState(ctx) {
		t.Error("fresh database reports saved state")
	}
	if _, err := db.LoadWorldState(ctx); !errors.Is(err, ErrNoWorldState) {
		t.Errorf("LoadWorldState = %v, want ErrNoWorldState", err)
	}
}

func TestSaveLoadWorldState(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	snap := testSnapshot(t)

	if err := db.SaveWorldState(ctx, snap); err != nil {
		t.Fatal(err)
	}
	if !db.HasWorldState(ctx) {
		t.Fatal("saved state not found")
	}
	got, err := db.LoadWorldState(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if got.Seed != snap.Seed || got.Ticks != snap.Ticks || got.Clock != snap.Clock {
		t.Errorf("meta = %d/%d/%v, want %d/%d/%v", got.Seed, got.Ticks, got.Clock, snap.Seed, snap.Ticks, snap.Clock)
	}
	if got.Treasury != snap.Treasury || got.Weather != snap.Weather || got.GridSize != snap.GridSize {
		t.Error("treasury, weather or grid size differ")
	}
	if !reflect.DeepEqual(got.People, snap.People) {
		t.Error("people differ after reload")
	}
	if !reflect.DeepEqual(got.Buildings, snap.Buildings) {
		t.Error("buildings differ after reload")
	}
	if !reflect.DeepEqual(got.Institutions, snap.Institutions) {
		t.Error("institutions differ after reload")
	}
	if !reflect.DeepEqual(got.Cells, snap.Cells) {
		t.Errorf("cells differ after reload (%d vs %d)", len(got.Cells), len(snap.Cells))
	}
	if len(got.Events) != len(snap.Events) {
		t.Fatalf("events = %d, want %d", len(got.Events), len(snap.Events))
	}
	for i := range got.Events {
		if got.Events[i].Description != snap.Events[i].Description || got.Events[i].Kind != snap.Events[i].Kind {
			t.Fatalf("event %d = %+v, want %+v", i, got.Events[i], snap.Events[i])
		}
	}

	w, err := engine.Restore(got, engine.DefaultTuning())
	if err != nil {
		t.Fatal(err)
	}
	if w.People().Len() != len(snap.People) {
		t.Error("restored world lost people")
	}
}

func TestSaveReplacesPreviousState(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	snap := testSnapshot(t)

	if err := db.SaveWorldState(ctx, snap); err != nil {
		t.Fatal(err)
	}
	smaller := *snap
	smaller.People = snap.People[:3]
	smaller.Ticks = snap.Ticks + 1
	if err := db.SaveWorldState(ctx, &smaller); err != nil {
		t.Fatal(err)
	}

	got, err := db.LoadWorldState(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.People) != 3 || got.Ticks != snap.Ticks+1 {
		t.Errorf("people/ticks = %d/%d, want 3/%d", len(got.People), got.Ticks, snap.Ticks+1)
	}
	if v, err := db.GetMeta(ctx, "ticks"); err != nil || v == "" {
		t.Errorf("GetMeta(ticks) = %q, %v", v, err)
	}
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	snap := testSnapshot(t)
	at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	path, err := WriteSnapshot(dir, snap, at)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "hearthvale-20260314-150926.json.zst" {
		t.Errorf("file name = %s", filepath.Base(path))
	}

	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.People, snap.People) {
		t.Error("people differ after file round trip")
	}
	if got.Ticks != snap.Ticks || got.Clock != snap.Clock {
		t.Error("meta differs after file round trip")
	}

	later, err := WriteSnapshot(dir, snap, at.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	latest, err := LatestSnapshot(dir)
	if err != nil {
		t.Fatal(err)
	}
	if latest != later {
		t.Errorf("LatestSnapshot = %s, want %s", latest, later)
	}
}

func TestDecodeSnapshotRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"not json":       `{`,
		"missing clock":  `{"seed":1,"ticks":0,"weather":"clear","treasury":{"funds":0,"tax_rate":0.1},"grid_size":4,"people":[],"buildings":[],"institutions":[]}`,
		"bad weather":    `{"seed":1,"ticks":0,"clock":{"year":1,"week":1},"weather":"hail","treasury":{"funds":0,"tax_rate":0.1},"grid_size":4,"people":[],"buildings":[],"institutions":[]}`,
		"negative funds": `{"seed":1,"ticks":0,"clock":{"year":1,"week":1},"weather":"clear","treasury":{"funds":-5,"tax_rate":0.1},"grid_size":4,"people":[],"buildings":[],"institutions":[]}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeSnapshot([]byte(raw)); err == nil {
				t.Error("expected an error")
			}
		})
	}

	ok := `{"seed":1,"ticks":0,"clock":{"year":1,"week":1},"weather":"clear","treasury":{"funds":0,"tax_rate":0.1},"grid_size":4,"people":[],"buildings":[],"institutions":[]}`
	snap, err := DecodeSnapshot([]byte(ok))
	if err != nil {
		t.Fatal(err)
	}
	if snap.Clock.Hour != 8 {
		t.Errorf("missing hour should default to 8, got %d", snap.Clock.Hour)
	}
}

func TestReadSnapshotMissingFile(t *testing.T) {
	_, err := ReadSnapshot(filepath.Join(t.TempDir(), "nope.json.zst"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
	if latest, err := LatestSnapshot(t.TempDir()); err != nil || latest != "" {
		t.Errorf("LatestSnapshot(empty) = %q, %v", latest, err)
	}
}
