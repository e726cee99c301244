package engine

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/talgya/hearthvale/internal/world"
)

func smallSeedConfig() SeedConfig {
	cfg := DefaultSeedConfig()
	cfg.Population = 24
	cfg.Houses = 8
	cfg.Farms = 2
	cfg.Shops = 2
	return cfg
}

func TestSeedVillage(t *testing.T) {
	w := NewSeededWorld(world.SmallTestConfig(), smallSeedConfig(), DefaultTuning())

	if w.People().Len() != 24 {
		t.Fatalf("people = %d, want 24", w.People().Len())
	}
	if len(w.Buildings().OfType(world.BuildingJail)) != 1 {
		t.Error("expected a jail")
	}
	if len(w.Buildings().OfType(world.BuildingGovernment)) != 1 {
		t.Error("expected a town hall")
	}
	if len(w.Buildings().OfType(world.BuildingHouse)) == 0 {
		t.Error("expected houses")
	}
	if len(w.Institutions().All()) != 3 {
		t.Errorf("institutions = %d, want 3", len(w.Institutions().All()))
	}
	for _, b := range w.Buildings().All() {
		c, ok := w.Grid().CellAt(b.X, b.Y)
		if !ok || c.Building != b.ID {
			t.Errorf("%s %s not recorded on its cell", b.Type, b.ID)
		}
	}
	for _, p := range w.People().All() {
		if p.Partner == "" {
			continue
		}
		partner, ok := w.People().Get(p.Partner)
		if !ok || partner.Partner != p.ID {
			t.Errorf("%s: partner link not symmetric", p.Name)
		}
	}
	if w.Stats().Population != 24 {
		t.Errorf("stats population = %d, want 24", w.Stats().Population)
	}
}

func TestSameSeedSameHistory(t *testing.T) {
	run := func() []byte {
		w := NewSeededWorld(world.SmallTestConfig(), smallSeedConfig(), DefaultTuning())
		w.AdvanceN(24 * 14)
		raw, err := json.Marshal(w.Snapshot())
		if err != nil {
			t.Fatal(err)
		}
		return raw
	}
	if !bytes.Equal(run(), run()) {
		t.Error("two runs from the same seed diverged")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	w := NewSeededWorld(world.SmallTestConfig(), smallSeedConfig(), DefaultTuning())
	snap := w.Snapshot()

	p := w.People().All()[0]
	wealth := snap.People[0].Stats.Wealth
	p.Stats.Wealth += 999
	for id := range p.Relationships {
		delete(p.Relationships, id)
	}
	w.Buildings().All()[0].AddEmployee("someone")

	if snap.People[0].Stats.Wealth != wealth {
		t.Error("snapshot person shares memory with the world")
	}
	if len(snap.Buildings[0].Employees) != 0 {
		t.Error("snapshot building shares its roster with the world")
	}
}

func TestRestoreReseedsSpawner(t *testing.T) {
	w := NewSeededWorld(world.SmallTestConfig(), smallSeedConfig(), DefaultTuning())
	w.AdvanceN(24)

	back, err := Restore(w.Snapshot(), DefaultTuning())
	if err != nil {
		t.Fatal(err)
	}
	fresh := NewWorld(world.NewGrid(10), w.Seed(), DefaultTuning())
	if back.spawner.NewID() == fresh.spawner.NewID() {
		t.Error("restored spawner replays the founding stream")
	}
	if back.Seed() != w.Seed() {
		t.Errorf("seed = %d, want %d", back.Seed(), w.Seed())
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	w := NewSeededWorld(world.SmallTestConfig(), smallSeedConfig(), DefaultTuning())
	w.AdvanceN(24 * 10)

	raw, err := json.Marshal(w.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatal(err)
	}
	back, err := Restore(&snap, DefaultTuning())
	if err != nil {
		t.Fatal(err)
	}

	if back.Clock() != w.Clock() {
		t.Errorf("clock = %v, want %v", back.Clock(), w.Clock())
	}
	if back.Ticks() != w.Ticks() {
		t.Errorf("ticks = %d, want %d", back.Ticks(), w.Ticks())
	}
	if back.People().Len() != w.People().Len() || back.Buildings().Len() != w.Buildings().Len() {
		t.Error("entity counts differ after restore")
	}
	if back.Events().Len() != w.Events().Len() {
		t.Errorf("events = %d, want %d", back.Events().Len(), w.Events().Len())
	}
	if back.Stats() != computeStats(w) {
		t.Errorf("stats = %+v, want %+v", back.Stats(), computeStats(w))
	}
	if back.Grid().OwnedCount(w.People().All()[0].ID) != w.Grid().OwnedCount(w.People().All()[0].ID) {
		t.Error("owner index not rebuilt")
	}

	// The restored world keeps running.
	back.AdvanceN(24)
	if back.Ticks() != w.Ticks()+24 {
		t.Error("restored world did not advance")
	}
}

func TestRestoreRejectsBadGrid(t *testing.T) {
	snap := &Snapshot{GridSize: 4, Cells: []world.Cell{{X: 9, Y: 9, Type: world.CellWater}}}
	if _, err := Restore(snap, DefaultTuning()); err == nil {
		t.Error("expected an error for an out-of-range cell")
	}
}

func TestLoadTuning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "tax_rate: 0.2\ncrime:\n  theft_cap: 25\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	tun, err := LoadTuning(path)
	if err != nil {
		t.Fatal(err)
	}
	if tun.TaxRate != 0.2 || tun.Crime.TheftCap != 25 {
		t.Errorf("overrides not applied: %+v", tun)
	}
	if tun.Economy.FoodPrice != 5 || tun.Crime.VictimRadius != 10 {
		t.Error("unset keys should keep their defaults")
	}
}

func TestLoadTuningRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("tax_rate: 3\nmotion:\n  speed: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTuning(path); err == nil {
		t.Error("expected validation error")
	}
	if err := DefaultTuning().Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}
