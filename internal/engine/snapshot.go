package engine

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/talgya/hearthvale/internal/agents"
	"github.com/talgya/hearthvale/internal/social"
	"github.com/talgya/hearthvale/internal/weather"
	"github.com/talgya/hearthvale/internal/world"
)

// Snapshot is a self-contained copy of the world state. It shares no
// memory with the World it was taken from.
type Snapshot struct {
	Seed         int64                 `json:"seed"`
	Ticks        uint64                `json:"ticks"`
	Clock        Clock                 `json:"clock"`
	Weather      weather.Kind          `json:"weather"`
	Treasury     Treasury              `json:"treasury"`
	GridSize     int                   `json:"grid_size"`
	Cells        []world.Cell          `json:"cells"` // non-default cells only
	People       []*agents.Person      `json:"people"`
	Buildings    []*world.Building     `json:"buildings"`
	Institutions []*social.Institution `json:"institutions"`
	Events       []Event               `json:"events"` // oldest first
}

// Snapshot deep-copies the world.
func (w *World) Snapshot() *Snapshot {
	s := &Snapshot{
		Seed:     w.seed,
		Ticks:    w.ticks,
		Clock:    w.clock,
		Weather:  w.weather,
		Treasury: w.treasury,
		GridSize: w.grid.Size(),
		Cells:    w.grid.Sparse(),
		Events:   w.events.All(),
	}
	for _, p := range w.people.All() {
		s.People = append(s.People, p.Clone())
	}
	for _, b := range w.buildings.All() {
		s.Buildings = append(s.Buildings, b.Clone())
	}
	for _, in := range w.institutions.All() {
		s.Institutions = append(s.Institutions, in.Clone())
	}
	return s
}

// Restore rebuilds a world from s. The snapshot is copied, so it may be
// reused afterwards. Every random stream, the spawner's included, is
// reseeded from the seed and tick count, so a restored world does not
// replay IDs it already issued.
func Restore(s *Snapshot, tuning Tuning) (*World, error) {
	grid, err := world.RestoreGrid(s.GridSize, s.Cells)
	if err != nil {
		return nil, fmt.Errorf("restore grid: %w", err)
	}

	w := NewWorld(grid, s.Seed, tuning)
	w.SetClock(s.Clock)
	w.weather = s.Weather
	w.treasury = s.Treasury
	w.ticks = s.Ticks

	for _, p := range s.People {
		w.people.Add(p.Clone())
	}
	for _, b := range s.Buildings {
		if !grid.InBounds(b.X, b.Y) {
			return nil, fmt.Errorf("building %s at (%d,%d) is off the grid", b.ID, b.X, b.Y)
		}
		w.buildings.Add(b.Clone())
	}
	for _, in := range s.Institutions {
		w.institutions.Add(in.Clone())
	}
	for _, e := range s.Events {
		w.events.Push(e)
	}

	resume := s.Seed + int64(s.Ticks)*1_000_003
	w.rng = rand.New(rand.NewSource(resume))
	w.ids = rand.New(rand.NewSource(resume + 1))
	w.spawner = agents.NewSpawner(resume)

	w.rebuildFacades()
	w.stats = computeStats(w)
	slog.Info("world restored",
		"tick", w.ticks,
		"clock", w.clock.String(),
		"living", w.people.LivingCount(),
		"ever_lived", w.people.Len(),
	)
	return w, nil
}
