// Package engine provides the world state, the tick pipeline, and the
// subsystems that advance the village one hour at a time.
package engine

import (
	"fmt"
	"math/rand"

	"github.com/talgya/hearthvale/internal/agents"
	"github.com/talgya/hearthvale/internal/social"
	"github.com/talgya/hearthvale/internal/weather"
	"github.com/talgya/hearthvale/internal/world"
)

// Rand is the random source threaded through every subsystem.
// *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Treasury is the government purse.
type Treasury struct {
	Funds   int     `json:"funds"`
	TaxRate float64 `json:"tax_rate"`
}

// World holds the complete simulation state. It is the single owner of
// people, buildings, grid and institutions; the social and spatial
// facades are views over the same collections.
type World struct {
	clock        Clock
	weather      weather.Kind
	treasury     Treasury
	people       *agents.Registry
	buildings    *world.Buildings
	grid         *world.Grid
	institutions *social.Institutions
	events       *EventLog
	stats        Stats
	ticks        uint64
	last         Boundaries

	social  *social.Graph
	spatial *Spatial

	pipeline []System
	rng      Rand
	ids      *rand.Rand
	spawner  *agents.Spawner
	tuning   Tuning
	seed     int64
}

// NewWorld creates an empty world over grid. seed drives every random
// draw and every generated ID.
func NewWorld(grid *world.Grid, seed int64, tuning Tuning) *World {
	w := &World{
		clock:        NewClock(),
		weather:      weather.Clear,
		treasury:     Treasury{Funds: tuning.StartingFunds, TaxRate: tuning.TaxRate},
		people:       agents.NewRegistry(),
		buildings:    world.NewBuildings(),
		grid:         grid,
		institutions: social.NewInstitutions(),
		events:       NewEventLog(MaxEvents),
		pipeline:     DefaultPipeline(),
		tuning:       tuning,
	}
	w.reseed(seed)
	w.rebuildFacades()
	return w
}

// reseed resets every random stream from seed.
func (w *World) reseed(seed int64) {
	w.seed = seed
	w.rng = rand.New(rand.NewSource(seed))
	w.ids = rand.New(rand.NewSource(seed + 1))
	w.spawner = agents.NewSpawner(seed)
}

// rebuildFacades points the social and spatial views at the current collections.
func (w *World) rebuildFacades() {
	w.social = social.NewGraph(w.people)
	w.spatial = NewSpatial(w.people, w.grid)
}

// Advance runs one tick: the clock moves one hour, living people age on a
// year rollover, then every subsystem runs once in pipeline order.
func (w *World) Advance() {
	b := w.clock.Advance()
	w.last = b
	if b.NewYear {
		for _, p := range w.people.All() {
			if p.Alive {
				p.Age++
			}
		}
	}
	for _, sys := range w.pipeline {
		sys.Process(w, b, w.rng)
	}
	for _, p := range w.people.All() {
		if p.Alive {
			p.Clamp()
		}
	}
	w.ticks++
}

// AdvanceN runs n sequential ticks.
func (w *World) AdvanceN(n int) {
	for i := 0; i < n; i++ {
		w.Advance()
	}
}

// SetPipeline replaces the subsystem order. Used to prove the order matters.
func (w *World) SetPipeline(p []System) {
	w.pipeline = p
}

// Pipeline returns the subsystems in run order.
func (w *World) Pipeline() []System {
	return w.pipeline
}

// SetRand replaces the random source for subsystem draws.
func (w *World) SetRand(r Rand) {
	w.rng = r
}

// ── Observation ────────────────────────────────────────────────────────

func (w *World) Clock() Clock { return w.clock }
func (w *World) Weather() weather.Kind { return w.weather }
func (w *World) Treasury() Treasury { return w.treasury }
func (w *World) People() *agents.Registry { return w.people }
func (w *World) Buildings() *world.Buildings { return w.buildings }
func (w *World) Grid() *world.Grid { return w.grid }
func (w *World) Institutions() *social.Institutions { return w.institutions }
func (w *World) Events() *EventLog { return w.events }
func (w *World) Stats() Stats { return w.stats }
func (w *World) Social() *social.Graph { return w.social }
func (w *World) Spatial() *Spatial { return w.spatial }
func (w *World) Tuning() Tuning { return w.tuning }
func (w *World) Ticks() uint64 { return w.ticks }
func (w *World) Seed() int64 { return w.seed }

// LastBoundaries reports which calendar boundaries the most recent tick crossed.
func (w *World) LastBoundaries() Boundaries { return w.last }

// Season returns the season of the current week.
func (w *World) Season() weather.Season {
	return weather.SeasonOf(w.clock.Week)
}

// ── Setup ──────────────────────────────────────────────────────────────

// SetClock replaces the clock, recomputing the night flag.
func (w *World) SetClock(c Clock) {
	c.IsNight = IsNightHour(c.Hour)
	w.clock = c
}

// SetWeather replaces the current weather.
func (w *World) SetWeather(k weather.Kind) {
	w.weather = k
}

// SetTreasury replaces the treasury.
func (w *World) SetTreasury(t Treasury) {
	w.treasury = t
}

// AddPerson registers p.
func (w *World) AddPerson(p *agents.Person) {
	w.people.Add(p)
}

// AddBuilding registers b and records it on its cell.
func (w *World) AddBuilding(b *world.Building) {
	w.buildings.Add(b)
	w.grid.SetBuilding(b.X, b.Y, b.ID)
}

// AddInstitution registers in.
func (w *World) AddInstitution(in *social.Institution) {
	w.institutions.Add(in)
}

// NewID issues an entity ID from the world's ID stream.
func (w *World) NewID() world.ID {
	return world.NewID(w.ids)
}

// ── Shared actions used by several subsystems ──────────────────────────

// logEvent stamps an event with the current clock and appends it.
func (w *World) logEvent(kind EventKind, desc string, loc *world.Point, involved ...world.ID) {
	w.events.Push(Event{
		ID:          w.NewID(),
		Kind:        kind,
		Description: desc,
		Year:        w.clock.Year,
		Week:        w.clock.Week,
		Day:         w.clock.Day,
		Hour:        w.clock.Hour,
		Involved:    involved,
		Location:    loc,
	})
}

// Kill marks p dead, logs the death, hands over any institution p led and
// takes p off every roster.
func (w *World) Kill(p *agents.Person, cause string) {
	if !p.Alive {
		return
	}
	p.Alive = false
	w.logEvent(EventDeath, fmt.Sprintf("%s died at age %d from %s.", p.Name, p.Age, cause), nil, p.ID)

	for _, in := range w.institutions.LedBy(p.ID) {
		successor, ok := w.institutions.FindSuccessor(in.ID, w.people)
		if !ok {
			w.institutions.SetLeader(in.ID, "")
			continue
		}
		w.institutions.SetLeader(in.ID, successor)
		heir, _ := w.people.Get(successor)
		w.logEvent(EventSuccession,
			fmt.Sprintf("%s now leads the %s after the death of %s.", heir.Name, in.Name, p.Name),
			nil, successor, p.ID)
	}
	for _, in := range w.institutions.All() {
		if in.HasMember(p.ID) {
			w.institutions.RemoveMember(in.ID, p.ID)
		}
	}
}

// endEmployment clears p's job and takes them off the workplace roster.
func (w *World) endEmployment(p *agents.Person) {
	if p.Job == nil {
		return
	}
	if b, ok := w.buildings.Get(p.Job.Building); ok {
		b.RemoveEmployee(p.ID)
	}
	p.Job = nil
}

// arrest imprisons p at the jail coordinate.
func (w *World) arrest(p *agents.Person, reason string) {
	p.State = agents.StateImprisoned
	p.SetPos(jailPos)
	p.Target = nil
	w.endEmployment(p)
	w.logEvent(EventArrest, fmt.Sprintf("%s was arrested for %s.", p.Name, reason), nil, p.ID)
}

// jailPos is where arrested people are held.
var jailPos = world.Point{X: 0, Y: 0}

func pointPtr(p world.Point) *world.Point {
	return &p
}
