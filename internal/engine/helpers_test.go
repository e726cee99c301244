package engine

import (
	"fmt"
	"testing"

	"github.com/talgya/hearthvale/internal/agents"
	"github.com/talgya/hearthvale/internal/world"
)

// scripted replays queued draws. Floats fall back to 0.99 (every chance
// fails) and Intn falls back to 0.
type scripted struct {
	floats []float64
	ints   []int
}

func (s *scripted) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.99
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scripted) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		return n - 1
	}
	return v
}

// newTestWorld returns an empty 40×40 grass world with default tuning.
func newTestWorld(t *testing.T) *World {
	t.Helper()
	return NewWorld(world.NewGrid(40), 7, DefaultTuning())
}

// addPerson registers a healthy, contented, penniless adult at (x, y).
func addPerson(w *World, name string, sex agents.Sex, age int, x, y float64) *agents.Person {
	p := &agents.Person{
		ID:    w.NewID(),
		Name:  name,
		Age:   age,
		Alive: true,
		Sex:   sex,
		X:     x,
		Y:     y,
		State: agents.StateIdle,
		Stats: agents.Stats{Happiness: 60},
		Needs: agents.FullNeeds(),
	}
	w.AddPerson(p)
	return p
}

func addBuilding(w *World, bt world.BuildingType, x, y int, owner world.ID) *world.Building {
	b := &world.Building{ID: w.NewID(), Type: bt, X: x, Y: y, Owner: owner, Level: 1}
	w.AddBuilding(b)
	return b
}

func eventsOfKind(w *World, kind EventKind) []Event {
	var out []Event
	for _, e := range w.Events().All() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func totalCoin(w *World) int {
	total := w.Treasury().Funds
	for _, p := range w.People().All() {
		total += p.Stats.Wealth
	}
	return total
}

func describe(events []Event) string {
	var s string
	for _, e := range events {
		s += fmt.Sprintf("[%s] %s\n", e.Kind, e.Description)
	}
	return s
}
