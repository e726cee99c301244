// Land purchases and house construction.
package engine

import (
	"fmt"

	"github.com/talgya/hearthvale/internal/agents"
	"github.com/talgya/hearthvale/internal/world"
)

// LandSystem lets landless, well-off adults buy the grass cell they stand on.
type LandSystem struct{}

func (LandSystem) Name() string { return "land" }

func (LandSystem) Process(w *World, _ Boundaries, _ Rand) {
	t := w.tuning.Land
	for _, p := range w.people.All() {
		if !p.Alive || !p.IsAdult() || p.Imprisoned() {
			continue
		}
		if w.grid.OwnedCount(p.ID) > 0 || p.Stats.Wealth <= t.LandMinWealth {
			continue
		}
		cell, ok := w.spatial.CellUnder(p)
		if !ok || cell.Owner != "" || cell.Type != world.CellGrass {
			continue
		}
		if p.Stats.Wealth < t.LandPrice {
			continue
		}
		p.Stats.Wealth -= t.LandPrice
		w.grid.SetOwner(cell.X, cell.Y, p.ID)
		w.logEvent(EventConstruction, fmt.Sprintf("%s bought land at %d,%d.", p.Name, cell.X, cell.Y),
			pointPtr(world.Point{X: float64(cell.X), Y: float64(cell.Y)}), p.ID)
	}
}

// BuildingSystem builds a house on owned, empty land once a day.
type BuildingSystem struct{}

func (BuildingSystem) Name() string { return "building" }

func (BuildingSystem) Process(w *World, b Boundaries, _ Rand) {
	if !b.NewDay {
		return
	}
	t := w.tuning.Land
	for _, p := range w.people.All() {
		if !p.Alive || p.Imprisoned() {
			continue
		}
		cell, ok := w.spatial.CellUnder(p)
		if !ok || cell.Owner != p.ID || cell.Building != "" {
			continue
		}
		if p.Stats.Wealth < t.HousePrice {
			continue
		}
		p.Stats.Wealth -= t.HousePrice
		house := constructBuilding(w, cell.X, cell.Y, world.BuildingHouse, p.ID)
		moveIn(w, p, house)
	}
}

// constructBuilding registers a new level-1 building on (x, y).
func constructBuilding(w *World, x, y int, bt world.BuildingType, owner world.ID) *world.Building {
	b := &world.Building{ID: w.NewID(), Type: bt, X: x, Y: y, Owner: owner, Level: 1}
	w.AddBuilding(b)

	var involved []world.ID
	if owner != "" {
		involved = append(involved, owner)
	}
	w.logEvent(EventConstruction, fmt.Sprintf("%s built at %d,%d.", bt, x, y),
		pointPtr(b.Pos()), involved...)
	return b
}

// moveIn makes house the residence of its builder and of a homeless partner.
func moveIn(w *World, p *agents.Person, house *world.Building) {
	p.Residence = house.ID
	if partner, ok := w.people.GetLiving(p.Partner); ok && partner.Residence == "" {
		partner.Residence = house.ID
	}
}
