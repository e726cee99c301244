package engine

import (
	"math"

	"github.com/talgya/hearthvale/internal/agents"
	"github.com/talgya/hearthvale/internal/world"
)

// Spatial is the position query facade over the world's people and grid.
type Spatial struct {
	people *agents.Registry
	grid   *world.Grid
}

// NewSpatial wraps people and grid.
func NewSpatial(people *agents.Registry, grid *world.Grid) *Spatial {
	return &Spatial{people: people, grid: grid}
}

// CellUnder returns the cell p stands on.
func (s *Spatial) CellUnder(p *agents.Person) (world.Cell, bool) {
	return s.grid.CellAtPoint(p.Pos())
}

// PeopleWithin returns the living people strictly inside the square box of
// half-width radius around (x, y) that keep accepts, in registry order.
// A nil keep accepts everyone.
func (s *Spatial) PeopleWithin(x, y, radius float64, keep func(*agents.Person) bool) []*agents.Person {
	var out []*agents.Person
	for _, p := range s.people.All() {
		if !p.Alive {
			continue
		}
		if math.Abs(p.X-x) >= radius || math.Abs(p.Y-y) >= radius {
			continue
		}
		if keep != nil && !keep(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// PeopleAt returns the living people standing exactly on (x, y).
func (s *Spatial) PeopleAt(x, y float64) []*agents.Person {
	var out []*agents.Person
	for _, p := range s.people.All() {
		if p.Alive && p.X == x && p.Y == y {
			out = append(out, p)
		}
	}
	return out
}

// Nearest returns the candidate closest to (x, y) by squared Euclidean
// distance. Earlier candidates win ties.
func Nearest(x, y float64, candidates []*agents.Person) (*agents.Person, bool) {
	var best *agents.Person
	bestD := math.Inf(1)
	for _, p := range candidates {
		dx, dy := p.X-x, p.Y-y
		if d := dx*dx + dy*dy; d < bestD {
			best, bestD = p, d
		}
	}
	return best, best != nil
}
