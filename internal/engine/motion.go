// Day/night routing and straight-line movement.
package engine

import (
	"github.com/talgya/hearthvale/internal/agents"
	"github.com/talgya/hearthvale/internal/world"
)

// MotionSystem sends people home at night and to work by day, then moves
// everyone toward their target.
type MotionSystem struct{}

func (MotionSystem) Name() string { return "motion" }

func (MotionSystem) Process(w *World, b Boundaries, rng Rand) {
	t := w.tuning.Motion
	for _, p := range w.people.All() {
		if !p.Alive || p.Imprisoned() {
			continue
		}
		// Protesters hold the square until midnight.
		if p.State == agents.StateProtesting && !b.NewDay {
			continue
		}

		var dest *world.Building // where arrival matters this tick
		if w.clock.IsNight {
			dest = nightRoute(w, p)
		} else {
			dest = dayRoute(w, p, rng)
		}

		if p.Target != nil {
			step(p, *p.Target, t.Speed)
			if p.X == p.Target.X && p.Y == p.Target.Y {
				p.Target = nil
			}
		}

		if dest != nil && p.X == float64(dest.X) && p.Y == float64(dest.Y) {
			arrive(w, p)
		}
	}
}

// nightRoute sends p home, or lets them sleep rough. It returns the house
// p is heading to, if any.
func nightRoute(w *World, p *agents.Person) *world.Building {
	if p.Residence != "" {
		house, ok := w.buildings.Get(p.Residence)
		if ok {
			p.Target = pointPtr(house.Pos())
			p.State = agents.StateMoving
			return house
		}
		// The house is gone.
		p.Residence = ""
	}
	p.Target = nil
	p.State = agents.StateSleeping
	p.Needs.Rest = min(100, p.Needs.Rest+w.tuning.Motion.RoughRest)
	return nil
}

// dayRoute sends p to work, or occasionally picks somewhere nearby to wander.
func dayRoute(w *World, p *agents.Person, rng Rand) *world.Building {
	p.State = agents.StateIdle
	if p.Job != nil {
		work, ok := w.buildings.Get(p.Job.Building)
		if ok {
			p.Target = pointPtr(work.Pos())
			p.State = agents.StateMoving
			return work
		}
		// The workplace is gone.
		p.Job = nil
	}
	if p.Target == nil && rng.Float64() < w.tuning.Motion.WanderChance {
		r := w.tuning.Motion.WanderRadius
		dx := rng.Intn(2*r+1) - r
		dy := rng.Intn(2*r+1) - r
		target := w.grid.Clamp(world.Point{X: p.X + float64(dx), Y: p.Y + float64(dy)})
		p.Target = &target
	}
	if p.Target != nil {
		p.State = agents.StateMoving
	}
	return nil
}

// arrive applies the effect of reaching the night or day destination.
func arrive(w *World, p *agents.Person) {
	if w.clock.IsNight {
		p.State = agents.StateSleeping
		p.Needs.Rest = 100
		return
	}
	p.State = agents.StateWorking
}

// step moves p toward target by at most speed on each axis independently,
// snapping onto the target when within reach.
func step(p *agents.Person, target world.Point, speed float64) {
	p.X = approach(p.X, target.X, speed)
	p.Y = approach(p.Y, target.Y, speed)
}

func approach(from, to, speed float64) float64 {
	switch d := to - from; {
	case d > speed:
		return from + speed
	case d < -speed:
		return from - speed
	default:
		return to
	}
}
