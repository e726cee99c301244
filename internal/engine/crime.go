// Crime: desperate or ill-natured people rob and assault their wealthier
// neighbours; guards and the watch arrest some of them.
package engine

import (
	"fmt"
	"sort"

	"github.com/talgya/hearthvale/internal/agents"
)

// CrimeSystem rolls a crime attempt for every free person each tick.
type CrimeSystem struct{}

func (CrimeSystem) Name() string { return "crime" }

func (CrimeSystem) Process(w *World, _ Boundaries, rng Rand) {
	for _, p := range w.people.All() {
		if !p.Alive || p.Imprisoned() {
			continue
		}
		if rng.Float64() < CrimeChance(p, w.clock.IsNight, w.tuning.Crime.ChanceDivisor) {
			commitCrime(w, p, rng)
		}
	}
}

// Desperation scores how cornered p is by poverty, hunger and idleness.
func Desperation(p *agents.Person) int {
	d := 0
	if p.Stats.Wealth < 10 {
		d += 50
	}
	if p.Needs.Food < 20 {
		d += 100
	}
	if p.Job == nil {
		d += 20
	}
	return d
}

// CrimeChance is the per-tick probability that p attempts a crime.
func CrimeChance(p *agents.Person, night bool, divisor float64) float64 {
	chance := float64(p.Stats.CrimePropensity+Desperation(p)) / divisor
	if night {
		chance *= 2
	}
	return agents.Clamp(chance, 0, 1)
}

func commitCrime(w *World, offender *agents.Person, rng Rand) {
	t := w.tuning.Crime

	victims := w.spatial.PeopleWithin(offender.X, offender.Y, t.VictimRadius, func(v *agents.Person) bool {
		return v.ID != offender.ID && !v.Imprisoned()
	})
	if len(victims) == 0 {
		return
	}
	sort.Slice(victims, func(i, j int) bool {
		if victims[i].Stats.Wealth != victims[j].Stats.Wealth {
			return victims[i].Stats.Wealth > victims[j].Stats.Wealth
		}
		return victims[i].ID < victims[j].ID
	})
	victim := victims[rng.Intn(min(3, len(victims)))]

	if guarded(w, victim, offender) && rng.Float64() < t.GuardIntervene {
		if rng.Float64() < t.GuardArrest {
			w.arrest(offender, "attempted crime (caught by guards)")
		}
		return
	}

	violent := offender.Stats.CrimePropensity > t.ViolentPropensity
	loc := pointPtr(offender.Pos())
	if violent && rng.Float64() < t.AssaultChance {
		victim.Stats.Happiness -= 50
		victim.Needs.Safety = 0
		victim.Clamp()
		w.logEvent(EventAttack, fmt.Sprintf("%s attacked %s!", offender.Name, victim.Name),
			loc, offender.ID, victim.ID)
	} else if victim.Stats.Wealth > 0 {
		stolen := min(victim.Stats.Wealth, t.TheftCap)
		victim.Stats.Wealth -= stolen
		offender.Stats.Wealth += stolen
		victim.Stats.Happiness -= 20
		victim.Clamp()
		w.logEvent(EventTheft, fmt.Sprintf("%s stole %d coins from %s.", offender.Name, stolen, victim.Name),
			loc, offender.ID, victim.ID)
	}
	w.social.Adjust(victim.ID, offender.ID, agents.RelEnemy, -t.GrudgeStep)

	catch := t.PoliceCatchTheft
	if violent {
		catch = t.PoliceCatchViolent
	}
	if rng.Float64() < catch {
		w.arrest(offender, "crimes (police)")
	}
}

// guarded reports whether a living guard other than the offender stands close to v.
func guarded(w *World, v, offender *agents.Person) bool {
	guards := w.spatial.PeopleWithin(v.X, v.Y, w.tuning.Crime.GuardRadius, func(g *agents.Person) bool {
		return g.ID != offender.ID && g.Job != nil && g.Job.Title == agents.JobGuard
	})
	return len(guards) > 0
}
