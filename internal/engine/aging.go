// Weekly vitality: mortality, courtship and births.
package engine

import (
	"fmt"
	"sort"

	"github.com/talgya/hearthvale/internal/agents"
	"github.com/talgya/hearthvale/internal/weather"
)

// AgingSystem runs mortality and reproduction on week boundaries.
type AgingSystem struct{}

func (AgingSystem) Name() string { return "aging" }

func (AgingSystem) Process(w *World, b Boundaries, rng Rand) {
	if !b.NewWeek {
		return
	}
	// Snapshot: newborns join next week.
	for _, p := range w.social.People() {
		if !p.Alive {
			continue
		}
		if rng.Float64() < DeathChance(p.Age, p.Needs.Food, p.Stats.Wealth, w.clock.Week) {
			w.Kill(p, "natural causes")
			continue
		}
		reproduce(w, p, rng)
	}
}

// DeathChance is the weekly probability of death: age, winter and hunger
// penalties summed, then reduced for the well-off.
func DeathChance(age, food, wealth, week int) float64 {
	chance := 0.0
	if age > 50 {
		chance += 0.001
	}
	if age > 70 {
		chance += 0.01
	}
	if age > 90 {
		chance += 0.05
	}
	if weather.IsWinterWeek(week) {
		chance += 0.002
	}
	if food < 20 {
		chance += 0.05
	}
	if food == 0 {
		chance += 0.2
	}
	if wealth > 50 {
		chance *= 0.8
	}
	if wealth > 100 {
		chance *= 0.5
	}
	return chance
}

func reproduce(w *World, p *agents.Person, rng Rand) {
	t := w.tuning.Vitality
	if p.Imprisoned() || p.Age < t.FertileMinAge || p.Age > t.FertileMaxAge {
		return
	}
	if p.Partner == "" {
		court(w, p, rng)
		return
	}
	if p.Sex != agents.SexFemale {
		return
	}
	father, ok := w.people.GetLiving(p.Partner)
	if !ok {
		return
	}
	if p.Needs.Food <= 50 || p.Stats.Happiness <= 50 {
		return
	}
	if rng.Float64() < t.PregnancyChance {
		giveBirth(w, p, father, rng)
	}
}

// court looks for an eligible partner nearby and advances the relationship
// one step: first meeting, growing closer, or dating once both sides are fond.
func court(w *World, p *agents.Person, rng Rand) {
	t := w.tuning.Vitality
	candidates := w.spatial.PeopleWithin(p.X, p.Y, t.CourtshipRadius, func(c *agents.Person) bool {
		if c.ID == p.ID || c.Sex == p.Sex || c.Partner != "" || !c.IsAdult() || c.Imprisoned() {
			return false
		}
		r, ok := p.Relation(c.ID)
		return !ok || r.Kind != agents.RelFamily
	})
	if len(candidates) == 0 {
		return
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	other := candidates[rng.Intn(len(candidates))]

	if rng.Float64() >= t.CourtshipChance {
		return
	}

	g := w.social
	if _, ok := p.Relation(other.ID); !ok {
		g.SetRelationship(p.ID, other.ID, agents.RelFriend, t.FirstMeeting)
		g.SetRelationship(other.ID, p.ID, agents.RelFriend, t.FirstMeeting)
		return
	}
	if mutual, ok := g.Mutual(p.ID, other.ID); ok && mutual > t.DatingThreshold {
		p.Partner = other.ID
		other.Partner = p.ID
		g.SetRelationship(p.ID, other.ID, agents.RelPartner, p.Relationships[other.ID].Value)
		g.SetRelationship(other.ID, p.ID, agents.RelPartner, other.Relationships[p.ID].Value)
		w.logEvent(EventSocialize, fmt.Sprintf("%s and %s started dating.", p.Name, other.Name),
			pointPtr(p.Pos()), p.ID, other.ID)
		return
	}
	g.Adjust(p.ID, other.ID, agents.RelFriend, t.CourtshipStep)
	g.Adjust(other.ID, p.ID, agents.RelFriend, t.CourtshipStep)
}

func giveBirth(w *World, mother, father *agents.Person, rng Rand) {
	child := w.spawner.Child(w.NewID(), mother, father, w.clock.Year, rng)
	w.people.Add(child)

	g := w.social
	for _, parent := range []*agents.Person{mother, father} {
		g.SetRelationship(child.ID, parent.ID, agents.RelFamily, 100)
		g.SetRelationship(parent.ID, child.ID, agents.RelFamily, 100)
		parent.Children = append(parent.Children, child.ID)
	}

	w.logEvent(EventBirth,
		fmt.Sprintf("%s was born to %s and %s.", child.Name, mother.Name, father.Name),
		pointPtr(mother.Pos()), child.ID, mother.ID, father.ID)
}
