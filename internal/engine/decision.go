// Daily decisions: hunger, grudges and small talk.
package engine

import (
	"fmt"

	"github.com/talgya/hearthvale/internal/agents"
	"github.com/talgya/hearthvale/internal/social"
	"github.com/talgya/hearthvale/internal/world"
)

// DecisionSystem applies daily hunger and lets each person act on their
// most pressing concern: food, then enemies, then company.
type DecisionSystem struct{}

func (DecisionSystem) Name() string { return "decision" }

func (DecisionSystem) Process(w *World, b Boundaries, rng Rand) {
	if !b.NewDay {
		return
	}
	t := w.tuning.Decision
	for _, p := range w.social.People() {
		if !p.Alive {
			continue
		}
		// Toddlers are fed by their families.
		if p.Age < t.ToddlerAge {
			p.Needs.Food = 100
			continue
		}
		p.Needs.Food = max(p.Needs.Food-t.DailyHunger, 0)
		decide(w, p, rng)
	}
}

func decide(w *World, p *agents.Person, rng Rand) {
	t := w.tuning.Decision

	if p.Needs.Food < 20 {
		forage(p)
		return
	}

	if enemies := livingEnemies(w, p.ID); len(enemies) > 0 {
		if rng.Float64() < t.AttackChance {
			attack(w, p, enemies[rng.Intn(len(enemies))], rng)
			return
		}
	}

	if rng.Float64() < t.SocializeChance {
		var neighbours []*agents.Person
		for _, n := range w.spatial.PeopleAt(p.X, p.Y) {
			if n.ID != p.ID {
				neighbours = append(neighbours, n)
			}
		}
		if len(neighbours) > 0 {
			socialize(w, p, neighbours[rng.Intn(len(neighbours))], rng)
		}
	}
}

// forage fills the person's belly and earns a coin for the effort.
func forage(p *agents.Person) {
	p.Needs.Food = 100
	p.Stats.Wealth++
}

func livingEnemies(w *World, id world.ID) []*agents.Person {
	var out []*agents.Person
	for _, eid := range w.social.EnemiesBelow(id, social.EnemyThreshold) {
		if e, ok := w.people.GetLiving(eid); ok {
			out = append(out, e)
		}
	}
	return out
}

func attack(w *World, actor, target *agents.Person, rng Rand) {
	t := w.tuning.Decision
	w.logEvent(EventAttack, fmt.Sprintf("%s attacked %s!", actor.Name, target.Name),
		pointPtr(actor.Pos()), actor.ID, target.ID)

	// The victim now hates the attacker.
	w.social.Adjust(target.ID, actor.ID, agents.RelEnemy, -t.AttackDamage)

	if rng.Float64() < t.LethalChance {
		w.Kill(target, "murder by "+actor.Name)
	}
}

func socialize(w *World, actor, target *agents.Person, rng Rand) {
	t := w.tuning.Decision
	if rng.Float64() < t.ChatLogChance {
		w.logEvent(EventSocialize, fmt.Sprintf("%s chatted with %s.", actor.Name, target.Name),
			pointPtr(actor.Pos()), actor.ID, target.ID)
	}
	w.social.Adjust(actor.ID, target.ID, keepKind(actor, target.ID, agents.RelFriend), t.SocializeStep)
	w.social.Adjust(target.ID, actor.ID, keepKind(target, actor.ID, agents.RelFriend), t.SocializeStep)
}

// keepKind returns the existing edge kind for family and partner edges, so
// a chat does not demote a spouse to a friend.
func keepKind(p *agents.Person, target world.ID, fallback agents.RelationKind) agents.RelationKind {
	if r, ok := p.Relation(target); ok && (r.Kind == agents.RelFamily || r.Kind == agents.RelPartner) {
		return r.Kind
	}
	return fallback
}
