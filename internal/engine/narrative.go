// Village-wide events driven by the statistics snapshot: unrest and famine.
package engine

import (
	"log/slog"

	"github.com/talgya/hearthvale/internal/agents"
)

// EventSystem triggers protests and famines.
type EventSystem struct{}

func (EventSystem) Name() string { return "event" }

func (EventSystem) Process(w *World, _ Boundaries, rng Rand) {
	t := w.tuning.Narrative
	stats := w.stats

	if stats.Population > 0 && stats.AvgHappiness < t.ProtestHappiness && w.treasury.TaxRate > t.ProtestTaxRate {
		if rng.Float64() < t.ProtestChance {
			protest(w)
		}
	}

	if rng.Float64() < t.FamineChance {
		famine(w)
	}
}

// protest costs the treasury reparations and takes the adults onto the streets.
func protest(w *World) {
	w.logEvent(EventProtest, "Mass protests erupt over unhappiness and high taxes!", nil)

	damage := min(w.treasury.Funds, w.tuning.Narrative.Reparations)
	w.treasury.Funds -= damage

	marching := 0
	for _, p := range w.people.All() {
		if p.Alive && p.IsAdult() && !p.Imprisoned() {
			p.State = agents.StateProtesting
			marching++
		}
	}
	slog.Warn("protest", "reparations", damage, "protesters", marching, "treasury", w.treasury.Funds)
}

// famine spoils the harvest: everyone living loses food and spirits.
func famine(w *World) {
	t := w.tuning.Narrative
	w.logEvent(EventFamine, "Famine strikes! Crop failures lead to food shortages.", nil)
	for _, p := range w.people.All() {
		if !p.Alive {
			continue
		}
		p.Needs.Food = max(0, p.Needs.Food-t.FamineFood)
		p.Stats.Happiness = max(0, p.Stats.Happiness-t.FamineHappiness)
	}
	slog.Warn("famine", "year", w.clock.Year, "week", w.clock.Week)
}
