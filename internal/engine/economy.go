// Weekly economy: hiring, wages, taxation and food purchases.
// Every transfer moves coin between two named parties; no coin is minted.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/hearthvale/internal/agents"
	"github.com/talgya/hearthvale/internal/world"
)

// EconomySystem runs the weekly labour market and household spending.
type EconomySystem struct{}

func (EconomySystem) Name() string { return "economy" }

func (EconomySystem) Process(w *World, b Boundaries, _ Rand) {
	if !b.NewWeek {
		return
	}
	hire(w)
	hireGuards(w)
	payWages(w)
	if w.clock.Week == 1 {
		collectTax(w)
	}
	buyFood(w)
}

// employable reports whether p may take a job from employer.
func employable(w *World, p *agents.Person, employer world.ID) bool {
	return p.Alive && p.Job == nil && !p.Imprisoned() && p.ID != employer &&
		p.Age >= agents.AdultAge && p.Age <= w.tuning.Economy.RetirementAge
}

func livingEmployees(w *World, b *world.Building) int {
	n := 0
	for _, id := range b.Employees {
		if _, ok := w.people.GetLiving(id); ok {
			n++
		}
	}
	return n
}

// hire fills one vacancy per workplace whose owner can afford staff.
func hire(w *World) {
	t := w.tuning.Economy
	for _, b := range w.buildings.All() {
		if b.Type.Residential() {
			continue
		}
		owner, ok := w.people.GetLiving(b.Owner)
		if !ok || owner.Stats.Wealth < t.HireMinWealth {
			continue
		}
		if livingEmployees(w, b) >= t.StaffPerLevel*b.Level {
			continue
		}
		employ(w, b, owner, agents.TitleFor(b.Type))
	}
}

// hireGuards gives each house of a wealthy owner at most one guard.
func hireGuards(w *World) {
	t := w.tuning.Economy
	for _, b := range w.buildings.OfType(world.BuildingHouse) {
		owner, ok := w.people.GetLiving(b.Owner)
		if !ok || owner.Stats.Wealth < t.GuardMinWealth {
			continue
		}
		if livingEmployees(w, b) > 0 {
			continue
		}
		employ(w, b, owner, agents.JobGuard)
	}
}

// employ hires the unemployed adult nearest to b.
func employ(w *World, b *world.Building, owner *agents.Person, title agents.JobTitle) {
	var pool []*agents.Person
	for _, p := range w.people.All() {
		if employable(w, p, owner.ID) {
			pool = append(pool, p)
		}
	}
	worker, ok := Nearest(float64(b.X), float64(b.Y), pool)
	if !ok {
		return
	}
	worker.Job = &agents.Job{
		Title:    title,
		Salary:   agents.SalaryFor(title, b.Level),
		Employer: owner.ID,
		Building: b.ID,
	}
	b.AddEmployee(worker.ID)
	w.logEvent(EventEmployment,
		fmt.Sprintf("%s was hired as a %s by %s.", worker.Name, title, owner.Name),
		pointPtr(b.Pos()), worker.ID, owner.ID)
}

// payWages transfers each salary from employer to employee. An employer who
// is gone or cannot pay loses the worker instead of going into debt.
func payWages(w *World) {
	for _, p := range w.people.All() {
		if !p.Alive || p.Job == nil {
			continue
		}
		job := p.Job
		if _, ok := w.buildings.Get(job.Building); !ok {
			p.Job = nil
			continue
		}
		employer, ok := w.people.GetLiving(job.Employer)
		if !ok || employer.Stats.Wealth < job.Salary {
			slog.Debug("worker let go", "person", p.Name, "title", job.Title.String())
			w.endEmployment(p)
			continue
		}
		employer.Stats.Wealth -= job.Salary
		p.Stats.Wealth += job.Salary
	}
}

// collectTax takes the yearly flat tax from everyone with positive wealth.
func collectTax(w *World) {
	collected := 0
	for _, p := range w.people.All() {
		if !p.Alive || p.Stats.Wealth <= 0 {
			continue
		}
		tax := int(float64(p.Stats.Wealth) * w.treasury.TaxRate)
		if tax > p.Stats.Wealth {
			tax = p.Stats.Wealth
		}
		p.Stats.Wealth -= tax
		collected += tax
	}
	w.treasury.Funds += collected
	slog.Info("taxes collected", "year", w.clock.Year, "amount", collected, "rate", w.treasury.TaxRate)
}

// buyFood lets hungry people buy a full meal from the nearest seller.
func buyFood(w *World) {
	t := w.tuning.Economy
	for _, p := range w.people.All() {
		if !p.Alive || p.Imprisoned() {
			continue
		}
		if p.Needs.Food >= t.HungerThreshold || p.Stats.Wealth < t.FoodPrice {
			continue
		}
		p.Stats.Wealth -= t.FoodPrice
		p.Needs.Food = 100
		if seller, ok := nearestSeller(w, p); ok {
			seller.Stats.Wealth += t.FoodPrice - t.SalesTax
			w.treasury.Funds += t.SalesTax
		} else {
			w.treasury.Funds += t.FoodPrice
		}
	}
}

// nearestSeller returns the living owner of the shop or farm closest to p.
// People never buy from themselves.
func nearestSeller(w *World, p *agents.Person) (*agents.Person, bool) {
	var best *agents.Person
	bestD := 0.0
	for _, b := range w.buildings.All() {
		if b.Type != world.BuildingShop && b.Type != world.BuildingFarm {
			continue
		}
		owner, ok := w.people.GetLiving(b.Owner)
		if !ok || owner.ID == p.ID {
			continue
		}
		dx, dy := float64(b.X)-p.X, float64(b.Y)-p.Y
		if d := dx*dx + dy*dy; best == nil || d < bestD {
			best, bestD = owner, d
		}
	}
	return best, best != nil
}
