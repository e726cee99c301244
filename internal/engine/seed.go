// World seeding: civic buildings, workplaces, housing, institutions and a
// founding population laid out around the central crossroads.
package engine

import (
	"log/slog"
	"math/rand"
	"sort"

	"github.com/talgya/hearthvale/internal/agents"
	"github.com/talgya/hearthvale/internal/social"
	"github.com/talgya/hearthvale/internal/world"
)

// SeedConfig sizes the founding village.
type SeedConfig struct {
	Population  int     // Founders
	Houses      int     // Houses built before the first tick
	Farms       int     // Farms, each owned by a founder
	Shops       int     // Shops, each owned by a founder
	PartnerRate float64 // Share of adults paired off at founding
	LotSpacing  int     // Minimum gap between building lots
	OwnerBonus  int     // Coin given to each workplace owner
}

// DefaultSeedConfig returns a village of about a hundred people.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		Population:  100,
		Houses:      30,
		Farms:       6,
		Shops:       6,
		PartnerRate: 0.4,
		LotSpacing:  3,
		OwnerBonus:  200,
	}
}

// civicTypes are placed once each, in this order, on the best lots.
var civicTypes = []world.BuildingType{
	world.BuildingGovernment,
	world.BuildingPoliceStation,
	world.BuildingSchool,
	world.BuildingHospital,
	world.BuildingPark,
}

// NewSeededWorld generates terrain from gen and seeds a village on it.
func NewSeededWorld(gen world.GenConfig, cfg SeedConfig, tuning Tuning) *World {
	if gen.Seed == 0 {
		gen.Seed = rand.Int63()
	}
	grid := world.Generate(gen)
	w := NewWorld(grid, gen.Seed, tuning)
	Seed(w, cfg)
	return w
}

// Seed populates an empty world. Everything drawn here comes from the
// world's seed, so the same seed yields the same village.
func Seed(w *World, cfg SeedConfig) {
	rng := rand.New(rand.NewSource(w.seed + 400))

	// The jail sits at the holding coordinate regardless of terrain.
	jail := &world.Building{ID: w.NewID(), Type: world.BuildingJail, X: int(jailPos.X), Y: int(jailPos.Y), Level: 1}
	w.AddBuilding(jail)

	want := len(civicTypes) + cfg.Farms + cfg.Shops + cfg.Houses
	lots := world.PlaceLots(w.grid, want, cfg.LotSpacing, w.seed)
	next := 0
	take := func() (world.Lot, bool) {
		if next >= len(lots) {
			return world.Lot{}, false
		}
		next++
		return lots[next-1], true
	}

	for _, bt := range civicTypes {
		lot, ok := take()
		if !ok {
			break
		}
		w.AddBuilding(&world.Building{ID: w.NewID(), Type: bt, X: lot.X, Y: lot.Y, Level: 1})
	}

	// ── Founders ──
	centre := w.grid.Clamp(world.Point{X: float64(w.grid.Size() / 2), Y: float64(w.grid.Size() / 2)})
	founders := make([]*agents.Person, 0, cfg.Population)
	for i := 0; i < cfg.Population; i++ {
		pos := centre
		if len(lots) > 0 {
			pos = lots[rng.Intn(len(lots))].Pos()
		}
		p := w.spawner.Founder(pos, w.clock.Year)
		w.AddPerson(p)
		founders = append(founders, p)
	}

	adults := make([]*agents.Person, 0, len(founders))
	var children []*agents.Person
	for _, p := range founders {
		if p.IsAdult() {
			adults = append(adults, p)
		} else {
			children = append(children, p)
		}
	}
	// Wealthiest first; owners and leaders are picked from the front.
	sort.SliceStable(adults, func(i, j int) bool {
		if adults[i].Stats.Wealth != adults[j].Stats.Wealth {
			return adults[i].Stats.Wealth > adults[j].Stats.Wealth
		}
		return adults[i].ID < adults[j].ID
	})

	// ── Workplaces ──
	var owners []*agents.Person
	placeWorkplace := func(bt world.BuildingType) {
		if len(owners) >= len(adults) {
			return
		}
		lot, ok := take()
		if !ok {
			return
		}
		owner := adults[len(owners)]
		owners = append(owners, owner)
		owner.Stats.Wealth += cfg.OwnerBonus
		w.grid.SetOwner(lot.X, lot.Y, owner.ID)
		w.AddBuilding(&world.Building{ID: w.NewID(), Type: bt, X: lot.X, Y: lot.Y, Owner: owner.ID, Level: 1})
	}
	for i := 0; i < cfg.Farms; i++ {
		placeWorkplace(world.BuildingFarm)
	}
	for i := 0; i < cfg.Shops; i++ {
		placeWorkplace(world.BuildingShop)
	}

	// ── Households ──
	pairPartners(w, adults, cfg.PartnerRate, rng)

	var houses []*world.Building
	for _, p := range adults {
		if p.Residence != "" {
			continue
		}
		lot, ok := take()
		if !ok {
			break
		}
		w.grid.SetOwner(lot.X, lot.Y, p.ID)
		house := &world.Building{ID: w.NewID(), Type: world.BuildingHouse, X: lot.X, Y: lot.Y, Owner: p.ID, Level: 1}
		w.AddBuilding(house)
		houses = append(houses, house)
		moveIn(w, p, house)
		home := house.Pos()
		p.SetPos(home)
		if partner, ok := w.people.GetLiving(p.Partner); ok {
			partner.SetPos(home)
		}
	}

	// Children join a household and take its adults as parents.
	for _, c := range children {
		if len(houses) == 0 {
			break
		}
		house := houses[rng.Intn(len(houses))]
		c.Residence = house.ID
		c.SetPos(house.Pos())
		adoptInto(w, c, house.Owner)
	}

	// ── Institutions ──
	seedInstitutions(w, adults, owners, rng)

	w.stats = computeStats(w)
	slog.Info("village seeded",
		"people", w.people.Len(),
		"buildings", w.buildings.Len(),
		"houses", len(houses),
		"lots", len(lots),
	)
}

// pairPartners couples a share of unpartnered adults with an opposite-sex
// adult of similar standing.
func pairPartners(w *World, adults []*agents.Person, rate float64, rng *rand.Rand) {
	for i, a := range adults {
		if a.Partner != "" || rng.Float64() >= rate {
			continue
		}
		for _, b := range adults[i+1:] {
			if b.Partner != "" || b.Sex != a.Sex.Opposite() {
				continue
			}
			a.Partner, b.Partner = b.ID, a.ID
			w.social.SetRelationship(a.ID, b.ID, agents.RelPartner, 80)
			w.social.SetRelationship(b.ID, a.ID, agents.RelPartner, 80)
			break
		}
	}
}

// adoptInto records c as the child of the household head and their partner.
func adoptInto(w *World, c *agents.Person, head world.ID) {
	parents := []world.ID{head}
	if h, ok := w.people.Get(head); ok && h.Partner != "" {
		parents = append(parents, h.Partner)
	}
	for _, id := range parents {
		parent, ok := w.people.Get(id)
		if !ok {
			continue
		}
		c.Parents = append(c.Parents, id)
		parent.Children = append(parent.Children, c.ID)
		w.social.SetRelationship(c.ID, id, agents.RelFamily, 100)
		w.social.SetRelationship(id, c.ID, agents.RelFamily, 100)
	}
}

// seedInstitutions founds the council, chapel and guild. The council is
// led by the most influential adult, the guild by the richest owner.
func seedInstitutions(w *World, adults, owners []*agents.Person, rng *rand.Rand) {
	byInfluence := append([]*agents.Person(nil), adults...)
	sort.SliceStable(byInfluence, func(i, j int) bool {
		if byInfluence[i].Stats.Influence != byInfluence[j].Stats.Influence {
			return byInfluence[i].Stats.Influence > byInfluence[j].Stats.Influence
		}
		return byInfluence[i].ID < byInfluence[j].ID
	})

	for _, in := range social.SeedInstitutions(w.NewID) {
		w.AddInstitution(in)
		var members []*agents.Person
		switch in.Kind {
		case social.InstitutionGovernment:
			members = byInfluence[:min(6, len(byInfluence))]
		case social.InstitutionBusiness:
			members = owners
		case social.InstitutionReligion:
			for _, p := range adults {
				if rng.Float64() < 0.3 {
					members = append(members, p)
				}
			}
		}
		for _, p := range members {
			w.institutions.AddMember(in.ID, p.ID)
		}
		if len(members) > 0 {
			w.institutions.SetLeader(in.ID, members[0].ID)
		}
	}
}
