package engine

import (
	"fmt"
	"testing"

	"github.com/talgya/hearthvale/internal/agents"
	"github.com/talgya/hearthvale/internal/world"
)

// remains is what must never change once a person has died.
type remains struct {
	age     int
	stats   agents.Stats
	needs   agents.Needs
	x, y    float64
	partner world.ID
}

func TestInvariantsHoldOverYears(t *testing.T) {
	years := 2
	if testing.Short() {
		years = 1
	}
	ticks := years * WeeksPerYear * DaysPerWeek * HoursPerDay

	for _, seed := range []int64{1, 2, 3} {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			gen := world.SmallTestConfig()
			gen.Seed = seed
			w := NewSeededWorld(gen, smallSeedConfig(), DefaultTuning())

			dead := make(map[world.ID]remains)
			for i := 0; i < ticks; i++ {
				w.Advance()
				if err := checkInvariants(w, dead); err != nil {
					t.Fatalf("tick %d (%s): %v", w.Ticks(), w.Clock(), err)
				}
			}
			if w.Clock().Year != 1+years {
				t.Errorf("year = %d, want %d", w.Clock().Year, 1+years)
			}
		})
	}
}

func checkInvariants(w *World, dead map[world.ID]remains) error {
	if n := w.Events().Len(); n > MaxEvents {
		return fmt.Errorf("event log holds %d, max %d", n, MaxEvents)
	}
	for _, p := range w.People().All() {
		if p.Partner != "" {
			partner, ok := w.People().Get(p.Partner)
			if !ok || partner.Partner != p.ID {
				return fmt.Errorf("%s: partner link not symmetric", p.Name)
			}
		}

		if !p.Alive {
			r := remains{p.Age, p.Stats, p.Needs, p.X, p.Y, p.Partner}
			if prev, ok := dead[p.ID]; ok && prev != r {
				return fmt.Errorf("%s changed after death: %+v → %+v", p.Name, prev, r)
			}
			dead[p.ID] = r
			continue
		}

		if p.Stats.Wealth < 0 {
			return fmt.Errorf("%s: wealth %d", p.Name, p.Stats.Wealth)
		}
		if p.Stats.Reputation < -100 || p.Stats.Reputation > 100 {
			return fmt.Errorf("%s: reputation %d", p.Name, p.Stats.Reputation)
		}
		bounded := map[string]int{
			"food":             p.Needs.Food,
			"safety":           p.Needs.Safety,
			"social":           p.Needs.Social,
			"rest":             p.Needs.Rest,
			"influence":        p.Stats.Influence,
			"happiness":        p.Stats.Happiness,
			"crime propensity": p.Stats.CrimePropensity,
			"fertility":        p.Stats.Fertility,
		}
		for name, v := range bounded {
			if v < 0 || v > 100 {
				return fmt.Errorf("%s: %s %d outside 0–100", p.Name, name, v)
			}
		}
	}
	return nil
}
