package engine

import "math"

// Crime-risk and homelessness thresholds for the statistics snapshot.
const (
	crimeRiskPropensity = 50
	homelessWealth      = 50
)

// Stats is the aggregate snapshot refreshed every tick.
type Stats struct {
	Population   int     `json:"population"`
	AvgHappiness int     `json:"avg_happiness"`
	AvgWealth    int     `json:"avg_wealth"`
	CrimeRate    float64 `json:"crime_rate"` // share of people with propensity above 50
	Homeless     int     `json:"homeless"`   // people with wealth below 50
	Employed     int     `json:"employed"`
	Imprisoned   int     `json:"imprisoned"`
	TotalWealth  int     `json:"total_wealth"`
	Treasury     int     `json:"treasury"`
}

// StatsSystem recomputes the statistics snapshot over the living.
type StatsSystem struct{}

func (StatsSystem) Name() string { return "stats" }

func (StatsSystem) Process(w *World, _ Boundaries, _ Rand) {
	w.stats = computeStats(w)
}

func computeStats(w *World) Stats {
	var s Stats
	totalHappiness := 0
	risky := 0
	for _, p := range w.people.Living() {
		s.Population++
		totalHappiness += p.Stats.Happiness
		s.TotalWealth += p.Stats.Wealth
		if p.Stats.CrimePropensity > crimeRiskPropensity {
			risky++
		}
		if p.Stats.Wealth < homelessWealth {
			s.Homeless++
		}
		if p.Job != nil {
			s.Employed++
		}
		if p.Imprisoned() {
			s.Imprisoned++
		}
	}
	s.Treasury = w.treasury.Funds
	if s.Population == 0 {
		return Stats{Treasury: s.Treasury}
	}
	s.AvgHappiness = totalHappiness / s.Population
	s.AvgWealth = s.TotalWealth / s.Population
	s.CrimeRate = math.Round(float64(risky)/float64(s.Population)*100) / 100
	return s
}
