package agents

import "golang.org/x/exp/constraints"

// Needs tracks the four physiological needs. All values range from 0
// (critical) to 100 (fully met).
type Needs struct {
	Food   int `json:"food"`
	Safety int `json:"safety"`
	Social int `json:"social"`
	Rest   int `json:"rest"`
}

// FullNeeds returns a need bundle with every need satisfied.
func FullNeeds() Needs {
	return Needs{Food: 100, Safety: 100, Social: 100, Rest: 100}
}

// Clamp keeps every need within 0–100.
func (n *Needs) Clamp() {
	n.Food = Clamp(n.Food, 0, 100)
	n.Safety = Clamp(n.Safety, 0, 100)
	n.Social = Clamp(n.Social, 0, 100)
	n.Rest = Clamp(n.Rest, 0, 100)
}

// Stats is a person's social and economic standing.
type Stats struct {
	Wealth          int `json:"wealth"`           // never negative
	Influence       int `json:"influence"`        // 0–100
	Reputation      int `json:"reputation"`       // -100–100
	Happiness       int `json:"happiness"`        // 0–100
	CrimePropensity int `json:"crime_propensity"` // 0–100
	Fertility       int `json:"fertility"`        // 0–100
}

// Clamp keeps every stat within its documented range.
func (s *Stats) Clamp() {
	if s.Wealth < 0 {
		s.Wealth = 0
	}
	s.Influence = Clamp(s.Influence, 0, 100)
	s.Reputation = Clamp(s.Reputation, -100, 100)
	s.Happiness = Clamp(s.Happiness, 0, 100)
	s.CrimePropensity = Clamp(s.CrimePropensity, 0, 100)
	s.Fertility = Clamp(s.Fertility, 0, 100)
}

// Clamp bounds v to [lo, hi].
func Clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
