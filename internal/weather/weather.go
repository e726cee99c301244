// Package weather holds the weather kinds, the calendar seasons, and the
// per-season weight tables the weather system samples from.
package weather

import "github.com/talgya/hearthvale/internal/world"

// Kind is the current sky.
type Kind uint8

const (
	Clear Kind = iota
	Rain
	Snow
)

var kindNames = []string{"clear", "rain", "snow"}

// Kinds lists every weather kind in sampling order.
func Kinds() []Kind {
	return []Kind{Clear, Rain, Snow}
}

func (k Kind) String() string { return world.NameOf(kindNames, int(k)) }

func (k Kind) MarshalText() ([]byte, error) { return world.MarshalName(kindNames, int(k), "weather") }

func (k *Kind) UnmarshalText(b []byte) error {
	i, err := world.ParseName(kindNames, b, "weather")
	*k = Kind(i)
	return err
}

// Season is a bucket of calendar weeks.
type Season uint8

const (
	Spring Season = iota
	Summer
	Autumn
	Winter
)

var seasonNames = []string{"Spring", "Summer", "Autumn", "Winter"}

// Seasons lists every season.
func Seasons() []Season {
	return []Season{Spring, Summer, Autumn, Winter}
}

func (s Season) String() string { return world.NameOf(seasonNames, int(s)) }

// IsWinterWeek reports whether week falls in winter: after week 45 or before week 10.
func IsWinterWeek(week int) bool {
	return week > 45 || week < 10
}

// SeasonOf returns the season for a calendar week (1–52).
func SeasonOf(week int) Season {
	switch {
	case IsWinterWeek(week):
		return Winter
	case week < 25:
		return Spring
	case week < 40:
		return Summer
	default:
		return Autumn
	}
}

// weights holds the clear/rain/snow probabilities per season, in Kinds() order.
var weights = map[Season][3]float64{
	Winter: {0.3, 0.2, 0.5},
	Spring: {0.4, 0.6, 0.0},
	Summer: {0.8, 0.2, 0.0},
	Autumn: {0.6, 0.3, 0.1},
}

// Weights returns the sampling weights for s.
func Weights(s Season) [3]float64 {
	return weights[s]
}

// Draw samples a weather kind for season s from a single uniform draw r
// in [0, 1) using cumulative weights. Draws past the last bucket fall back
// to Clear.
func Draw(s Season, r float64) Kind {
	w := weights[s]
	sum := 0.0
	for i, k := range Kinds() {
		sum += w[i]
		if r < sum {
			return k
		}
	}
	return Clear
}

// Describe returns a short human-readable description of the sky.
func Describe(k Kind, s Season) string {
	switch k {
	case Rain:
		if s == Winter {
			return "cold winter rain"
		}
		return "steady " + lower(s) + " rain"
	case Snow:
		return "falling snow"
	default:
		switch s {
		case Spring:
			return "mild spring weather"
		case Summer:
			return "warm summer sun"
		case Autumn:
			return "cool autumn breeze"
		default:
			return "clear winter chill"
		}
	}
}

func lower(s Season) string {
	switch s {
	case Spring:
		return "spring"
	case Summer:
		return "summer"
	case Autumn:
		return "autumn"
	default:
		return "winter"
	}
}
