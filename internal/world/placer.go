// Lot placement: finds buildable cells for a village layout.
package world

import (
	"math"
	"math/rand"
	"sort"
)

// Lot is a candidate building site.
type Lot struct {
	X     int
	Y     int
	Score float64 // Desirability score
}

// Pos returns the lot as a point.
func (l Lot) Pos() Point {
	return Point{X: float64(l.X), Y: float64(l.Y)}
}

// PlaceLots scores every free grass cell and returns up to n lots, best
// first, no two closer than minDist on either axis.
func PlaceLots(g *Grid, n, minDist int, seed int64) []Lot {
	rng := rand.New(rand.NewSource(seed + 200))

	var candidates []Lot
	for y := 0; y < g.Size(); y++ {
		for x := 0; x < g.Size(); x++ {
			c, _ := g.CellAt(x, y)
			if c.Type != CellGrass || c.Building != "" || c.Owner != "" {
				continue
			}
			candidates = append(candidates, Lot{X: x, Y: y, Score: lotScore(g, x, y) + rng.Float64()*0.05})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].Y != candidates[j].Y {
			return candidates[i].Y < candidates[j].Y
		}
		return candidates[i].X < candidates[j].X
	})

	var lots []Lot
	for _, c := range candidates {
		if len(lots) >= n {
			break
		}
		if tooClose(c, lots, minDist) {
			continue
		}
		lots = append(lots, c)
	}
	return lots
}

// lotScore favours cells near the centre and next to a road.
func lotScore(g *Grid, x, y int) float64 {
	mid := float64(g.Size()) / 2
	dist := math.Hypot(float64(x)-mid, float64(y)-mid)
	score := 1 / (1 + dist/10)

	for _, d := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		if c, ok := g.CellAt(x+d[0], y+d[1]); ok && c.Type == CellRoad {
			score += 0.5
			break
		}
	}
	return score
}

func tooClose(c Lot, lots []Lot, minDist int) bool {
	for _, l := range lots {
		if abs(c.X-l.X) < minDist && abs(c.Y-l.Y) < minDist {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
