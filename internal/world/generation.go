// Terrain generation using layered simplex noise.
// Elevation and moisture maps are sampled per cell and mapped to terrain types;
// the middle of the map is lifted so a village always has dry land to stand on.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds terrain generation parameters.
type GenConfig struct {
	Size       int     // Grid edge length
	Seed       int64   // Noise seed (0 = random)
	SeaLevel   float64 // Elevation below which cells are water (0.0–1.0)
	StoneLevel float64 // Elevation above which cells are bare stone
	ForestWet  float64 // Moisture above which grass becomes forest
	CoreRadius float64 // Radius around the centre kept above sea level
}

// DefaultGenConfig returns the standard 200×200 configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Size:       DefaultGridSize,
		SeaLevel:   0.28,
		StoneLevel: 0.82,
		ForestWet:  0.64,
		CoreRadius: 30,
	}
}

// SmallTestConfig returns a tiny grid for tests.
func SmallTestConfig() GenConfig {
	cfg := DefaultGenConfig()
	cfg.Size = 40
	cfg.Seed = 42
	cfg.CoreRadius = 10
	return cfg
}

// Generate creates a grid with terrain and a road cross through the centre.
func Generate(cfg GenConfig) *Grid {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	wetNoise := opensimplex.NewNormalized(seed + 1)

	g := NewGrid(cfg.Size)
	centre := float64(cfg.Size-1) / 2

	for y := 0; y < cfg.Size; y++ {
		for x := 0; x < cfg.Size; x++ {
			fx, fy := float64(x), float64(y)
			elev := octaveNoise(elevNoise, fx, fy, 4, 0.03, 0.5)
			wet := octaveNoise(wetNoise, fx, fy, 3, 0.05, 0.5)

			// Lift the core so the village site is never flooded.
			dist := math.Hypot(fx-centre, fy-centre)
			if cfg.CoreRadius > 0 && dist < cfg.CoreRadius {
				lift := 1 - dist/cfg.CoreRadius
				elev = elev*(1-lift) + 0.5*lift
				wet = wet * (1 - lift*0.5)
			}

			g.SetCellType(x, y, deriveCellType(elev, wet, cfg))
		}
	}

	placeRoads(g)
	return g
}

// deriveCellType maps environmental parameters to a terrain type.
func deriveCellType(elev, wet float64, cfg GenConfig) CellType {
	if elev < cfg.SeaLevel {
		return CellWater
	}
	if elev < cfg.SeaLevel+0.04 {
		return CellSand
	}
	if elev > cfg.StoneLevel {
		return CellStone
	}
	if wet > cfg.ForestWet {
		return CellForest
	}
	return CellGrass
}

// placeRoads lays a road cross through the centre. Roads stop at water.
func placeRoads(g *Grid) {
	mid := g.Size() / 2
	for _, dir := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		x, y := mid, mid
		for g.InBounds(x, y) {
			c, _ := g.CellAt(x, y)
			if c.Type == CellWater {
				break
			}
			g.SetCellType(x, y, CellRoad)
			x += dir[0]
			y += dir[1]
		}
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(g *Grid) map[CellType]int {
	return g.TypeCounts()
}
