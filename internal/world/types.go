// Package world provides the square terrain grid, buildings, and spatial
// data structures shared by every simulation system.
package world

import (
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"
)

// ID identifies any entity in the world: people, buildings, institutions, events.
type ID string

// NewID draws a UUID v4 from r. A seeded reader makes IDs reproducible.
func NewID(r io.Reader) ID {
	u, err := uuid.NewRandomFromReader(r)
	if err != nil {
		// Only reachable if the reader fails; fall back to the global pool.
		return ID(uuid.NewString())
	}
	return ID(u.String())
}

// Point is a continuous position on the grid.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Cell returns the integer cell coordinates containing p.
func (p Point) Cell() (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y))
}

// CellType is the terrain kind of a grid cell.
type CellType uint8

const (
	CellGrass CellType = iota
	CellRoad
	CellWater
	CellWall
	CellStone
	CellSand
	CellForest
)

var cellTypeNames = []string{"grass", "road", "water", "wall", "stone", "sand", "forest"}

// CellTypes lists every cell type in declaration order.
func CellTypes() []CellType {
	return []CellType{CellGrass, CellRoad, CellWater, CellWall, CellStone, CellSand, CellForest}
}

func (t CellType) String() string { return NameOf(cellTypeNames, int(t)) }

func (t CellType) MarshalText() ([]byte, error) {
	return MarshalName(cellTypeNames, int(t), "cell type")
}

func (t *CellType) UnmarshalText(b []byte) error {
	i, err := ParseName(cellTypeNames, b, "cell type")
	*t = CellType(i)
	return err
}

// BuildingType is the function of a building.
type BuildingType uint8

const (
	BuildingHouse BuildingType = iota
	BuildingSchool
	BuildingHospital
	BuildingJail
	BuildingFarm
	BuildingShop
	BuildingPoliceStation
	BuildingGovernment
	BuildingCommercial
	BuildingPark
)

var buildingTypeNames = []string{
	"house", "school", "hospital", "jail", "farm", "shop",
	"police_station", "government", "commercial", "park",
}

// BuildingTypes lists every building type in declaration order.
func BuildingTypes() []BuildingType {
	return []BuildingType{
		BuildingHouse, BuildingSchool, BuildingHospital, BuildingJail, BuildingFarm,
		BuildingShop, BuildingPoliceStation, BuildingGovernment, BuildingCommercial, BuildingPark,
	}
}

func (t BuildingType) String() string { return NameOf(buildingTypeNames, int(t)) }

func (t BuildingType) MarshalText() ([]byte, error) {
	return MarshalName(buildingTypeNames, int(t), "building type")
}

func (t *BuildingType) UnmarshalText(b []byte) error {
	i, err := ParseName(buildingTypeNames, b, "building type")
	*t = BuildingType(i)
	return err
}

// Residential reports whether people live in the building rather than work there.
func (t BuildingType) Residential() bool {
	return t == BuildingHouse
}

// NameOf returns names[i], or "unknown" when i is out of range.
func NameOf(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return "unknown"
	}
	return names[i]
}

// MarshalName encodes an enum value by its name, rejecting values with no name.
func MarshalName(names []string, i int, kind string) ([]byte, error) {
	if i < 0 || i >= len(names) {
		return nil, fmt.Errorf("invalid %s %d", kind, i)
	}
	return []byte(names[i]), nil
}

// ParseName resolves an enum name back to its index.
func ParseName(names []string, b []byte, kind string) (int, error) {
	s := string(b)
	for i, n := range names {
		if n == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}
