package world

import "fmt"

// DefaultGridSize is the edge length of a freshly generated grid.
const DefaultGridSize = 200

// Cell is one square of terrain. Owner and Building are empty when unset.
type Cell struct {
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Type     CellType `json:"type"`
	Owner    ID       `json:"owner,omitempty"`
	Building ID       `json:"building,omitempty"`
}

// Grid holds the dense terrain array. Cells are only mutated through Grid
// methods so the owner index stays in step with the cells.
type Grid struct {
	size  int
	cells []Cell
	owned map[ID]int // owner → number of cells held
}

// NewGrid creates a size×size grid of unowned grass.
func NewGrid(size int) *Grid {
	if size < 1 {
		size = 1
	}
	g := &Grid{
		size:  size,
		cells: make([]Cell, size*size),
		owned: make(map[ID]int),
	}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			g.cells[y*size+x] = Cell{X: x, Y: y, Type: CellGrass}
		}
	}
	return g
}

// RestoreGrid rebuilds a grid from its sparse cell list (see Sparse).
func RestoreGrid(size int, sparse []Cell) (*Grid, error) {
	if size < 1 {
		return nil, fmt.Errorf("invalid grid size %d", size)
	}
	g := NewGrid(size)
	for _, c := range sparse {
		if !g.InBounds(c.X, c.Y) {
			return nil, fmt.Errorf("cell (%d,%d) outside %dx%d grid", c.X, c.Y, size, size)
		}
		g.cells[c.Y*size+c.X] = c
		if c.Owner != "" {
			g.owned[c.Owner]++
		}
	}
	return g, nil
}

// Size returns the grid edge length.
func (g *Grid) Size() int {
	return g.size
}

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.size && y >= 0 && y < g.size
}

// CellAt returns a copy of the cell at (x, y). ok is false out of bounds.
func (g *Grid) CellAt(x, y int) (Cell, bool) {
	if !g.InBounds(x, y) {
		return Cell{}, false
	}
	return g.cells[y*g.size+x], true
}

// CellAtPoint returns the cell containing p.
func (g *Grid) CellAtPoint(p Point) (Cell, bool) {
	x, y := p.Cell()
	return g.CellAt(x, y)
}

// SetCellType retypes a cell. Out-of-bounds coordinates are ignored.
func (g *Grid) SetCellType(x, y int, t CellType) {
	if !g.InBounds(x, y) {
		return
	}
	g.cells[y*g.size+x].Type = t
}

// SetOwner assigns (or with an empty ID clears) the owner of a cell.
func (g *Grid) SetOwner(x, y int, owner ID) bool {
	if !g.InBounds(x, y) {
		return false
	}
	c := &g.cells[y*g.size+x]
	if c.Owner != "" {
		g.owned[c.Owner]--
		if g.owned[c.Owner] <= 0 {
			delete(g.owned, c.Owner)
		}
	}
	c.Owner = owner
	if owner != "" {
		g.owned[owner]++
	}
	return true
}

// SetBuilding records the building standing on a cell.
func (g *Grid) SetBuilding(x, y int, building ID) bool {
	if !g.InBounds(x, y) {
		return false
	}
	g.cells[y*g.size+x].Building = building
	return true
}

// OwnedCount returns how many cells owner holds.
func (g *Grid) OwnedCount(owner ID) int {
	return g.owned[owner]
}

// Clamp pulls p inside the grid.
func (g *Grid) Clamp(p Point) Point {
	max := float64(g.size - 1)
	p.X = clampFloat(p.X, 0, max)
	p.Y = clampFloat(p.Y, 0, max)
	return p
}

// Sparse returns every cell that differs from unowned, empty grass.
// Together with Size it describes the grid losslessly.
func (g *Grid) Sparse() []Cell {
	var out []Cell
	for _, c := range g.cells {
		if c.Type != CellGrass || c.Owner != "" || c.Building != "" {
			out = append(out, c)
		}
	}
	return out
}

// TypeCounts returns the number of cells of each terrain type.
func (g *Grid) TypeCounts() map[CellType]int {
	counts := make(map[CellType]int)
	for _, c := range g.cells {
		counts[c.Type]++
	}
	return counts
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, owners=%d)", g.size, g.size, len(g.owned))
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
