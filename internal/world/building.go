package world

// Building is a structure placed on one grid cell. Buildings are never demolished.
type Building struct {
	ID        ID           `json:"id"`
	Type      BuildingType `json:"type"`
	X         int          `json:"x"`
	Y         int          `json:"y"`
	Owner     ID           `json:"owner,omitempty"`
	Employees []ID         `json:"employees"`
	Level     int          `json:"level"`
}

// Pos returns the building position as a continuous point.
func (b *Building) Pos() Point {
	return Point{X: float64(b.X), Y: float64(b.Y)}
}

// Clone returns a copy that shares no roster with b.
func (b *Building) Clone() *Building {
	c := *b
	c.Employees = append([]ID(nil), b.Employees...)
	return &c
}

// HasEmployee reports whether id is on the roster.
func (b *Building) HasEmployee(id ID) bool {
	for _, e := range b.Employees {
		if e == id {
			return true
		}
	}
	return false
}

// AddEmployee puts id on the roster once.
func (b *Building) AddEmployee(id ID) {
	if !b.HasEmployee(id) {
		b.Employees = append(b.Employees, id)
	}
}

// RemoveEmployee drops id from the roster.
func (b *Building) RemoveEmployee(id ID) {
	for i, e := range b.Employees {
		if e == id {
			b.Employees = append(b.Employees[:i], b.Employees[i+1:]...)
			return
		}
	}
}

// Buildings is the building table: insertion-ordered list plus ID index.
type Buildings struct {
	list  []*Building
	index map[ID]*Building
}

// NewBuildings creates a table holding bs in order.
func NewBuildings(bs ...*Building) *Buildings {
	t := &Buildings{index: make(map[ID]*Building, len(bs))}
	for _, b := range bs {
		t.Add(b)
	}
	return t
}

// Add registers b, replacing any building with the same ID.
func (t *Buildings) Add(b *Building) {
	if b.Level < 1 {
		b.Level = 1
	}
	if _, ok := t.index[b.ID]; ok {
		for i, old := range t.list {
			if old.ID == b.ID {
				t.list[i] = b
			}
		}
	} else {
		t.list = append(t.list, b)
	}
	t.index[b.ID] = b
}

// Get looks a building up by ID.
func (t *Buildings) Get(id ID) (*Building, bool) {
	if id == "" {
		return nil, false
	}
	b, ok := t.index[id]
	return b, ok
}

// All returns the buildings in insertion order. The slice is shared; do not append.
func (t *Buildings) All() []*Building {
	return t.list
}

// Len returns the number of buildings.
func (t *Buildings) Len() int {
	return len(t.list)
}

// OfType returns every building of type bt.
func (t *Buildings) OfType(bt BuildingType) []*Building {
	var out []*Building
	for _, b := range t.list {
		if b.Type == bt {
			out = append(out, b)
		}
	}
	return out
}
