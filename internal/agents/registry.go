package agents

import "github.com/talgya/hearthvale/internal/world"

// Registry holds every person ever created, alive or dead, in creation
// order with an ID index. Dead people stay as historical records.
type Registry struct {
	list  []*Person
	index map[world.ID]*Person
}

// NewRegistry creates a registry holding ps in order.
func NewRegistry(ps ...*Person) *Registry {
	r := &Registry{index: make(map[world.ID]*Person, len(ps))}
	for _, p := range ps {
		r.Add(p)
	}
	return r
}

// Add registers p, replacing any person with the same ID.
func (r *Registry) Add(p *Person) {
	if p.Relationships == nil {
		p.Relationships = make(map[world.ID]Relationship)
	}
	if _, ok := r.index[p.ID]; ok {
		for i, old := range r.list {
			if old.ID == p.ID {
				r.list[i] = p
			}
		}
	} else {
		r.list = append(r.list, p)
	}
	r.index[p.ID] = p
}

// Get looks a person up by ID.
func (r *Registry) Get(id world.ID) (*Person, bool) {
	if id == "" {
		return nil, false
	}
	p, ok := r.index[id]
	return p, ok
}

// GetLiving looks a person up by ID and reports false for the dead.
func (r *Registry) GetLiving(id world.ID) (*Person, bool) {
	p, ok := r.Get(id)
	if !ok || !p.Alive {
		return nil, false
	}
	return p, true
}

// All returns everyone in creation order. The slice is shared; do not append.
func (r *Registry) All() []*Person {
	return r.list
}

// Living returns the living people in creation order.
func (r *Registry) Living() []*Person {
	out := make([]*Person, 0, len(r.list))
	for _, p := range r.list {
		if p.Alive {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of people ever registered.
func (r *Registry) Len() int {
	return len(r.list)
}

// LivingCount returns the number of living people.
func (r *Registry) LivingCount() int {
	n := 0
	for _, p := range r.list {
		if p.Alive {
			n++
		}
	}
	return n
}
