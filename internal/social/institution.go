// Institutions: governments, religions and businesses with a leader and
// a member roster.
package social

import (
	"github.com/talgya/hearthvale/internal/agents"
	"github.com/talgya/hearthvale/internal/world"
)

// InstitutionKind categorizes the nature of an institution.
type InstitutionKind uint8

const (
	InstitutionGovernment InstitutionKind = iota
	InstitutionReligion
	InstitutionBusiness
)

var institutionKindNames = []string{"government", "religion", "business"}

func (k InstitutionKind) String() string { return world.NameOf(institutionKindNames, int(k)) }

func (k InstitutionKind) MarshalText() ([]byte, error) {
	return world.MarshalName(institutionKindNames, int(k), "institution kind")
}

func (k *InstitutionKind) UnmarshalText(b []byte) error {
	i, err := world.ParseName(institutionKindNames, b, "institution kind")
	*k = InstitutionKind(i)
	return err
}

// Institution is a named organization.
type Institution struct {
	ID      world.ID        `json:"id"`
	Name    string          `json:"name"`
	Kind    InstitutionKind `json:"kind"`
	Leader  world.ID        `json:"leader,omitempty"`
	Members []world.ID      `json:"members"`
}

// HasMember reports whether id is on the roster.
func (in *Institution) HasMember(id world.ID) bool {
	for _, m := range in.Members {
		if m == id {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no roster with in.
func (in *Institution) Clone() *Institution {
	c := *in
	c.Members = append([]world.ID(nil), in.Members...)
	return &c
}

// Institutions is the institution registry: insertion order plus ID index.
type Institutions struct {
	list  []*Institution
	index map[world.ID]*Institution
}

// NewInstitutions creates a registry holding ins in order.
func NewInstitutions(ins ...*Institution) *Institutions {
	r := &Institutions{index: make(map[world.ID]*Institution, len(ins))}
	for _, in := range ins {
		r.Add(in)
	}
	return r
}

// Add registers in, replacing any institution with the same ID.
func (r *Institutions) Add(in *Institution) {
	if _, ok := r.index[in.ID]; ok {
		for i, old := range r.list {
			if old.ID == in.ID {
				r.list[i] = in
			}
		}
	} else {
		r.list = append(r.list, in)
	}
	r.index[in.ID] = in
}

// Get looks an institution up by ID.
func (r *Institutions) Get(id world.ID) (*Institution, bool) {
	in, ok := r.index[id]
	return in, ok
}

// All returns every institution in insertion order.
func (r *Institutions) All() []*Institution {
	return r.list
}

// LedBy returns the institutions whose leader is person.
func (r *Institutions) LedBy(person world.ID) []*Institution {
	var out []*Institution
	for _, in := range r.list {
		if in.Leader == person {
			out = append(out, in)
		}
	}
	return out
}

// AddMember puts person on the roster once.
func (r *Institutions) AddMember(id, person world.ID) bool {
	in, ok := r.index[id]
	if !ok {
		return false
	}
	if !in.HasMember(person) {
		in.Members = append(in.Members, person)
	}
	return true
}

// RemoveMember drops person from the roster.
func (r *Institutions) RemoveMember(id, person world.ID) bool {
	in, ok := r.index[id]
	if !ok {
		return false
	}
	for i, m := range in.Members {
		if m == person {
			in.Members = append(in.Members[:i], in.Members[i+1:]...)
			break
		}
	}
	return true
}

// SetLeader makes person the leader, adding them to the roster. An empty
// ID leaves the institution leaderless.
func (r *Institutions) SetLeader(id, person world.ID) bool {
	in, ok := r.index[id]
	if !ok {
		return false
	}
	in.Leader = person
	if person != "" && !in.HasMember(person) {
		in.Members = append(in.Members, person)
	}
	return true
}

// FindSuccessor picks the living member with the highest influence, ties
// broken by ID. The current leader is never chosen.
func (r *Institutions) FindSuccessor(id world.ID, people *agents.Registry) (world.ID, bool) {
	in, ok := r.index[id]
	if !ok {
		return "", false
	}
	var best *agents.Person
	for _, m := range in.Members {
		if m == in.Leader {
			continue
		}
		p, ok := people.GetLiving(m)
		if !ok {
			continue
		}
		if best == nil ||
			p.Stats.Influence > best.Stats.Influence ||
			(p.Stats.Influence == best.Stats.Influence && p.ID < best.ID) {
			best = p
		}
	}
	if best == nil {
		return "", false
	}
	return best.ID, true
}

// SeedInstitutions creates the founding institutions of a village.
func SeedInstitutions(newID func() world.ID) []*Institution {
	return []*Institution{
		{ID: newID(), Name: "Village Council", Kind: InstitutionGovernment},
		{ID: newID(), Name: "Chapel of the Hearth", Kind: InstitutionReligion},
		{ID: newID(), Name: "Merchants' Guild", Kind: InstitutionBusiness},
	}
}
