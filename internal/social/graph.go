// Package social provides the relationship graph and the institution
// registry. Both are views over collections owned by the world.
package social

import (
	"sort"

	"github.com/talgya/hearthvale/internal/agents"
	"github.com/talgya/hearthvale/internal/world"
)

// EnemyThreshold is the edge value at or below which a target counts as an enemy.
const EnemyThreshold = -50

// Graph is the social query and mutation facade over a person registry.
// It holds no state of its own: every write lands on the people it wraps.
type Graph struct {
	people *agents.Registry
}

// NewGraph wraps reg.
func NewGraph(reg *agents.Registry) *Graph {
	return &Graph{people: reg}
}

// AddPerson registers p in the underlying registry.
func (g *Graph) AddPerson(p *agents.Person) {
	g.people.Add(p)
}

// Person looks a person up by ID.
func (g *Graph) Person(id world.ID) (*agents.Person, bool) {
	return g.people.Get(id)
}

// People returns a snapshot of everyone in the registry.
func (g *Graph) People() []*agents.Person {
	all := g.people.All()
	out := make([]*agents.Person, len(all))
	copy(out, all)
	return out
}

// SetRelationship overwrites the directed edge from → to. The value is
// clamped to -100..100. It reports false when from is unknown.
func (g *Graph) SetRelationship(from, to world.ID, kind agents.RelationKind, value int) bool {
	p, ok := g.people.Get(from)
	if !ok {
		return false
	}
	if p.Relationships == nil {
		p.Relationships = make(map[world.ID]agents.Relationship)
	}
	p.Relationships[to] = agents.Relationship{
		TargetID: to,
		Kind:     kind,
		Value:    agents.Clamp(value, -100, 100),
	}
	return true
}

// Adjust shifts the edge from → to by delta and sets its kind. A missing
// edge starts at zero.
func (g *Graph) Adjust(from, to world.ID, kind agents.RelationKind, delta int) bool {
	p, ok := g.people.Get(from)
	if !ok {
		return false
	}
	return g.SetRelationship(from, to, kind, p.Relationships[to].Value+delta)
}

// Mutual returns the weaker of the two directed edge values between a and b.
// ok is false unless both edges exist.
func (g *Graph) Mutual(a, b world.ID) (int, bool) {
	pa, ok := g.people.Get(a)
	if !ok {
		return 0, false
	}
	pb, ok := g.people.Get(b)
	if !ok {
		return 0, false
	}
	ab, ok1 := pa.Relationships[b]
	ba, ok2 := pb.Relationships[a]
	if !ok1 || !ok2 {
		return 0, false
	}
	return min(ab.Value, ba.Value), true
}

// TopRelationships returns up to n edges of id ordered by descending
// absolute value, ties broken by target ID.
func (g *Graph) TopRelationships(id world.ID, n int) []agents.Relationship {
	p, ok := g.people.Get(id)
	if !ok || n <= 0 {
		return nil
	}
	rels := make([]agents.Relationship, 0, len(p.Relationships))
	for _, r := range p.Relationships {
		rels = append(rels, r)
	}
	sort.Slice(rels, func(i, j int) bool {
		ai, aj := abs(rels[i].Value), abs(rels[j].Value)
		if ai != aj {
			return ai > aj
		}
		return rels[i].TargetID < rels[j].TargetID
	})
	if len(rels) > n {
		rels = rels[:n]
	}
	return rels
}

// EnemiesBelow returns the targets whose edge value is at or below
// threshold, sorted by ID.
func (g *Graph) EnemiesBelow(id world.ID, threshold int) []world.ID {
	p, ok := g.people.Get(id)
	if !ok {
		return nil
	}
	var out []world.ID
	for target, r := range p.Relationships {
		if r.Value <= threshold {
			out = append(out, target)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
