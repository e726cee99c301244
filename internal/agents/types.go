// Package agents provides the person data model, the population registry,
// and the spawner that creates founders and newborns.
package agents

import (
	"strings"

	"github.com/talgya/hearthvale/internal/world"
)

// AdultAge is the age at which a person may work, buy land and court.
const AdultAge = 18

// Sex represents biological sex for demographic simulation.
type Sex uint8

const (
	SexMale Sex = iota
	SexFemale
)

var sexNames = []string{"male", "female"}

func (s Sex) String() string { return world.NameOf(sexNames, int(s)) }

func (s Sex) MarshalText() ([]byte, error) { return world.MarshalName(sexNames, int(s), "sex") }

func (s *Sex) UnmarshalText(b []byte) error {
	i, err := world.ParseName(sexNames, b, "sex")
	*s = Sex(i)
	return err
}

// Opposite returns the other sex.
func (s Sex) Opposite() Sex {
	if s == SexMale {
		return SexFemale
	}
	return SexMale
}

// ActivityState is what a person is doing during the current tick.
type ActivityState uint8

const (
	StateIdle ActivityState = iota
	StateMoving
	StateWorking
	StateSleeping
	StateProtesting
	StateImprisoned
)

var stateNames = []string{"idle", "moving", "working", "sleeping", "protesting", "imprisoned"}

func (s ActivityState) String() string { return world.NameOf(stateNames, int(s)) }

func (s ActivityState) MarshalText() ([]byte, error) {
	return world.MarshalName(stateNames, int(s), "activity state")
}

func (s *ActivityState) UnmarshalText(b []byte) error {
	i, err := world.ParseName(stateNames, b, "activity state")
	*s = ActivityState(i)
	return err
}

// RelationKind categorises a directed relationship edge.
type RelationKind uint8

const (
	RelFriend RelationKind = iota
	RelEnemy
	RelFamily
	RelPartner
)

var relationNames = []string{"friend", "enemy", "family", "partner"}

func (k RelationKind) String() string { return world.NameOf(relationNames, int(k)) }

func (k RelationKind) MarshalText() ([]byte, error) {
	return world.MarshalName(relationNames, int(k), "relationship kind")
}

func (k *RelationKind) UnmarshalText(b []byte) error {
	i, err := world.ParseName(relationNames, b, "relationship kind")
	*k = RelationKind(i)
	return err
}

// Relationship is one directed edge owned by the source person.
type Relationship struct {
	TargetID world.ID     `json:"target_id"`
	Kind     RelationKind `json:"kind"`
	Value    int          `json:"value"` // -100 to 100
}

// Person is a single simulated villager.
type Person struct {
	ID       world.ID `json:"id"`
	Name     string   `json:"name"`
	Age      int      `json:"age"`
	YearBorn int      `json:"year_born"`
	Alive    bool     `json:"alive"`
	Sex      Sex      `json:"sex"`

	// Position & motion
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Target *world.Point  `json:"target,omitempty"`
	State  ActivityState `json:"state"`

	Stats Stats `json:"stats"`
	Needs Needs `json:"needs"`

	Relationships map[world.ID]Relationship `json:"relationships"`

	// Family
	Parents  []world.ID `json:"parents"`
	Children []world.ID `json:"children"`
	Partner  world.ID   `json:"partner,omitempty"`

	// Economy
	Job       *Job     `json:"job,omitempty"`
	Residence world.ID `json:"residence,omitempty"`

	Visuals Visuals `json:"visuals"`
}

// Pos returns the current position.
func (p *Person) Pos() world.Point {
	return world.Point{X: p.X, Y: p.Y}
}

// SetPos moves the person to pt.
func (p *Person) SetPos(pt world.Point) {
	p.X, p.Y = pt.X, pt.Y
}

// IsAdult reports whether the person has reached AdultAge.
func (p *Person) IsAdult() bool {
	return p.Age >= AdultAge
}

// Imprisoned reports whether the person is held in jail.
func (p *Person) Imprisoned() bool {
	return p.State == StateImprisoned
}

// Employed reports whether the person holds a job.
func (p *Person) Employed() bool {
	return p.Job != nil
}

// Relation returns the edge p holds toward target.
func (p *Person) Relation(target world.ID) (Relationship, bool) {
	r, ok := p.Relationships[target]
	return r, ok
}

// Surname returns the last token of the person's name.
func (p *Person) Surname() string {
	fields := strings.Fields(p.Name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// Clone returns a deep copy of p.
func (p *Person) Clone() *Person {
	c := *p
	if p.Target != nil {
		t := *p.Target
		c.Target = &t
	}
	if p.Job != nil {
		j := *p.Job
		c.Job = &j
	}
	c.Relationships = make(map[world.ID]Relationship, len(p.Relationships))
	for k, v := range p.Relationships {
		c.Relationships[k] = v
	}
	c.Parents = append([]world.ID(nil), p.Parents...)
	c.Children = append([]world.ID(nil), p.Children...)
	return &c
}

// Clamp pulls every bounded stat and need back into range.
func (p *Person) Clamp() {
	p.Stats.Clamp()
	p.Needs.Clamp()
	if p.Age < 0 {
		p.Age = 0
	}
}

// BodyType is the rendered build of a person.
type BodyType uint8

const (
	BodyThin BodyType = iota
	BodyAverage
	BodyStocky
)

var bodyNames = []string{"thin", "average", "stocky"}

func (b BodyType) String() string { return world.NameOf(bodyNames, int(b)) }

func (b BodyType) MarshalText() ([]byte, error) {
	return world.MarshalName(bodyNames, int(b), "body type")
}

func (b *BodyType) UnmarshalText(t []byte) error {
	i, err := world.ParseName(bodyNames, t, "body type")
	*b = BodyType(i)
	return err
}

// Visuals is the inherited appearance bundle. Only renderers read it.
type Visuals struct {
	SkinColor string   `json:"skin_color"` // hex
	HairColor string   `json:"hair_color"` // hex
	Height    float64  `json:"height"`     // 0.8–1.2 multiplier
	BodyType  BodyType `json:"body_type"`
}

// Height bounds for Visuals.Height.
const (
	MinHeight = 0.8
	MaxHeight = 1.2
)
