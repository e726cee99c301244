// Person spawning: founders for a fresh world and newborns with
// genetics inherited from both parents.
package agents

import (
	"math/rand"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/talgya/hearthvale/internal/world"
)

// Source is the random source the spawner draws from during a tick.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// Spawner creates founding villagers for world seeding.
type Spawner struct {
	rng   *rand.Rand
	title cases.Caser
}

// NewSpawner creates a spawner with the given seed.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		rng:   rand.New(rand.NewSource(seed + 300)),
		title: cases.Title(language.English),
	}
}

// NewID issues a person ID from the spawner's stream.
func (s *Spawner) NewID() world.ID {
	return world.NewID(s.rng)
}

// Founder creates an adult or child villager at pos. year is the current
// calendar year and fixes YearBorn.
func (s *Spawner) Founder(pos world.Point, year int) *Person {
	sex := SexMale
	if s.rng.Float64() < 0.5 {
		sex = SexFemale
	}
	age := s.weightedAge()

	return &Person{
		ID:       s.NewID(),
		Name:     s.GivenName(sex, s.rng) + " " + s.Surname(s.rng),
		Age:      age,
		YearBorn: year - age,
		Alive:    true,
		Sex:      sex,
		X:        pos.X,
		Y:        pos.Y,
		State:    StateIdle,
		Stats: Stats{
			Wealth:          s.startingWealth(),
			Influence:       s.rng.Intn(60),
			Reputation:      s.rng.Intn(41) - 20,
			Happiness:       50 + s.rng.Intn(41),
			CrimePropensity: s.crimePropensity(),
			Fertility:       30 + s.rng.Intn(61),
		},
		Needs: Needs{
			Food:   60 + s.rng.Intn(41),
			Safety: 60 + s.rng.Intn(41),
			Social: 40 + s.rng.Intn(61),
			Rest:   60 + s.rng.Intn(41),
		},
		Relationships: make(map[world.ID]Relationship),
		Visuals:       s.randomVisuals(),
	}
}

func (s *Spawner) weightedAge() int {
	// Bell curve centred on 30, range 0–80.
	age := 30.0 + s.rng.NormFloat64()*14.0
	return Clamp(int(age), 0, 80)
}

func (s *Spawner) startingWealth() int {
	// Mostly poor, a long tail of comfortable households.
	w := 20 + s.rng.Intn(80)
	if s.rng.Float64() < 0.2 {
		w += 150 + s.rng.Intn(250)
	}
	return w
}

func (s *Spawner) crimePropensity() int {
	p := 10 + s.rng.NormFloat64()*15
	return Clamp(int(p), 0, 100)
}

func (s *Spawner) randomVisuals() Visuals {
	return Visuals{
		SkinColor: skinTones[s.rng.Intn(len(skinTones))],
		HairColor: hairColors[s.rng.Intn(len(hairColors))],
		Height:    MinHeight + s.rng.Float64()*(MaxHeight-MinHeight),
		BodyType:  BodyType(s.rng.Intn(len(bodyNames))),
	}
}

// GivenName draws a first name for sex.
func (s *Spawner) GivenName(sex Sex, rng Source) string {
	pool := maleNames
	if sex == SexFemale {
		pool = femaleNames
	}
	return pool[rng.Intn(len(pool))]
}

// Surname builds a family name from two syllables, e.g. "Ashford".
func (s *Spawner) Surname(rng Source) string {
	head := surnameHeads[rng.Intn(len(surnameHeads))]
	tail := surnameTails[rng.Intn(len(surnameTails))]
	return s.title.String(head + tail)
}

// Child creates a newborn of mother and father. The surname comes from the
// father, falling back to the mother; each visual trait is taken from one
// parent at random and height is their average with a small jitter.
func (s *Spawner) Child(id world.ID, mother, father *Person, year int, rng Source) *Person {
	sex := SexMale
	if rng.Float64() < 0.5 {
		sex = SexFemale
	}

	surname := ""
	if father != nil {
		surname = father.Surname()
	}
	if surname == "" {
		surname = mother.Surname()
	}

	mv := mother.Visuals
	fv := mv
	if father != nil {
		fv = father.Visuals
	}
	skin := mv.SkinColor
	if rng.Float64() >= 0.5 {
		skin = fv.SkinColor
	}
	hair := mv.HairColor
	if rng.Float64() >= 0.5 {
		hair = fv.HairColor
	}
	body := mv.BodyType
	if rng.Float64() >= 0.5 {
		body = fv.BodyType
	}
	height := (mv.Height+fv.Height)/2 + (rng.Float64()-0.5)*0.1

	propensity := mother.Stats.CrimePropensity
	parents := []world.ID{mother.ID}
	if father != nil {
		propensity = (propensity + father.Stats.CrimePropensity) / 2
		parents = append(parents, father.ID)
	}

	return &Person{
		ID:       id,
		Name:     s.GivenName(sex, rng) + " " + surname,
		Age:      0,
		YearBorn: year,
		Alive:    true,
		Sex:      sex,
		X:        mother.X,
		Y:        mother.Y,
		State:    StateIdle,
		Stats: Stats{
			Happiness:       80,
			CrimePropensity: propensity,
			Fertility:       50,
		},
		Needs:         FullNeeds(),
		Relationships: make(map[world.ID]Relationship),
		Parents:       parents,
		Residence:     mother.Residence,
		Visuals: Visuals{
			SkinColor: skin,
			HairColor: hair,
			Height:    Clamp(height, MinHeight, MaxHeight),
			BodyType:  body,
		},
	}
}

// Name pools for procedural generation.
var maleNames = []string{
	"Aldric", "Bram", "Cedric", "Dunstan", "Edric", "Fenn", "Gareth", "Hale",
	"Ivo", "Jory", "Kell", "Lorcan", "Merrick", "Niall", "Osric", "Perrin",
	"Quill", "Rowan", "Silas", "Tobin", "Ulric", "Wendel", "Yorick",
}

var femaleNames = []string{
	"Ada", "Brielle", "Cora", "Delia", "Elsbeth", "Fia", "Greta", "Hilde",
	"Isolde", "Jessa", "Kaya", "Liesel", "Mira", "Nell", "Orla", "Petra",
	"Rosalind", "Sable", "Tamsin", "Una", "Vela", "Wren", "Ysolde",
}

var surnameHeads = []string{
	"ash", "black", "brook", "cole", "elder", "fair", "glen", "hawk",
	"iron", "marsh", "oak", "red", "stone", "thorn", "west", "wood",
}

var surnameTails = []string{
	"ford", "well", "wick", "ridge", "dale", "field", "hurst", "more",
	"ton", "ley", "by", "gate",
}

var skinTones = []string{"#f1c27d", "#e0ac69", "#c68642", "#8d5524", "#ffdbac", "#a1665e"}

var hairColors = []string{"#090806", "#2c222b", "#71635a", "#b7a69e", "#d6c4c2", "#a56b46", "#b55239"}
