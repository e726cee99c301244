package agents

import (
	"encoding/json"
	"testing"

	"github.com/talgya/hearthvale/internal/world"
)

// fixedSource returns queued floats (0.99 once exhausted) and always picks index 0.
type fixedSource struct{ floats []float64 }

func (f *fixedSource) Float64() float64 {
	if len(f.floats) == 0 {
		return 0.99
	}
	v := f.floats[0]
	f.floats = f.floats[1:]
	return v
}

func (f *fixedSource) Intn(int) int { return 0 }

func TestEveryBuildingTypeHasTitle(t *testing.T) {
	for _, bt := range world.BuildingTypes() {
		if _, ok := buildingTitles[bt]; !ok {
			t.Errorf("building type %s has no job title", bt)
		}
	}
	if got := TitleFor(world.BuildingFarm); got != JobFarmer {
		t.Errorf("TitleFor(farm) = %s, want Farmer", got)
	}
	if got := TitleFor(world.BuildingShop); got != JobMerchant {
		t.Errorf("TitleFor(shop) = %s, want Merchant", got)
	}
	if got := TitleFor(world.BuildingSchool); got != JobLaborer {
		t.Errorf("TitleFor(school) = %s, want Laborer", got)
	}
}

func TestEveryTitleHasSalary(t *testing.T) {
	for _, title := range JobTitles() {
		if baseSalary[title] <= 0 {
			t.Errorf("title %s has no salary", title)
		}
	}
	if got := SalaryFor(JobMerchant, 2); got != 30 {
		t.Errorf("SalaryFor(Merchant, 2) = %d, want 30", got)
	}
	if got := SalaryFor(JobLaborer, 0); got != 8 {
		t.Errorf("SalaryFor(Laborer, 0) = %d, want 8", got)
	}
}

func TestClampBounds(t *testing.T) {
	s := Stats{Wealth: -4, Influence: 140, Reputation: -300, Happiness: -1, CrimePropensity: 101, Fertility: 50}
	s.Clamp()
	want := Stats{Wealth: 0, Influence: 100, Reputation: -100, Happiness: 0, CrimePropensity: 100, Fertility: 50}
	if s != want {
		t.Errorf("Stats.Clamp = %+v, want %+v", s, want)
	}

	n := Needs{Food: -10, Safety: 120, Social: 50, Rest: 100}
	n.Clamp()
	if n != (Needs{Food: 0, Safety: 100, Social: 50, Rest: 100}) {
		t.Errorf("Needs.Clamp = %+v", n)
	}
	if got := Clamp(1.5, MinHeight, MaxHeight); got != MaxHeight {
		t.Errorf("Clamp(1.5) = %v, want %v", got, MaxHeight)
	}
}

func TestRegistryLiving(t *testing.T) {
	a := &Person{ID: "a", Alive: true}
	b := &Person{ID: "b", Alive: false}
	c := &Person{ID: "c", Alive: true}
	r := NewRegistry(a, b, c)

	if r.Len() != 3 || r.LivingCount() != 2 {
		t.Fatalf("Len=%d LivingCount=%d", r.Len(), r.LivingCount())
	}
	if _, ok := r.GetLiving("b"); ok {
		t.Error("GetLiving returned a dead person")
	}
	living := r.Living()
	if len(living) != 2 || living[0].ID != "a" || living[1].ID != "c" {
		t.Errorf("Living order = %v", living)
	}
	if a.Relationships == nil {
		t.Error("Add did not initialise relationships")
	}
}

func TestFounderDeterministic(t *testing.T) {
	pos := world.Point{X: 5, Y: 6}
	a := NewSpawner(1).Founder(pos, 1)
	b := NewSpawner(1).Founder(pos, 1)
	if a.ID != b.ID || a.Name != b.Name || a.Age != b.Age {
		t.Errorf("same seed produced %q/%q and %q/%q", a.ID, a.Name, b.ID, b.Name)
	}
	if a.YearBorn != 1-a.Age {
		t.Errorf("YearBorn = %d, want %d", a.YearBorn, 1-a.Age)
	}
	if a.Visuals.Height < MinHeight || a.Visuals.Height > MaxHeight {
		t.Errorf("height %v out of range", a.Visuals.Height)
	}
}

func TestChildInheritsFromParents(t *testing.T) {
	s := NewSpawner(3)
	mother := &Person{
		ID: "m", Name: "Mira Oakwell", Sex: SexFemale, X: 3, Y: 4, Residence: "house-1",
		Visuals: Visuals{SkinColor: "#mom", HairColor: "#momhair", Height: 1.2, BodyType: BodyThin},
	}
	father := &Person{
		ID: "f", Name: "Bram Stoneford", Sex: SexMale,
		Visuals: Visuals{SkinColor: "#dad", HairColor: "#dadhair", Height: 1.2, BodyType: BodyStocky},
	}
	// sex draw, skin, hair, body, height jitter
	rng := &fixedSource{floats: []float64{0.9, 0.1, 0.9, 0.9, 1.0}}
	child := s.Child("c", mother, father, 7, rng)

	if child.Surname() != "Stoneford" {
		t.Errorf("surname = %q, want Stoneford", child.Surname())
	}
	if child.Age != 0 || child.YearBorn != 7 || !child.Alive {
		t.Errorf("child vitals = age %d born %d alive %v", child.Age, child.YearBorn, child.Alive)
	}
	if child.Visuals.SkinColor != "#mom" || child.Visuals.HairColor != "#dadhair" {
		t.Errorf("visuals = %+v", child.Visuals)
	}
	if child.Visuals.BodyType != BodyStocky {
		t.Errorf("body = %s, want stocky", child.Visuals.BodyType)
	}
	if child.Visuals.Height != MaxHeight {
		t.Errorf("height = %v, want clamped to %v", child.Visuals.Height, MaxHeight)
	}
	if child.Needs != FullNeeds() {
		t.Errorf("needs = %+v, want full", child.Needs)
	}
	if child.Residence != "house-1" || child.X != 3 || child.Y != 4 {
		t.Errorf("child not placed with mother: %+v", child)
	}
	if len(child.Parents) != 2 {
		t.Errorf("parents = %v", child.Parents)
	}
}

func TestChildSurnameFallsBackToMother(t *testing.T) {
	mother := &Person{ID: "m", Name: "Nell Thornby"}
	father := &Person{ID: "f", Name: ""}
	child := NewSpawner(1).Child("c", mother, father, 1, &fixedSource{})
	if child.Surname() != "Thornby" {
		t.Errorf("surname = %q, want Thornby", child.Surname())
	}
}

func TestPersonJSONUsesNames(t *testing.T) {
	p := &Person{ID: "x", Sex: SexFemale, State: StateImprisoned, Job: &Job{Title: JobGuard, Salary: 12}}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m["sex"] != "female" || m["state"] != "imprisoned" {
		t.Errorf("sex=%v state=%v", m["sex"], m["state"])
	}
	job := m["job"].(map[string]any)
	if job["title"] != "Guard" {
		t.Errorf("job title = %v", job["title"])
	}
}
