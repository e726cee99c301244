package engine

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds the simulation knobs. DefaultTuning returns the reference
// values; a YAML file may override any subset of them.
type Tuning struct {
	TaxRate       float64 `yaml:"tax_rate"`
	StartingFunds int     `yaml:"starting_funds"`

	Vitality  VitalityTuning  `yaml:"vitality"`
	Decision  DecisionTuning  `yaml:"decision"`
	Economy   EconomyTuning   `yaml:"economy"`
	Land      LandTuning      `yaml:"land"`
	Crime     CrimeTuning     `yaml:"crime"`
	Motion    MotionTuning    `yaml:"motion"`
	Narrative NarrativeTuning `yaml:"narrative"`

	WeatherChangeChance float64 `yaml:"weather_change_chance"`
}

type VitalityTuning struct {
	CourtshipRadius float64 `yaml:"courtship_radius"`
	CourtshipChance float64 `yaml:"courtship_chance"`
	FirstMeeting    int     `yaml:"first_meeting"`
	CourtshipStep   int     `yaml:"courtship_step"`
	DatingThreshold int     `yaml:"dating_threshold"`
	PregnancyChance float64 `yaml:"pregnancy_chance"`
	FertileMinAge   int     `yaml:"fertile_min_age"`
	FertileMaxAge   int     `yaml:"fertile_max_age"`
}

type DecisionTuning struct {
	DailyHunger     int     `yaml:"daily_hunger"`
	ToddlerAge      int     `yaml:"toddler_age"`
	AttackChance    float64 `yaml:"attack_chance"`
	AttackDamage    int     `yaml:"attack_damage"`
	LethalChance    float64 `yaml:"lethal_chance"`
	SocializeChance float64 `yaml:"socialize_chance"`
	SocializeStep   int     `yaml:"socialize_step"`
	ChatLogChance   float64 `yaml:"chat_log_chance"`
}

type EconomyTuning struct {
	HireMinWealth   int `yaml:"hire_min_wealth"`
	GuardMinWealth  int `yaml:"guard_min_wealth"`
	StaffPerLevel   int `yaml:"staff_per_level"`
	RetirementAge   int `yaml:"retirement_age"`
	HungerThreshold int `yaml:"hunger_threshold"`
	FoodPrice       int `yaml:"food_price"`
	SalesTax        int `yaml:"sales_tax"`
}

type LandTuning struct {
	LandPrice     int `yaml:"land_price"`
	LandMinWealth int `yaml:"land_min_wealth"`
	HousePrice    int `yaml:"house_price"`
}

type CrimeTuning struct {
	ChanceDivisor      float64 `yaml:"chance_divisor"`
	VictimRadius       float64 `yaml:"victim_radius"`
	GuardRadius        float64 `yaml:"guard_radius"`
	GuardIntervene     float64 `yaml:"guard_intervene"`
	GuardArrest        float64 `yaml:"guard_arrest"`
	ViolentPropensity  int     `yaml:"violent_propensity"`
	AssaultChance      float64 `yaml:"assault_chance"`
	TheftCap           int     `yaml:"theft_cap"`
	GrudgeStep         int     `yaml:"grudge_step"`
	PoliceCatchViolent float64 `yaml:"police_catch_violent"`
	PoliceCatchTheft   float64 `yaml:"police_catch_theft"`
}

type MotionTuning struct {
	Speed        float64 `yaml:"speed"`
	WanderChance float64 `yaml:"wander_chance"`
	WanderRadius int     `yaml:"wander_radius"`
	RoughRest    int     `yaml:"rough_rest"`
}

type NarrativeTuning struct {
	ProtestHappiness int     `yaml:"protest_happiness"`
	ProtestTaxRate   float64 `yaml:"protest_tax_rate"`
	ProtestChance    float64 `yaml:"protest_chance"`
	Reparations      int     `yaml:"reparations"`
	FamineChance     float64 `yaml:"famine_chance"`
	FamineFood       int     `yaml:"famine_food"`
	FamineHappiness  int     `yaml:"famine_happiness"`
}

// DefaultTuning returns the reference constants.
func DefaultTuning() Tuning {
	return Tuning{
		TaxRate:       0.10,
		StartingFunds: 1000,
		Vitality: VitalityTuning{
			CourtshipRadius: 10,
			CourtshipChance: 0.1,
			FirstMeeting:    10,
			CourtshipStep:   5,
			DatingThreshold: 50,
			PregnancyChance: 0.02,
			FertileMinAge:   18,
			FertileMaxAge:   50,
		},
		Decision: DecisionTuning{
			DailyHunger:     10,
			ToddlerAge:      5,
			AttackChance:    0.02,
			AttackDamage:    50,
			LethalChance:    0.1,
			SocializeChance: 0.3,
			SocializeStep:   2,
			ChatLogChance:   0.1,
		},
		Economy: EconomyTuning{
			HireMinWealth:   200,
			GuardMinWealth:  300,
			StaffPerLevel:   3,
			RetirementAge:   65,
			HungerThreshold: 50,
			FoodPrice:       5,
			SalesTax:        1,
		},
		Land: LandTuning{
			LandPrice:     50,
			LandMinWealth: 100,
			HousePrice:    50,
		},
		Crime: CrimeTuning{
			ChanceDivisor:      2000,
			VictimRadius:       10,
			GuardRadius:        5,
			GuardIntervene:     0.8,
			GuardArrest:        0.5,
			ViolentPropensity:  80,
			AssaultChance:      0.3,
			TheftCap:           50,
			GrudgeStep:         30,
			PoliceCatchViolent: 0.2,
			PoliceCatchTheft:   0.05,
		},
		Motion: MotionTuning{
			Speed:        4,
			WanderChance: 0.1,
			WanderRadius: 5,
			RoughRest:    5,
		},
		Narrative: NarrativeTuning{
			ProtestHappiness: 30,
			ProtestTaxRate:   0.2,
			ProtestChance:    0.1,
			Reparations:      100,
			FamineChance:     0.001,
			FamineFood:       50,
			FamineHappiness:  20,
		},
		WeatherChangeChance: 0.01,
	}
}

// LoadTuning reads a YAML file over DefaultTuning. Keys absent from the
// file keep their default values.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}

// Validate rejects knob combinations the subsystems cannot run with.
func (t Tuning) Validate() error {
	var errs []error
	if t.TaxRate < 0 || t.TaxRate > 1 {
		errs = append(errs, fmt.Errorf("tax_rate %v outside [0,1]", t.TaxRate))
	}
	if t.Motion.Speed <= 0 {
		errs = append(errs, fmt.Errorf("motion.speed must be positive, got %v", t.Motion.Speed))
	}
	if t.Crime.ChanceDivisor <= 0 {
		errs = append(errs, fmt.Errorf("crime.chance_divisor must be positive, got %v", t.Crime.ChanceDivisor))
	}
	if t.Economy.FoodPrice < t.Economy.SalesTax {
		errs = append(errs, fmt.Errorf("economy.sales_tax %d exceeds food_price %d", t.Economy.SalesTax, t.Economy.FoodPrice))
	}
	if t.Economy.StaffPerLevel < 0 {
		errs = append(errs, errors.New("economy.staff_per_level must not be negative"))
	}
	return errors.Join(errs...)
}
