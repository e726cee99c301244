package agents

import "github.com/talgya/hearthvale/internal/world"

// JobTitle is the kind of work a person is hired for.
type JobTitle uint8

const (
	JobFarmer JobTitle = iota
	JobGuard
	JobLaborer
	JobMerchant
)

var jobNames = []string{"Farmer", "Guard", "Laborer", "Merchant"}

// JobTitles lists every title in declaration order.
func JobTitles() []JobTitle {
	return []JobTitle{JobFarmer, JobGuard, JobLaborer, JobMerchant}
}

func (t JobTitle) String() string { return world.NameOf(jobNames, int(t)) }

func (t JobTitle) MarshalText() ([]byte, error) {
	return world.MarshalName(jobNames, int(t), "job title")
}

func (t *JobTitle) UnmarshalText(b []byte) error {
	i, err := world.ParseName(jobNames, b, "job title")
	*t = JobTitle(i)
	return err
}

// baseSalary is the weekly wage of each title at building level 1.
var baseSalary = map[JobTitle]int{
	JobFarmer:   10,
	JobGuard:    12,
	JobLaborer:  8,
	JobMerchant: 15,
}

// SalaryFor returns the weekly wage for title at a building of the given level.
func SalaryFor(title JobTitle, level int) int {
	if level < 1 {
		level = 1
	}
	return baseSalary[title] * level
}

// buildingTitles maps each workplace type to the title it hires.
// Houses hire guards through a separate path.
var buildingTitles = map[world.BuildingType]JobTitle{
	world.BuildingHouse:         JobGuard,
	world.BuildingSchool:        JobLaborer,
	world.BuildingHospital:      JobLaborer,
	world.BuildingJail:          JobLaborer,
	world.BuildingFarm:          JobFarmer,
	world.BuildingShop:          JobMerchant,
	world.BuildingPoliceStation: JobLaborer,
	world.BuildingGovernment:    JobLaborer,
	world.BuildingCommercial:    JobLaborer,
	world.BuildingPark:          JobLaborer,
}

// TitleFor returns the title a building of type bt hires for.
func TitleFor(bt world.BuildingType) JobTitle {
	if t, ok := buildingTitles[bt]; ok {
		return t
	}
	return JobLaborer
}

// Job is a person's current employment. Employer is the person who pays.
type Job struct {
	Title    JobTitle `json:"title"`
	Salary   int      `json:"salary"`
	Employer world.ID `json:"employer,omitempty"`
	Building world.ID `json:"building,omitempty"`
}
