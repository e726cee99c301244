package engine

import (
	"encoding/json"
	"fmt"
)

// Calendar limits.
const (
	HoursPerDay  = 24
	DaysPerWeek  = 7
	WeeksPerYear = 52

	nightStart = 20 // first night hour
	dawn       = 8  // first day hour
)

// Clock is the world calendar. One tick advances it by one hour.
type Clock struct {
	Year    int  `json:"year"`
	Week    int  `json:"week"` // 1–52
	Day     int  `json:"day"`  // 1–7
	Hour    int  `json:"hour"` // 0–23
	IsNight bool `json:"is_night"`
}

// Boundaries reports which calendar rollovers the latest tick crossed.
type Boundaries struct {
	NewDay  bool
	NewWeek bool
	NewYear bool
}

// NewClock returns the clock of a freshly seeded world: year 1, week 1,
// day 1, 08:00.
func NewClock() Clock {
	return Clock{Year: 1, Week: 1, Day: 1, Hour: dawn}
}

// IsNightHour reports whether hour falls in [20,24) ∪ [0,8).
func IsNightHour(hour int) bool {
	return hour >= nightStart || hour < dawn
}

// Advance moves the clock forward one hour, cascading rollovers, and
// returns the boundaries crossed.
func (c *Clock) Advance() Boundaries {
	var b Boundaries
	c.Hour++
	if c.Hour >= HoursPerDay {
		c.Hour = 0
		c.Day++
		b.NewDay = true
	}
	if c.Day > DaysPerWeek {
		c.Day = 1
		c.Week++
		b.NewWeek = true
	}
	if c.Week > WeeksPerYear {
		c.Week = 1
		c.Year++
		b.NewYear = true
	}
	c.IsNight = IsNightHour(c.Hour)
	return b
}

// String returns e.g. "Year 3, Week 12, Day 4, 21:00".
func (c Clock) String() string {
	return fmt.Sprintf("Year %d, Week %d, Day %d, %02d:00", c.Year, c.Week, c.Day, c.Hour)
}

// UnmarshalJSON accepts snapshots written before day and hour existed,
// defaulting them to day 1, 08:00.
func (c *Clock) UnmarshalJSON(b []byte) error {
	var raw struct {
		Year int  `json:"year"`
		Week int  `json:"week"`
		Day  *int `json:"day"`
		Hour *int `json:"hour"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*c = NewClock()
	c.Year = raw.Year
	c.Week = raw.Week
	if raw.Day != nil {
		c.Day = *raw.Day
	}
	if raw.Hour != nil {
		c.Hour = *raw.Hour
	}
	if c.Week < 1 {
		c.Week = 1
	}
	c.IsNight = IsNightHour(c.Hour)
	return nil
}
