package engine

// System is one stage of the tick pipeline. Each system decides its own
// cadence from the boundaries and mutates the world in place.
type System interface {
	Name() string
	Process(w *World, b Boundaries, rng Rand)
}

// DefaultPipeline returns the subsystems in the order they must run.
// Later stages depend on earlier ones: Economy assigns jobs before Motion
// routes people to work, and Stats refreshes before Weather and the next
// tick's Event stage read it.
func DefaultPipeline() []System {
	return []System{
		AgingSystem{},
		DecisionSystem{},
		EconomySystem{},
		LandSystem{},
		BuildingSystem{},
		CrimeSystem{},
		EventSystem{},
		MotionSystem{},
		StatsSystem{},
		WeatherSystem{},
	}
}

// PipelineNames returns the names of systems in order.
func PipelineNames(p []System) []string {
	names := make([]string, len(p))
	for i, s := range p {
		names[i] = s.Name()
	}
	return names
}
