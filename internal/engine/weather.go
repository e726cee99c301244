package engine

import (
	"log/slog"

	"github.com/talgya/hearthvale/internal/weather"
)

// WeatherSystem occasionally redraws the weather from the season's table.
type WeatherSystem struct{}

func (WeatherSystem) Name() string { return "weather" }

func (WeatherSystem) Process(w *World, _ Boundaries, rng Rand) {
	if rng.Float64() >= w.tuning.WeatherChangeChance {
		return
	}
	season := w.Season()
	next := weather.Draw(season, rng.Float64())
	if next != w.weather {
		slog.Debug("weather changed", "from", w.weather.String(), "to", next.String(), "season", season.String())
		w.weather = next
	}
}
