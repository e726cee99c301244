// The real-time driver: paces World.Advance against the wall clock and
// serialises every reader and writer behind one lock.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// ErrBadSpeed is returned when a speed multiplier is not positive.
var ErrBadSpeed = errors.New("speed must be positive")

// Engine drives a World forward in real time.
type Engine struct {
	mu       sync.Mutex
	world    *World
	speed    float64       // Multiplier: 2.0 = twice as fast
	interval time.Duration // Wall time per tick at speed 1
	paused   bool
	running  bool

	// Callbacks run after a tick while the lock is still held. Set them
	// before calling Run.
	OnTick func(w *World) // Every tick (sim-hour)
	OnDay  func(w *World) // First tick of each day
	OnWeek func(w *World) // First tick of each week
}

// NewEngine wraps w with the default pacing of one tick per second.
func NewEngine(w *World, interval time.Duration) *Engine {
	if interval <= 0 {
		interval = time.Second
	}
	return &Engine{
		world:    w,
		speed:    1.0,
		interval: interval,
	}
}

// Step runs exactly one tick.
func (e *Engine) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.step()
}

func (e *Engine) step() {
	e.world.Advance()
	b := e.world.LastBoundaries()

	if e.OnTick != nil {
		e.OnTick(e.world)
	}
	if b.NewDay && e.OnDay != nil {
		e.OnDay(e.world)
	}
	if b.NewWeek && e.OnWeek != nil {
		e.OnWeek(e.world)
	}
}

// Run advances the world until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	e.mu.Lock()
	e.running = true
	slog.Info("simulation engine started", "tick", e.world.Ticks(), "speed", e.speed)
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.running = false
		slog.Info("simulation engine stopped", "tick", e.world.Ticks())
		e.mu.Unlock()
	}()

	for {
		e.mu.Lock()
		paused := e.paused
		target := time.Duration(float64(e.interval) / e.speed)
		e.mu.Unlock()

		if paused {
			// Check again shortly.
			target = 100 * time.Millisecond
		} else {
			start := time.Now()
			e.Step()
			target -= time.Since(start)
		}

		if target <= 0 {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		timer := time.NewTimer(target)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Pause stops ticking without leaving Run.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = true
}

// Resume continues after Pause.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = false
}

// SetPaused is Pause or Resume.
func (e *Engine) SetPaused(paused bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = paused
}

// SetSpeed changes the tick rate multiplier.
func (e *Engine) SetSpeed(speed float64) error {
	if speed <= 0 {
		return ErrBadSpeed
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = speed
	return nil
}

// Status is the driver's pacing state.
type Status struct {
	Speed   float64 `json:"speed"`
	Paused  bool    `json:"paused"`
	Running bool    `json:"running"`
}

// Status reports the current pacing.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{Speed: e.speed, Paused: e.paused, Running: e.running}
}

// View runs fn with exclusive access to the world between ticks. fn must
// not keep references past its return.
func (e *Engine) View(fn func(w *World)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.world)
}

// Swap replaces the world, e.g. after a restore. The old world is dropped.
func (e *Engine) Swap(w *World) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.world = w
	slog.Info("world swapped", "tick", w.Ticks(), "clock", w.Clock().String())
}

// LogDailyReport writes a one-line summary of the village.
func LogDailyReport(w *World) {
	s := w.Stats()
	slog.Info("daily report",
		"clock", w.Clock().String(),
		"tick", humanize.Comma(int64(w.Ticks())),
		"population", s.Population,
		"employed", s.Employed,
		"homeless", s.Homeless,
		"imprisoned", s.Imprisoned,
		"avg_happiness", s.AvgHappiness,
		"total_wealth", humanize.Comma(int64(s.TotalWealth)),
		"treasury", humanize.Comma(int64(s.Treasury)),
		"crime_rate", s.CrimeRate,
		"weather", w.Weather().String(),
	)
}
