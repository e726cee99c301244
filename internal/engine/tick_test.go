package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEngineCallbacks(t *testing.T) {
	w := newTestWorld(t)
	w.SetClock(Clock{Year: 1, Week: 1, Day: 7, Hour: 22})
	e := NewEngine(w, time.Millisecond)

	var ticks, days, weeks int
	e.OnTick = func(*World) { ticks++ }
	e.OnDay = func(*World) { days++ }
	e.OnWeek = func(*World) { weeks++ }

	for i := 0; i < 3; i++ {
		e.Step()
	}
	if ticks != 3 || days != 1 || weeks != 1 {
		t.Errorf("ticks/days/weeks = %d/%d/%d, want 3/1/1", ticks, days, weeks)
	}
}

func TestEngineRunUntilCancelled(t *testing.T) {
	e := NewEngine(newTestWorld(t), time.Millisecond)
	if err := e.SetSpeed(4); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		var ticks uint64
		e.View(func(w *World) { ticks = w.Ticks() })
		if ticks >= 5 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("engine did not tick")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if e.Status().Running {
		t.Error("engine still reports running")
	}
}

func TestEnginePause(t *testing.T) {
	e := NewEngine(newTestWorld(t), time.Millisecond)
	e.Pause()
	if !e.Status().Paused {
		t.Fatal("expected paused")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	e.Run(ctx)

	e.View(func(w *World) {
		if w.Ticks() != 0 {
			t.Errorf("paused engine ran %d ticks", w.Ticks())
		}
	})
	e.Resume()
	if e.Status().Paused {
		t.Error("expected resumed")
	}
}

func TestEngineSpeedAndSwap(t *testing.T) {
	e := NewEngine(newTestWorld(t), 0)
	if err := e.SetSpeed(0); !errors.Is(err, ErrBadSpeed) {
		t.Errorf("SetSpeed(0) = %v, want ErrBadSpeed", err)
	}
	if e.Status().Speed != 1 {
		t.Error("rejected speed must not be applied")
	}

	next := newTestWorld(t)
	next.AdvanceN(3)
	e.Swap(next)
	e.View(func(w *World) {
		if w != next {
			t.Error("Swap did not replace the world")
		}
	})
}
