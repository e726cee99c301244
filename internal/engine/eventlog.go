package engine

import (
	"encoding/json"

	"github.com/talgya/hearthvale/internal/world"
)

// MaxEvents is the number of most recent events the world keeps.
const MaxEvents = 1000

// EventKind categorises a logged event.
type EventKind uint8

const (
	EventBirth EventKind = iota
	EventDeath
	EventAttack
	EventSocialize
	EventConstruction
	EventProtest
	EventArrest
	EventTheft
	EventFamine
	EventSuccession
	EventEmployment
)

var eventKindNames = []string{
	"birth", "death", "attack", "socialize", "construction", "protest",
	"arrest", "theft", "famine", "succession", "employment",
}

// EventKinds lists every event kind.
func EventKinds() []EventKind {
	out := make([]EventKind, len(eventKindNames))
	for i := range out {
		out[i] = EventKind(i)
	}
	return out
}

func (k EventKind) String() string { return world.NameOf(eventKindNames, int(k)) }

func (k EventKind) MarshalText() ([]byte, error) {
	return world.MarshalName(eventKindNames, int(k), "event kind")
}

func (k *EventKind) UnmarshalText(b []byte) error {
	i, err := world.ParseName(eventKindNames, b, "event kind")
	*k = EventKind(i)
	return err
}

// Event is a notable occurrence in the world.
type Event struct {
	ID          world.ID     `json:"id"`
	Kind        EventKind    `json:"kind"`
	Description string       `json:"description"`
	Year        int          `json:"year"`
	Week        int          `json:"week"`
	Day         int          `json:"day"`
	Hour        int          `json:"hour"`
	Involved    []world.ID   `json:"involved"`
	Location    *world.Point `json:"location,omitempty"`
}

// EventLog is a fixed-capacity ring buffer. Pushing onto a full log evicts
// the oldest entry.
type EventLog struct {
	buf   []Event
	start int // index of the oldest entry
	n     int
}

// NewEventLog creates an empty log holding at most capacity entries.
func NewEventLog(capacity int) *EventLog {
	if capacity < 1 {
		capacity = 1
	}
	return &EventLog{buf: make([]Event, capacity)}
}

// Push appends e, evicting the oldest entry when full.
func (l *EventLog) Push(e Event) {
	if l.n < len(l.buf) {
		l.buf[(l.start+l.n)%len(l.buf)] = e
		l.n++
		return
	}
	l.buf[l.start] = e
	l.start = (l.start + 1) % len(l.buf)
}

// Len returns the number of entries held.
func (l *EventLog) Len() int {
	return l.n
}

// Cap returns the maximum number of entries held.
func (l *EventLog) Cap() int {
	return len(l.buf)
}

// All returns a copy of every entry, oldest first.
func (l *EventLog) All() []Event {
	out := make([]Event, l.n)
	for i := 0; i < l.n; i++ {
		out[i] = l.buf[(l.start+i)%len(l.buf)]
	}
	return out
}

// Recent returns up to n entries, newest first.
func (l *EventLog) Recent(n int) []Event {
	if n > l.n {
		n = l.n
	}
	if n < 0 {
		n = 0
	}
	out := make([]Event, n)
	for i := 0; i < n; i++ {
		out[i] = l.buf[(l.start+l.n-1-i)%len(l.buf)]
	}
	return out
}

// MarshalJSON encodes the log as an array, oldest first.
func (l *EventLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.All())
}

// UnmarshalJSON replaces the contents with the decoded array. Only the
// most recent entries that fit are kept.
func (l *EventLog) UnmarshalJSON(b []byte) error {
	var events []Event
	if err := json.Unmarshal(b, &events); err != nil {
		return err
	}
	if len(l.buf) == 0 {
		l.buf = make([]Event, MaxEvents)
	}
	l.start, l.n = 0, 0
	for _, e := range events {
		l.Push(e)
	}
	return nil
}
