package engine

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestEventLogEvictsOldest(t *testing.T) {
	l := NewEventLog(MaxEvents)
	for i := 0; i < MaxEvents+5; i++ {
		l.Push(Event{Description: fmt.Sprint(i)})
	}
	if l.Len() != MaxEvents {
		t.Fatalf("Len = %d, want %d", l.Len(), MaxEvents)
	}
	all := l.All()
	if all[0].Description != "5" {
		t.Errorf("oldest = %s, want 5", all[0].Description)
	}
	if all[len(all)-1].Description != fmt.Sprint(MaxEvents+4) {
		t.Errorf("newest = %s, want %d", all[len(all)-1].Description, MaxEvents+4)
	}
}

func TestEventLogRecent(t *testing.T) {
	l := NewEventLog(4)
	for i := 0; i < 6; i++ {
		l.Push(Event{Description: fmt.Sprint(i)})
	}
	got := l.Recent(3)
	want := []string{"5", "4", "3"}
	if len(got) != len(want) {
		t.Fatalf("Recent(3) returned %d events", len(got))
	}
	for i := range want {
		if got[i].Description != want[i] {
			t.Errorf("Recent[%d] = %s, want %s", i, got[i].Description, want[i])
		}
	}
	if n := len(l.Recent(100)); n != 4 {
		t.Errorf("Recent(100) = %d events, want 4", n)
	}
	if n := len(l.Recent(-1)); n != 0 {
		t.Errorf("Recent(-1) = %d events, want 0", n)
	}
}

func TestEventLogJSON(t *testing.T) {
	l := NewEventLog(3)
	l.Push(Event{Kind: EventBirth, Description: "a"})
	l.Push(Event{Kind: EventTheft, Description: "b"})

	raw, err := json.Marshal(l)
	if err != nil {
		t.Fatal(err)
	}
	back := NewEventLog(3)
	if err := json.Unmarshal(raw, back); err != nil {
		t.Fatal(err)
	}
	all := back.All()
	if len(all) != 2 || all[1].Kind != EventTheft {
		t.Errorf("decoded log = %+v", all)
	}
}
