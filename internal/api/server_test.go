package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/hearthvale/internal/engine"
	"github.com/talgya/hearthvale/internal/persistence"
	"github.com/talgya/hearthvale/internal/world"
)

const testKey = "test-key"

func newTestServer(t *testing.T, opts ...func(*Server)) (*Server, *httptest.Server) {
	t.Helper()
	cfg := engine.DefaultSeedConfig()
	cfg.Population = 20
	cfg.Houses = 6
	cfg.Farms = 1
	cfg.Shops = 1
	w := engine.NewSeededWorld(world.SmallTestConfig(), cfg, engine.DefaultTuning())
	w.AdvanceN(24 * 3)

	s := NewServer(engine.NewEngine(w, time.Second), nil, 0, testKey)
	for _, opt := range opts {
		opt(s)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, into any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK && into != nil {
		if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func post(t *testing.T, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestStatus(t *testing.T) {
	_, ts := newTestServer(t)
	var status map[string]any
	if code := getJSON(t, ts.URL+"/api/v1/status", &status); code != http.StatusOK {
		t.Fatalf("status code = %d", code)
	}
	if status["name"] != "Hearthvale" {
		t.Errorf("name = %v", status["name"])
	}
	if status["tick"].(float64) != 72 {
		t.Errorf("tick = %v, want 72", status["tick"])
	}
	if _, ok := status["weather"].(map[string]any)["description"]; !ok {
		t.Error("weather has no description")
	}
}

func TestPeopleAndPerson(t *testing.T) {
	_, ts := newTestServer(t)

	var people []personSummary
	getJSON(t, ts.URL+"/api/v1/people?limit=5", &people)
	if len(people) != 5 {
		t.Fatalf("people = %d, want 5", len(people))
	}

	var detail struct {
		Person struct {
			ID   world.ID `json:"id"`
			Name string   `json:"name"`
		} `json:"person"`
		TopRelationships []json.RawMessage `json:"top_relationships"`
	}
	if code := getJSON(t, ts.URL+"/api/v1/person/"+string(people[0].ID), &detail); code != http.StatusOK {
		t.Fatalf("person code = %d", code)
	}
	if detail.Person.Name != people[0].Name {
		t.Errorf("person name = %q, want %q", detail.Person.Name, people[0].Name)
	}
	if len(detail.TopRelationships) > 5 {
		t.Errorf("top relationships = %d, want at most 5", len(detail.TopRelationships))
	}

	if code := getJSON(t, ts.URL+"/api/v1/person/nobody", nil); code != http.StatusNotFound {
		t.Errorf("unknown person code = %d, want 404", code)
	}
}

func TestBuildingsFilter(t *testing.T) {
	_, ts := newTestServer(t)

	var houses []world.Building
	getJSON(t, ts.URL+"/api/v1/buildings?type=house", &houses)
	if len(houses) == 0 {
		t.Fatal("no houses listed")
	}
	for _, b := range houses {
		if b.Type != world.BuildingHouse {
			t.Errorf("filtered list contains %s", b.Type)
		}
	}
	if code := getJSON(t, ts.URL+"/api/v1/buildings?type=castle", nil); code != http.StatusBadRequest {
		t.Errorf("bad type code = %d, want 400", code)
	}
}

func TestEventsFilter(t *testing.T) {
	_, ts := newTestServer(t)

	var events []engine.Event
	getJSON(t, ts.URL+"/api/v1/events?kind=socialize&limit=10", &events)
	if len(events) > 10 {
		t.Errorf("events = %d, want at most 10", len(events))
	}
	for _, e := range events {
		if e.Kind != engine.EventSocialize {
			t.Errorf("filtered list contains %s", e.Kind)
		}
	}
	if code := getJSON(t, ts.URL+"/api/v1/events?kind=party", nil); code != http.StatusBadRequest {
		t.Errorf("bad kind code = %d, want 400", code)
	}
}

func TestMap(t *testing.T) {
	_, ts := newTestServer(t)
	var m struct {
		Size    int            `json:"size"`
		Terrain map[string]int `json:"terrain"`
	}
	getJSON(t, ts.URL+"/api/v1/map", &m)
	total := 0
	for _, n := range m.Terrain {
		total += n
	}
	if m.Size == 0 || total != m.Size*m.Size {
		t.Errorf("terrain counts %d cells for size %d", total, m.Size)
	}
}

func TestAdminAuth(t *testing.T) {
	s, ts := newTestServer(t)

	if resp := post(t, ts.URL+"/api/v1/speed", "", `{"speed":4}`); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no token code = %d, want 401", resp.StatusCode)
	}
	if resp := post(t, ts.URL+"/api/v1/speed", "wrong", `{"speed":4}`); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong token code = %d, want 401", resp.StatusCode)
	}
	if resp := post(t, ts.URL+"/api/v1/speed", testKey, `{"speed":4}`); resp.StatusCode != http.StatusOK {
		t.Errorf("valid token code = %d, want 200", resp.StatusCode)
	}
	if got := s.Eng.Status().Speed; got != 4 {
		t.Errorf("speed = %v, want 4", got)
	}
	if resp := post(t, ts.URL+"/api/v1/speed", testKey, `{"speed":0}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("zero speed code = %d, want 400", resp.StatusCode)
	}

	if resp := post(t, ts.URL+"/api/v1/pause", testKey, `{"paused":true}`); resp.StatusCode != http.StatusOK {
		t.Errorf("pause code = %d", resp.StatusCode)
	}
	if !s.Eng.Status().Paused {
		t.Error("engine not paused")
	}
}

func TestAdminDisabledWithoutKey(t *testing.T) {
	_, ts := newTestServer(t, func(s *Server) { s.AdminKey = "" })
	if resp := post(t, ts.URL+"/api/v1/pause", testKey, `{"paused":true}`); resp.StatusCode != http.StatusForbidden {
		t.Errorf("disabled admin code = %d, want 403", resp.StatusCode)
	}
}

func TestSnapshotWithoutStorage(t *testing.T) {
	_, ts := newTestServer(t)
	if resp := post(t, ts.URL+"/api/v1/snapshot", testKey, ""); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("no storage code = %d, want 503", resp.StatusCode)
	}
}

func TestSnapshotEndpoint(t *testing.T) {
	dir := t.TempDir()
	db, err := persistence.Open(filepath.Join(dir, "world.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	_, ts := newTestServer(t, func(s *Server) {
		s.DB = db
		s.SnapshotDir = filepath.Join(dir, "snapshots")
	})

	resp := post(t, ts.URL+"/api/v1/snapshot", testKey, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("snapshot code = %d", resp.StatusCode)
	}
	var body struct {
		Tick uint64 `json:"tick"`
		File string `json:"file"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Tick != 72 {
		t.Errorf("tick = %d, want 72", body.Tick)
	}
	if _, err := os.Stat(body.File); err != nil {
		t.Errorf("snapshot file: %v", err)
	}
	snap, err := db.LoadWorldState(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.Ticks != 72 {
		t.Errorf("saved ticks = %d, want 72", snap.Ticks)
	}
}

func TestStreamReceivesTicks(t *testing.T) {
	s, ts := newTestServer(t)
	s.Eng.OnTick = s.Hub().Publish

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if n := s.Hub().Subscribers(); n != 1 {
		t.Fatalf("subscribers = %d, want 1", n)
	}
	s.Eng.Step()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	var sum TickSummary
	if err := json.Unmarshal(raw, &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Tick != 73 {
		t.Errorf("tick = %d, want 73", sum.Tick)
	}
	for _, e := range sum.Events {
		if e.Hour != sum.Clock.Hour || e.Day != sum.Clock.Day {
			t.Errorf("event %q is not from this tick", e.Description)
		}
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("b") {
		t.Error("other clients are limited separately")
	}
	if got := rl.RetryAfter("a"); got != 61 {
		t.Errorf("RetryAfter = %d, want 61", got)
	}

	now = now.Add(time.Minute)
	if !rl.Allow("a") {
		t.Error("window reset should allow again")
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "[::1]:5555"
	if got := clientIP(r); got != "::1" {
		t.Errorf("clientIP = %q, want ::1", got)
	}
	r.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	if got := clientIP(r); got != "10.0.0.1" {
		t.Errorf("clientIP = %q, want 10.0.0.1", got)
	}
}
