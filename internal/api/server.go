// Package api provides the HTTP API for observing and steering the village.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/hearthvale/internal/agents"
	"github.com/talgya/hearthvale/internal/engine"
	"github.com/talgya/hearthvale/internal/persistence"
	"github.com/talgya/hearthvale/internal/weather"
	"github.com/talgya/hearthvale/internal/world"
)

// Server serves the world state over HTTP.
type Server struct {
	Eng         *engine.Engine
	DB          *persistence.DB // nil disables database snapshots
	SnapshotDir string          // empty disables snapshot files
	Port        int
	AdminKey    string // Bearer token for POST endpoints. Empty = POST disabled.

	hub *Hub
}

// NewServer creates a server over eng with an empty stream hub.
func NewServer(eng *engine.Engine, db *persistence.DB, port int, adminKey string) *Server {
	return &Server{Eng: eng, DB: db, Port: port, AdminKey: adminKey, hub: NewHub()}
}

// Hub returns the tick stream hub. Wire Hub().Publish to the engine's
// OnTick callback to feed stream clients.
func (s *Server) Hub() *Hub {
	if s.hub == nil {
		s.hub = NewHub()
	}
	return s.hub
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	s.Hub()
	streamLimiter := NewRateLimiter(30, time.Minute)
	snapshotLimiter := NewRateLimiter(12, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/people", s.handlePeople)
	mux.HandleFunc("/api/v1/person/", s.handlePerson)
	mux.HandleFunc("/api/v1/buildings", s.handleBuildings)
	mux.HandleFunc("/api/v1/institutions", s.handleInstitutions)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/map", s.handleMap)

	// Websocket tick stream.
	mux.HandleFunc("/api/v1/stream", RateLimitMiddleware(streamLimiter, s.handleStream))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/pause", s.adminOnly(s.handlePause))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(RateLimitMiddleware(snapshotLimiter, s.handleSnapshot)))

	return corsMiddleware(mux)
}

// Start serves the API until ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP shutdown", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no HEARTHVALE_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

// ── Observation ──

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.Eng.Status()
	var status map[string]any
	s.Eng.View(func(wd *engine.World) {
		c := wd.Clock()
		status = map[string]any{
			"name":        "Hearthvale",
			"tick":        wd.Ticks(),
			"clock":       c,
			"time":        c.String(),
			"season":      wd.Season().String(),
			"weather":     weatherInfo(wd),
			"speed":       st.Speed,
			"paused":      st.Paused,
			"running":     st.Running,
			"population":  wd.Stats().Population,
			"treasury":    wd.Treasury(),
			"subscribers": s.hub.Subscribers(),
		}
	})
	writeJSON(w, status)
}

func weatherInfo(wd *engine.World) map[string]any {
	return map[string]any{
		"kind":        wd.Weather().String(),
		"description": weather.Describe(wd.Weather(), wd.Season()),
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var stats engine.Stats
	s.Eng.View(func(wd *engine.World) { stats = wd.Stats() })
	writeJSON(w, stats)
}

type personSummary struct {
	ID        world.ID             `json:"id"`
	Name      string               `json:"name"`
	Age       int                  `json:"age"`
	Sex       agents.Sex           `json:"sex"`
	Alive     bool                 `json:"alive"`
	State     agents.ActivityState `json:"state"`
	X         float64              `json:"x"`
	Y         float64              `json:"y"`
	Wealth    int                  `json:"wealth"`
	Happiness int                  `json:"happiness"`
	Job       string               `json:"job,omitempty"`
}

func summaryOf(p *agents.Person) personSummary {
	ps := personSummary{
		ID:        p.ID,
		Name:      p.Name,
		Age:       p.Age,
		Sex:       p.Sex,
		Alive:     p.Alive,
		State:     p.State,
		X:         p.X,
		Y:         p.Y,
		Wealth:    p.Stats.Wealth,
		Happiness: p.Stats.Happiness,
	}
	if p.Job != nil {
		ps.Job = p.Job.Title.String()
	}
	return ps
}

// handlePeople lists people. ?alive=false includes the dead; ?limit caps
// the result (default 100, max 1000).
func (s *Server) handlePeople(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 100, 1000)
	livingOnly := r.URL.Query().Get("alive") != "false"

	out := []personSummary{}
	s.Eng.View(func(wd *engine.World) {
		for _, p := range wd.People().All() {
			if livingOnly && !p.Alive {
				continue
			}
			out = append(out, summaryOf(p))
			if len(out) >= limit {
				break
			}
		}
	})
	writeJSON(w, out)
}

// handlePerson serves GET /api/v1/person/{id}.
func (s *Server) handlePerson(w http.ResponseWriter, r *http.Request) {
	id := world.ID(strings.TrimPrefix(r.URL.Path, "/api/v1/person/"))
	if id == "" {
		http.Error(w, "missing person id", http.StatusBadRequest)
		return
	}

	type relationView struct {
		agents.Relationship
		Name string `json:"name"`
	}
	var (
		found  bool
		detail map[string]any
	)
	s.Eng.View(func(wd *engine.World) {
		p, ok := wd.People().Get(id)
		if !ok {
			return
		}
		found = true
		top := wd.Social().TopRelationships(id, 5)
		rels := make([]relationView, 0, len(top))
		for _, rel := range top {
			rv := relationView{Relationship: rel}
			if other, ok := wd.People().Get(rel.TargetID); ok {
				rv.Name = other.Name
			}
			rels = append(rels, rv)
		}
		detail = map[string]any{
			"person":            p.Clone(),
			"top_relationships": rels,
		}
	})
	if !found {
		http.Error(w, "person not found", http.StatusNotFound)
		return
	}
	writeJSON(w, detail)
}

// handleBuildings lists buildings, optionally filtered by ?type=.
func (s *Server) handleBuildings(w http.ResponseWriter, r *http.Request) {
	var (
		filter    world.BuildingType
		hasFilter bool
	)
	if t := r.URL.Query().Get("type"); t != "" {
		if err := filter.UnmarshalText([]byte(t)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		hasFilter = true
	}

	out := []*world.Building{}
	s.Eng.View(func(wd *engine.World) {
		for _, b := range wd.Buildings().All() {
			if hasFilter && b.Type != filter {
				continue
			}
			out = append(out, b.Clone())
		}
	})
	writeJSON(w, out)
}

func (s *Server) handleInstitutions(w http.ResponseWriter, r *http.Request) {
	type institutionView struct {
		ID         world.ID `json:"id"`
		Name       string   `json:"name"`
		Kind       string   `json:"kind"`
		Leader     world.ID `json:"leader,omitempty"`
		LeaderName string   `json:"leader_name,omitempty"`
		Members    int      `json:"members"`
	}
	out := []institutionView{}
	s.Eng.View(func(wd *engine.World) {
		for _, in := range wd.Institutions().All() {
			v := institutionView{
				ID:      in.ID,
				Name:    in.Name,
				Kind:    in.Kind.String(),
				Leader:  in.Leader,
				Members: len(in.Members),
			}
			if leader, ok := wd.People().Get(in.Leader); ok {
				v.LeaderName = leader.Name
			}
			out = append(out, v)
		}
	})
	writeJSON(w, out)
}

// handleEvents returns recent events, newest first. ?kind= filters by
// event kind; ?limit caps the result (default 50, max 500).
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50, 500)

	var (
		kind    engine.EventKind
		hasKind bool
	)
	if k := r.URL.Query().Get("kind"); k != "" {
		if err := kind.UnmarshalText([]byte(k)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		hasKind = true
	}

	events := []engine.Event{}
	s.Eng.View(func(wd *engine.World) {
		for _, e := range wd.Events().Recent(engine.MaxEvents) {
			if hasKind && e.Kind != kind {
				continue
			}
			events = append(events, e)
			if len(events) >= limit {
				break
			}
		}
	})
	writeJSON(w, events)
}

// handleMap returns the grid size, terrain counts and every cell that is
// not plain unowned grass.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	type mapView struct {
		Size    int            `json:"size"`
		Terrain map[string]int `json:"terrain"`
		Cells   []world.Cell   `json:"cells"`
	}
	var m mapView
	s.Eng.View(func(wd *engine.World) {
		g := wd.Grid()
		m.Size = g.Size()
		m.Terrain = make(map[string]int)
		for t, n := range g.TypeCounts() {
			m.Terrain[t.String()] = n
		}
		m.Cells = g.Sparse()
	})
	sort.Slice(m.Cells, func(i, j int) bool {
		if m.Cells[i].Y != m.Cells[j].Y {
			return m.Cells[i].Y < m.Cells[j].Y
		}
		return m.Cells[i].X < m.Cells[j].X
	})
	writeJSON(w, m)
}

// ── Control ──

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed > 1000 {
			http.Error(w, "speed must be at most 1000", http.StatusBadRequest)
			return
		}
		if err := s.Eng.SetSpeed(req.Speed); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Info("speed changed", "speed", req.Speed)
	}
	writeJSON(w, map[string]float64{"speed": s.Eng.Status().Speed})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Paused bool `json:"paused"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		s.Eng.SetPaused(req.Paused)
		slog.Info("pause changed", "paused", req.Paused)
	}
	writeJSON(w, map[string]bool{"paused": s.Eng.Status().Paused})
}

// handleSnapshot saves the world to the database and, when configured, a
// snapshot file. The copy is taken between ticks; writing happens outside
// the engine lock.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil && s.SnapshotDir == "" {
		http.Error(w, "no snapshot storage configured", http.StatusServiceUnavailable)
		return
	}

	var snap *engine.Snapshot
	s.Eng.View(func(wd *engine.World) { snap = wd.Snapshot() })

	resp := map[string]any{"tick": snap.Ticks, "message": "snapshot saved"}
	if s.DB != nil {
		if err := s.DB.SaveWorldState(r.Context(), snap); err != nil {
			slog.Error("snapshot save failed", "error", err)
			http.Error(w, "snapshot failed", http.StatusInternalServerError)
			return
		}
	}
	if s.SnapshotDir != "" {
		path, err := persistence.WriteSnapshot(s.SnapshotDir, snap, time.Now())
		if err != nil {
			slog.Error("snapshot file failed", "error", err)
			http.Error(w, "snapshot failed", http.StatusInternalServerError)
			return
		}
		resp["file"] = path
	}
	writeJSON(w, resp)
}

// ── Helpers ──

func queryLimit(r *http.Request, def, most int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= most {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write response", "error", err)
	}
}
