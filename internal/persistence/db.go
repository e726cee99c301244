// Package persistence provides SQLite-based world state storage and
// compressed snapshot files.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hearthvale/internal/agents"
	"github.com/talgya/hearthvale/internal/engine"
	"github.com/talgya/hearthvale/internal/social"
	"github.com/talgya/hearthvale/internal/weather"
	"github.com/talgya/hearthvale/internal/world"
)

// ErrNoWorldState is returned by LoadWorldState on a fresh database.
var ErrNoWorldState = errors.New("no saved world state")

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite allows one writer at a time.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		year_born INTEGER NOT NULL,
		alive INTEGER NOT NULL,
		sex TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		state TEXT NOT NULL,
		partner TEXT NOT NULL,
		residence TEXT NOT NULL,
		stats_json TEXT NOT NULL,
		needs_json TEXT NOT NULL,
		relationships_json TEXT NOT NULL,
		parents_json TEXT NOT NULL,
		children_json TEXT NOT NULL,
		job_json TEXT NOT NULL,
		target_json TEXT NOT NULL,
		visuals_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS buildings (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		owner TEXT NOT NULL,
		level INTEGER NOT NULL,
		employees_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS institutions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		leader TEXT NOT NULL,
		members_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cells (
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		type TEXT NOT NULL,
		owner TEXT NOT NULL,
		building TEXT NOT NULL,
		PRIMARY KEY (x, y)
	);

	CREATE TABLE IF NOT EXISTS events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		kind TEXT NOT NULL,
		description TEXT NOT NULL,
		year INTEGER NOT NULL,
		week INTEGER NOT NULL,
		day INTEGER NOT NULL,
		hour INTEGER NOT NULL,
		involved_json TEXT NOT NULL,
		location_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_people_alive ON people(alive);
	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// ── Rows ──────────────────────────────────────────────────────────────

type personRow struct {
	ID            string  `db:"id"`
	Name          string  `db:"name"`
	Age           int     `db:"age"`
	YearBorn      int     `db:"year_born"`
	Alive         bool    `db:"alive"`
	Sex           string  `db:"sex"`
	X             float64 `db:"x"`
	Y             float64 `db:"y"`
	State         string  `db:"state"`
	Partner       string  `db:"partner"`
	Residence     string  `db:"residence"`
	Stats         string  `db:"stats_json"`
	Needs         string  `db:"needs_json"`
	Relationships string  `db:"relationships_json"`
	Parents       string  `db:"parents_json"`
	Children      string  `db:"children_json"`
	Job           string  `db:"job_json"`
	Target        string  `db:"target_json"`
	Visuals       string  `db:"visuals_json"`
}

type buildingRow struct {
	ID        string `db:"id"`
	Type      string `db:"type"`
	X         int    `db:"x"`
	Y         int    `db:"y"`
	Owner     string `db:"owner"`
	Level     int    `db:"level"`
	Employees string `db:"employees_json"`
}

type institutionRow struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Kind    string `db:"kind"`
	Leader  string `db:"leader"`
	Members string `db:"members_json"`
}

type cellRow struct {
	X        int    `db:"x"`
	Y        int    `db:"y"`
	Type     string `db:"type"`
	Owner    string `db:"owner"`
	Building string `db:"building"`
}

type eventRow struct {
	ID          string `db:"id"`
	Kind        string `db:"kind"`
	Description string `db:"description"`
	Year        int    `db:"year"`
	Week        int    `db:"week"`
	Day         int    `db:"day"`
	Hour        int    `db:"hour"`
	Involved    string `db:"involved_json"`
	Location    string `db:"location_json"`
}

// jsonText marshals v for a TEXT column. Every value stored here is a
// plain struct, slice or map, so encoding cannot fail.
func jsonText(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func toPersonRow(p *agents.Person) personRow {
	return personRow{
		ID:            string(p.ID),
		Name:          p.Name,
		Age:           p.Age,
		YearBorn:      p.YearBorn,
		Alive:         p.Alive,
		Sex:           p.Sex.String(),
		X:             p.X,
		Y:             p.Y,
		State:         p.State.String(),
		Partner:       string(p.Partner),
		Residence:     string(p.Residence),
		Stats:         jsonText(p.Stats),
		Needs:         jsonText(p.Needs),
		Relationships: jsonText(p.Relationships),
		Parents:       jsonText(p.Parents),
		Children:      jsonText(p.Children),
		Job:           jsonText(p.Job),
		Target:        jsonText(p.Target),
		Visuals:       jsonText(p.Visuals),
	}
}

func (r personRow) person() (*agents.Person, error) {
	p := &agents.Person{
		ID:        world.ID(r.ID),
		Name:      r.Name,
		Age:       r.Age,
		YearBorn:  r.YearBorn,
		Alive:     r.Alive,
		X:         r.X,
		Y:         r.Y,
		Partner:   world.ID(r.Partner),
		Residence: world.ID(r.Residence),
	}
	if err := p.Sex.UnmarshalText([]byte(r.Sex)); err != nil {
		return nil, err
	}
	if err := p.State.UnmarshalText([]byte(r.State)); err != nil {
		return nil, err
	}
	fields := []struct {
		raw string
		dst any
	}{
		{r.Stats, &p.Stats},
		{r.Needs, &p.Needs},
		{r.Relationships, &p.Relationships},
		{r.Parents, &p.Parents},
		{r.Children, &p.Children},
		{r.Job, &p.Job},
		{r.Target, &p.Target},
		{r.Visuals, &p.Visuals},
	}
	for _, f := range fields {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ── Save ──────────────────────────────────────────────────────────────

// SaveWorldState replaces the stored world with snap in one transaction.
func (db *DB) SaveWorldState(ctx context.Context, snap *engine.Snapshot) error {
	start := time.Now()
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"people", "buildings", "institutions", "cells", "events", "world_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := savePeople(ctx, tx, snap.People); err != nil {
		return fmt.Errorf("save people: %w", err)
	}
	if err := saveBuildings(ctx, tx, snap.Buildings); err != nil {
		return fmt.Errorf("save buildings: %w", err)
	}
	if err := saveInstitutions(ctx, tx, snap.Institutions); err != nil {
		return fmt.Errorf("save institutions: %w", err)
	}
	if err := saveCells(ctx, tx, snap.Cells); err != nil {
		return fmt.Errorf("save cells: %w", err)
	}
	if err := saveEvents(ctx, tx, snap.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := saveMeta(ctx, tx, snap); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	slog.Info("world state saved",
		"people", len(snap.People),
		"buildings", len(snap.Buildings),
		"events", len(snap.Events),
		"tick", snap.Ticks,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

func savePeople(ctx context.Context, tx *sqlx.Tx, people []*agents.Person) error {
	const q = `INSERT INTO people
		(id, name, age, year_born, alive, sex, x, y, state, partner, residence,
		 stats_json, needs_json, relationships_json, parents_json, children_json,
		 job_json, target_json, visuals_json)
		VALUES (:id, :name, :age, :year_born, :alive, :sex, :x, :y, :state, :partner, :residence,
		 :stats_json, :needs_json, :relationships_json, :parents_json, :children_json,
		 :job_json, :target_json, :visuals_json)`
	for _, p := range people {
		if _, err := tx.NamedExecContext(ctx, q, toPersonRow(p)); err != nil {
			return fmt.Errorf("insert person %s: %w", p.ID, err)
		}
	}
	return nil
}

func saveBuildings(ctx context.Context, tx *sqlx.Tx, buildings []*world.Building) error {
	const q = `INSERT INTO buildings (id, type, x, y, owner, level, employees_json)
		VALUES (:id, :type, :x, :y, :owner, :level, :employees_json)`
	for _, b := range buildings {
		row := buildingRow{
			ID:        string(b.ID),
			Type:      b.Type.String(),
			X:         b.X,
			Y:         b.Y,
			Owner:     string(b.Owner),
			Level:     b.Level,
			Employees: jsonText(b.Employees),
		}
		if _, err := tx.NamedExecContext(ctx, q, row); err != nil {
			return fmt.Errorf("insert building %s: %w", b.ID, err)
		}
	}
	return nil
}

func saveInstitutions(ctx context.Context, tx *sqlx.Tx, ins []*social.Institution) error {
	const q = `INSERT INTO institutions (id, name, kind, leader, members_json)
		VALUES (:id, :name, :kind, :leader, :members_json)`
	for _, in := range ins {
		row := institutionRow{
			ID:      string(in.ID),
			Name:    in.Name,
			Kind:    in.Kind.String(),
			Leader:  string(in.Leader),
			Members: jsonText(in.Members),
		}
		if _, err := tx.NamedExecContext(ctx, q, row); err != nil {
			return fmt.Errorf("insert institution %s: %w", in.ID, err)
		}
	}
	return nil
}

func saveCells(ctx context.Context, tx *sqlx.Tx, cells []world.Cell) error {
	stmt, err := tx.PreparexContext(ctx,
		"INSERT INTO cells (x, y, type, owner, building) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range cells {
		if _, err := stmt.ExecContext(ctx, c.X, c.Y, c.Type.String(), string(c.Owner), string(c.Building)); err != nil {
			return fmt.Errorf("insert cell %d,%d: %w", c.X, c.Y, err)
		}
	}
	return nil
}

func saveEvents(ctx context.Context, tx *sqlx.Tx, events []engine.Event) error {
	const q = `INSERT INTO events (id, kind, description, year, week, day, hour, involved_json, location_json)
		VALUES (:id, :kind, :description, :year, :week, :day, :hour, :involved_json, :location_json)`
	for _, e := range events {
		row := eventRow{
			ID:          string(e.ID),
			Kind:        e.Kind.String(),
			Description: e.Description,
			Year:        e.Year,
			Week:        e.Week,
			Day:         e.Day,
			Hour:        e.Hour,
			Involved:    jsonText(e.Involved),
			Location:    jsonText(e.Location),
		}
		if _, err := tx.NamedExecContext(ctx, q, row); err != nil {
			return fmt.Errorf("insert event %s: %w", e.ID, err)
		}
	}
	return nil
}

func saveMeta(ctx context.Context, tx *sqlx.Tx, snap *engine.Snapshot) error {
	meta := map[string]string{
		"seed":      strconv.FormatInt(snap.Seed, 10),
		"ticks":     strconv.FormatUint(snap.Ticks, 10),
		"clock":     jsonText(snap.Clock),
		"weather":   snap.Weather.String(),
		"treasury":  jsonText(snap.Treasury),
		"grid_size": strconv.Itoa(snap.GridSize),
		"saved_at":  time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, "INSERT INTO world_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return err
		}
	}
	return nil
}

// ── Load ──────────────────────────────────────────────────────────────

// HasWorldState reports whether a saved world exists.
func (db *DB) HasWorldState(ctx context.Context) bool {
	var n int
	err := db.conn.GetContext(ctx, &n, "SELECT COUNT(*) FROM world_meta WHERE key = 'ticks'")
	return err == nil && n > 0
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.GetContext(ctx, &value, "SELECT value FROM world_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %q: %w", key, ErrNoWorldState)
	}
	return value, err
}

// LoadWorldState rebuilds the saved snapshot.
func (db *DB) LoadWorldState(ctx context.Context) (*engine.Snapshot, error) {
	if !db.HasWorldState(ctx) {
		return nil, ErrNoWorldState
	}
	snap := &engine.Snapshot{}

	if err := db.loadMeta(ctx, snap); err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}

	var people []personRow
	if err := db.conn.SelectContext(ctx, &people, "SELECT * FROM people ORDER BY rowid"); err != nil {
		return nil, fmt.Errorf("load people: %w", err)
	}
	for _, r := range people {
		p, err := r.person()
		if err != nil {
			return nil, fmt.Errorf("decode person %s: %w", r.ID, err)
		}
		snap.People = append(snap.People, p)
	}

	var buildings []buildingRow
	if err := db.conn.SelectContext(ctx, &buildings,
		"SELECT id, type, x, y, owner, level, employees_json FROM buildings ORDER BY seq"); err != nil {
		return nil, fmt.Errorf("load buildings: %w", err)
	}
	for _, r := range buildings {
		b := &world.Building{ID: world.ID(r.ID), X: r.X, Y: r.Y, Owner: world.ID(r.Owner), Level: r.Level}
		if err := b.Type.UnmarshalText([]byte(r.Type)); err != nil {
			return nil, fmt.Errorf("decode building %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.Employees), &b.Employees); err != nil {
			return nil, fmt.Errorf("decode building %s: %w", r.ID, err)
		}
		snap.Buildings = append(snap.Buildings, b)
	}

	var ins []institutionRow
	if err := db.conn.SelectContext(ctx, &ins,
		"SELECT id, name, kind, leader, members_json FROM institutions ORDER BY seq"); err != nil {
		return nil, fmt.Errorf("load institutions: %w", err)
	}
	for _, r := range ins {
		in := &social.Institution{ID: world.ID(r.ID), Name: r.Name, Leader: world.ID(r.Leader)}
		if err := in.Kind.UnmarshalText([]byte(r.Kind)); err != nil {
			return nil, fmt.Errorf("decode institution %s: %w", r.ID, err)
		}
		if err := json.Unmarshal([]byte(r.Members), &in.Members); err != nil {
			return nil, fmt.Errorf("decode institution %s: %w", r.ID, err)
		}
		snap.Institutions = append(snap.Institutions, in)
	}

	var cells []cellRow
	if err := db.conn.SelectContext(ctx, &cells, "SELECT * FROM cells ORDER BY y, x"); err != nil {
		return nil, fmt.Errorf("load cells: %w", err)
	}
	for _, r := range cells {
		c := world.Cell{X: r.X, Y: r.Y, Owner: world.ID(r.Owner), Building: world.ID(r.Building)}
		if err := c.Type.UnmarshalText([]byte(r.Type)); err != nil {
			return nil, fmt.Errorf("decode cell %d,%d: %w", r.X, r.Y, err)
		}
		snap.Cells = append(snap.Cells, c)
	}

	var events []eventRow
	if err := db.conn.SelectContext(ctx, &events,
		`SELECT id, kind, description, year, week, day, hour, involved_json, location_json
		 FROM events ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	for _, r := range events {
		e, err := r.event()
		if err != nil {
			return nil, fmt.Errorf("decode event %s: %w", r.ID, err)
		}
		snap.Events = append(snap.Events, e)
	}

	return snap, nil
}

func (r eventRow) event() (engine.Event, error) {
	e := engine.Event{
		ID:          world.ID(r.ID),
		Description: r.Description,
		Year:        r.Year,
		Week:        r.Week,
		Day:         r.Day,
		Hour:        r.Hour,
	}
	if err := e.Kind.UnmarshalText([]byte(r.Kind)); err != nil {
		return e, err
	}
	if err := json.Unmarshal([]byte(r.Involved), &e.Involved); err != nil {
		return e, err
	}
	if err := json.Unmarshal([]byte(r.Location), &e.Location); err != nil {
		return e, err
	}
	return e, nil
}

func (db *DB) loadMeta(ctx context.Context, snap *engine.Snapshot) error {
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := db.conn.SelectContext(ctx, &rows, "SELECT key, value FROM world_meta"); err != nil {
		return err
	}
	meta := make(map[string]string, len(rows))
	for _, r := range rows {
		meta[r.Key] = r.Value
	}

	var err error
	if snap.Seed, err = strconv.ParseInt(meta["seed"], 10, 64); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if snap.Ticks, err = strconv.ParseUint(meta["ticks"], 10, 64); err != nil {
		return fmt.Errorf("ticks: %w", err)
	}
	if snap.GridSize, err = strconv.Atoi(meta["grid_size"]); err != nil {
		return fmt.Errorf("grid_size: %w", err)
	}
	if err := json.Unmarshal([]byte(meta["clock"]), &snap.Clock); err != nil {
		return fmt.Errorf("clock: %w", err)
	}
	if err := json.Unmarshal([]byte(meta["treasury"]), &snap.Treasury); err != nil {
		return fmt.Errorf("treasury: %w", err)
	}
	var kind weather.Kind
	if err := kind.UnmarshalText([]byte(meta["weather"])); err != nil {
		return fmt.Errorf("weather: %w", err)
	}
	snap.Weather = kind
	return nil
}
