// Package journal records visited waypoints in SQLite so an interrupted
// route can be resumed where it stopped.
package journal

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ConserveLee/questr/internal/engine/quest"
	"github.com/ConserveLee/questr/internal/geo"
)

// Journal is a SQLite visit log.
type Journal struct {
	db *sql.DB
}

// Checkpoint is the last finished waypoint of a route.
type Checkpoint struct {
	RunID        string
	Ordinal      int
	Actions      int
	CooldownEnds time.Time
}

// Open opens (creating if needed) the journal at path.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("empty journal path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			route TEXT NOT NULL,
			action TEXT NOT NULL,
			quota INTEGER NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			ordinal INTEGER NOT NULL,
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			outcome TEXT NOT NULL,
			actions INTEGER NOT NULL,
			rewards INTEGER NOT NULL,
			next_km REAL NOT NULL,
			wait_ms INTEGER NOT NULL,
			cooldown_ends TEXT NOT NULL,
			visited_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS visits_by_run ON visits(run_id, id);`,
		`CREATE INDEX IF NOT EXISTS runs_by_route ON runs(route);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// RouteKey identifies a route by its coordinates in order.
func RouteKey(wps []geo.Waypoint) string {
	h := sha256.New()
	for _, wp := range wps {
		fmt.Fprintf(h, "%s\n", wp.Format(6))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// BeginRun registers a run of route. Later visits are attached to it.
func (j *Journal) BeginRun(ctx context.Context, route, runID, action string, quota int, at time.Time) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO runs(run_id, route, action, quota, started_at) VALUES(?,?,?,?,?)`,
		runID, route, action, quota, formatTime(at))
	if err != nil {
		return fmt.Errorf("journal run %s: %w", runID, err)
	}
	return nil
}

// RecordVisit appends a finished waypoint.
func (j *Journal) RecordVisit(ctx context.Context, v quest.Visit) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO visits(run_id, ordinal, lat, lon, outcome, actions, rewards, next_km, wait_ms, cooldown_ends, visited_at)
		 VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		v.RunID, v.Waypoint.Ordinal, v.Waypoint.Lat, v.Waypoint.Lon, v.Outcome.String(),
		v.Actions, v.Rewards, v.NextKm, v.Wait.Milliseconds(), formatTime(v.CooldownEnds), formatTime(v.At))
	if err != nil {
		return fmt.Errorf("journal visit %d: %w", v.Waypoint.Ordinal, err)
	}
	return nil
}

// LastCompleted returns the most recent visit recorded for route.
func (j *Journal) LastCompleted(ctx context.Context, route string) (Checkpoint, bool, error) {
	var (
		cp   Checkpoint
		ends string
	)
	row := j.db.QueryRowContext(ctx,
		`SELECT v.run_id, v.ordinal, v.actions, v.cooldown_ends
		   FROM visits v JOIN runs r ON r.run_id = v.run_id
		  WHERE r.route = ?
		  ORDER BY v.id DESC LIMIT 1`, route)
	if err := row.Scan(&cp.RunID, &cp.Ordinal, &cp.Actions, &ends); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, err
	}
	t, err := parseTime(ends)
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("journal cooldown %q: %w", ends, err)
	}
	cp.CooldownEnds = t
	return cp, true, nil
}

// Remaining drops the waypoints up to and including the checkpoint.
func Remaining(wps []geo.Waypoint, cp Checkpoint) []geo.Waypoint {
	for i, wp := range wps {
		if wp.Ordinal > cp.Ordinal {
			return wps[i:]
		}
	}
	return nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
