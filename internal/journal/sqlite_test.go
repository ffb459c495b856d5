package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConserveLee/questr/internal/engine/quest"
	"github.com/ConserveLee/questr/internal/geo"
)

func waypoints() []geo.Waypoint {
	return []geo.Waypoint{
		{Coordinate: geo.Coordinate{Lat: 40.7128, Lon: -74.006}, Ordinal: 1},
		{Coordinate: geo.Coordinate{Lat: 40.7306, Lon: -73.9352}, Ordinal: 2},
		{Coordinate: geo.Coordinate{Lat: 40.6782, Lon: -73.9442}, Ordinal: 4},
	}
}

func TestJournal_RecordAndResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	wps := waypoints()
	route := RouteKey(wps)

	_, ok, err := j.LastCompleted(ctx, route)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, j.BeginRun(ctx, route, "run-1", "spin", 3, at))
	require.NoError(t, j.RecordVisit(ctx, quest.Visit{
		RunID: "run-1", Waypoint: wps[0], Outcome: quest.OutcomeSpun, Actions: 1,
		NextKm: 6.37, Wait: 264 * time.Second, CooldownEnds: at.Add(264 * time.Second), At: at,
	}))
	require.NoError(t, j.RecordVisit(ctx, quest.Visit{
		RunID: "run-1", Waypoint: wps[1], Outcome: quest.OutcomeSpun, Actions: 2,
		NextKm: 5.71, Wait: 198 * time.Second, CooldownEnds: at.Add(10 * time.Minute), At: at.Add(5 * time.Minute),
	}))
	require.NoError(t, j.Close())

	// reopen to make sure it is on disk
	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	cp, ok, err := j.LastCompleted(ctx, route)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run-1", cp.RunID)
	assert.Equal(t, 2, cp.Ordinal)
	assert.Equal(t, 2, cp.Actions)
	assert.True(t, cp.CooldownEnds.Equal(at.Add(10*time.Minute)))

	rest := Remaining(wps, cp)
	require.Len(t, rest, 1)
	assert.Equal(t, 4, rest[0].Ordinal)

	// another route does not see these visits
	_, ok, err = j.LastCompleted(ctx, RouteKey(wps[:2]))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJournal_LastVisitWithoutCooldown(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()
	ctx := context.Background()
	wps := waypoints()
	route := RouteKey(wps)

	require.NoError(t, j.BeginRun(ctx, route, "run-2", "trade", 1, time.Now()))
	require.NoError(t, j.RecordVisit(ctx, quest.Visit{RunID: "run-2", Waypoint: wps[2], Outcome: quest.OutcomeAlreadySpun, At: time.Now()}))

	cp, ok, err := j.LastCompleted(ctx, route)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, cp.CooldownEnds.IsZero())
	assert.Empty(t, Remaining(wps, cp))
}

func TestJournal_UnknownRunRejected(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()

	err = j.RecordVisit(context.Background(), quest.Visit{RunID: "nope", Waypoint: waypoints()[0], At: time.Now()})
	assert.Error(t, err)
}

func TestJournal_Schema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	ctx := context.Background()
	wps := waypoints()
	require.NoError(t, j.BeginRun(ctx, RouteKey(wps), "run-3", "spin", 2, time.Now()))
	require.NoError(t, j.RecordVisit(ctx, quest.Visit{
		RunID: "run-3", Waypoint: wps[0], Outcome: quest.OutcomeSpun, Actions: 1, Rewards: 0,
		Wait: 1500 * time.Millisecond, At: time.Now(),
	}))
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var (
		outcome string
		waitMs  int64
		lat     float64
	)
	row := db.QueryRow(`SELECT outcome, wait_ms, lat FROM visits WHERE run_id = 'run-3'`)
	require.NoError(t, row.Scan(&outcome, &waitMs, &lat))
	assert.Equal(t, "spun", outcome)
	assert.Equal(t, int64(1500), waitMs)
	assert.InDelta(t, 40.7128, lat, 1e-9)
}

func TestRouteKey(t *testing.T) {
	wps := waypoints()
	assert.Equal(t, RouteKey(wps), RouteKey(waypoints()))
	assert.NotEqual(t, RouteKey(wps), RouteKey([]geo.Waypoint{wps[1], wps[0], wps[2]}))
	assert.Len(t, RouteKey(nil), 64)
}
