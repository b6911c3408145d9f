package application

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mvoss/teampulse-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCollectsDurableState(t *testing.T) {
	t.Parallel()

	f := newFixture()
	exporter := NewExportService(f.durable, f.registry, f.clock, nil)
	ctx := context.Background()

	started, err := f.sessions.StartRun(ctx, "Alpha", "Kim", "Engineer")
	require.NoError(t, err)
	_, err = f.sessions.SaveStep(ctx, "step1", json.RawMessage(`{"v":1}`))
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.sessions.SaveComputed(ctx, domain.ResultSet{Structure: []float64{2}})
	require.NoError(t, err)

	_, err = f.sessions.StartRun(ctx, "Beta", "Ona", "Designer")
	require.NoError(t, err)

	snapshot, err := exporter.Snapshot(ctx)
	require.NoError(t, err)

	assert.True(t, snapshot.ExportedAt.Equal(f.clock.Now()))
	assert.Len(t, snapshot.Teams, 2)
	assert.Len(t, snapshot.Users, 2)
	require.Len(t, snapshot.Sessions, 2)

	// Only Kim's run saved data, so only Kim has a last-session marker.
	require.Len(t, snapshot.LastSessions, 1)
	assert.Equal(t, started.RunID, snapshot.LastSessions[0].RunID)

	var completed *domain.Session
	for i := range snapshot.Sessions {
		if snapshot.Sessions[i].RunID == started.RunID {
			completed = &snapshot.Sessions[i]
		}
	}
	require.NotNil(t, completed)
	assert.True(t, completed.Completed())
	assert.JSONEq(t, `{"v":1}`, string(completed.Steps["step1"]))
}

func TestSnapshotEmptyStore(t *testing.T) {
	t.Parallel()

	f := newFixture()
	exporter := NewExportService(f.durable, f.registry, f.clock, nil)

	snapshot, err := exporter.Snapshot(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, snapshot.Teams)
	assert.Empty(t, snapshot.Teams)
	assert.Empty(t, snapshot.Users)
	assert.Empty(t, snapshot.Sessions)
	assert.Empty(t, snapshot.LastSessions)
}

func TestSnapshotSkipsEmptySessionRecords(t *testing.T) {
	t.Parallel()

	f := newFixture()
	exporter := NewExportService(f.durable, f.registry, f.clock, nil)
	ctx := context.Background()

	started, err := f.sessions.StartRun(ctx, "Alpha", "Kim", "Engineer")
	require.NoError(t, err)

	ref := domain.RunRef{TeamID: started.Team.ID, UserID: started.User.ID, RunID: started.RunID}
	require.NoError(t, f.durable.Set(ctx, sessionKey(ref), []byte(`null`)))

	snapshot, err := exporter.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Sessions)
}
