package application

import (
	"context"
	"testing"

	"github.com/mvoss/teampulse-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureTeamIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	first, err := f.registry.EnsureTeam(ctx, "Alpha")
	require.NoError(t, err)
	second, err := f.registry.EnsureTeam(ctx, "Alpha")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	teams, err := f.registry.Teams(ctx)
	require.NoError(t, err)
	assert.Len(t, teams, 1)
}

func TestEnsureTeamNameMatchIsCaseSensitive(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	first, err := f.registry.EnsureTeam(ctx, "Alpha")
	require.NoError(t, err)
	second, err := f.registry.EnsureTeam(ctx, "alpha")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestEnsureUserIsIdempotentUnderNameTitleKey(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	team, err := f.registry.EnsureTeam(ctx, "Alpha")
	require.NoError(t, err)

	first, err := f.registry.EnsureUser(ctx, team.ID, "Kim", "Engineer")
	require.NoError(t, err)
	second, err := f.registry.EnsureUser(ctx, team.ID, "Kim", "Engineer")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, first.Hidden)

	// Same name under a different title is a different person.
	third, err := f.registry.EnsureUser(ctx, team.ID, "Kim", "Designer")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)

	users, err := f.registry.Users(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestSetUserHiddenTogglesFlag(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	team, err := f.registry.EnsureTeam(ctx, "Alpha")
	require.NoError(t, err)
	user, err := f.registry.EnsureUser(ctx, team.ID, "Kim", "Engineer")
	require.NoError(t, err)

	require.NoError(t, f.registry.SetUserHidden(ctx, team.ID, user.ID, true))

	users, err := f.registry.Users(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].Hidden)

	require.NoError(t, f.registry.SetUserHidden(ctx, team.ID, user.ID, false))

	users, err = f.registry.Users(ctx, team.ID)
	require.NoError(t, err)
	assert.False(t, users[0].Hidden)
}

func TestSetUserHiddenUnknownUserIsSilentNoOp(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	team, err := f.registry.EnsureTeam(ctx, "Alpha")
	require.NoError(t, err)
	_, err = f.registry.EnsureUser(ctx, team.ID, "Kim", "Engineer")
	require.NoError(t, err)

	require.NoError(t, f.registry.SetUserHidden(ctx, team.ID, "nobody", true))

	users, err := f.registry.Users(ctx, team.ID)
	require.NoError(t, err)
	assert.False(t, users[0].Hidden)
}

func TestEnsureTeamRecoversFromCorruptCollection(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.durable.Set(ctx, teamsKey(), []byte(`{{not json`)))

	team, err := f.registry.EnsureTeam(ctx, "Alpha")
	require.NoError(t, err)
	assert.NotEmpty(t, team.ID)

	teams, err := f.registry.Teams(ctx)
	require.NoError(t, err)
	assert.Len(t, teams, 1)
}

func TestTeamByName(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	created, err := f.registry.EnsureTeam(ctx, "Alpha")
	require.NoError(t, err)

	found, err := f.registry.TeamByName(ctx, "Alpha")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = f.registry.TeamByName(ctx, "Beta")
	require.ErrorIs(t, err, domain.ErrTeamNotFound)
}
