package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/environment"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/user"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenMemory(log.NewNopLogger())
	require.NoError(t, err)
	return store
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	u, err := store.GenerateUser(ctx, "alice", "Valid-Password1")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.NoError(t, u.CheckPassword("Valid-Password1"))

	_, err = store.GenerateUser(ctx, "alice", "Other-Password1")
	assert.ErrorIs(t, err, user.ErrUsernameTaken)

	byName, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	byID, err := store.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = store.GetUserByUsername(ctx, "bob")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestEnvironments(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := &environment.Environment{Name: "Forest", UserID: "u1", MaxWidth: 50, MaxHeight: 20}
	second := &environment.Environment{Name: "Desert", UserID: "u1", MaxWidth: 80, MaxHeight: 40}
	other := &environment.Environment{Name: "Moon", UserID: "u2", MaxWidth: 80, MaxHeight: 40}
	for _, env := range []*environment.Environment{first, second, other} {
		require.NoError(t, store.CreateEnvironment(ctx, env))
		assert.Positive(t, env.ID)
	}

	list, err := store.ListEnvironmentsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Forest", list[0].Name)
	assert.Equal(t, "Desert", list[1].Name)

	got, err := store.GetEnvironment(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "u2", got.UserID)

	require.NoError(t, store.DeleteEnvironment(ctx, first.ID))
	_, err = store.GetEnvironment(ctx, first.ID)
	assert.ErrorIs(t, err, environment.ErrEnvironmentNotFound)
	assert.ErrorIs(t, store.DeleteEnvironment(ctx, first.ID), environment.ErrEnvironmentNotFound)
}

func TestObjects(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	obj := object.New(1, 3, object.Transform{PositionX: 5, PositionY: 2, ScaleX: 1, ScaleY: 1, RotationZ: -90})
	require.NoError(t, store.CreateObject(ctx, &obj))
	assert.Positive(t, obj.ID)
	assert.InDelta(t, 270, obj.RotationZ, 1e-9)

	another := object.New(1, 4, object.DefaultTransform())
	require.NoError(t, store.CreateObject(ctx, &another))
	elsewhere := object.New(2, 4, object.DefaultTransform())
	require.NoError(t, store.CreateObject(ctx, &elsewhere))

	list, err := store.ListObjectsByEnvironment(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, obj.ID, list[0].ID)

	obj.PositionX = 5.5
	obj.ScaleX = 0
	require.NoError(t, store.UpdateObject(ctx, &obj))
	got, err := store.GetObject(ctx, obj.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.5, got.PositionX)
	assert.Equal(t, object.MinScale, got.ScaleX)
	assert.Equal(t, object.SchemaVersion, got.SchemaVersion)

	missing := object.New(1, 1, object.DefaultTransform())
	missing.ID = 999
	assert.ErrorIs(t, store.UpdateObject(ctx, &missing), object.ErrObjectNotFound)

	require.NoError(t, store.DeleteObject(ctx, another.ID))
	assert.ErrorIs(t, store.DeleteObject(ctx, another.ID), object.ErrObjectNotFound)

	removed, err := store.DeleteObjectsByEnvironment(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	list, err = store.ListObjectsByEnvironment(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
