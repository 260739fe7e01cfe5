package editor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
)

var session = Session{Token: "jwt", UserID: "u1", EnvironmentID: 7}

func newCoordinator(t *testing.T, store ObjectStore, opts ...Option) *SceneCoordinator {
	t.Helper()
	c, err := NewSceneCoordinator(session, store, log.NewNopLogger(), opts...)
	require.NoError(t, err)
	return c
}

func TestLoadRequiresToken(t *testing.T) {
	store := newFakeStore()
	c, err := NewSceneCoordinator(Session{EnvironmentID: 7}, store, log.NewNopLogger())
	require.NoError(t, err)

	_, err = c.LoadEnvironment(context.Background(), 7)
	assert.ErrorIs(t, err, ErrMissingToken)
	_, _, lists := store.counts()
	assert.Zero(t, lists)
}

func TestLoadSkipsInvalidIdentities(t *testing.T) {
	store := newFakeStore()
	store.records = []object.PlacedObject{
		{ID: 1, EnvironmentID: 7, PrefabID: 1, Transform: at(1, 1)},
		{ID: 0, EnvironmentID: 7, PrefabID: 1, Transform: at(2, 2)},
		{ID: -1, EnvironmentID: 7, PrefabID: 1, Transform: at(3, 3)},
		{ID: 2, EnvironmentID: 7, PrefabID: 2, Transform: at(4, 4)},
		{ID: 2, EnvironmentID: 7, PrefabID: 2, Transform: at(5, 5)},
		{ID: 3, EnvironmentID: 8, PrefabID: 1, Transform: at(6, 6)},
	}
	c := newCoordinator(t, store)

	report, err := c.LoadEnvironment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, []SkippedRecord{
		{ID: 0, Reason: "sentinel"},
		{ID: -1, Reason: "sentinel"},
		{ID: 2, Reason: "duplicate"},
	}, report.Skipped)

	controllers := c.Controllers()
	require.Len(t, controllers, 2)
	for _, ctrl := range controllers {
		assert.Equal(t, Clean, ctrl.State())
		assert.Positive(t, ctrl.ID())
	}
	assert.Empty(t, c.Pending())
	assert.Equal(t, 7, c.EnvironmentID())
}

func TestLoadReplacesControllers(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.records = []object.PlacedObject{{ID: 1, EnvironmentID: 7, PrefabID: 1, Transform: at(1, 1)}}
	c := newCoordinator(t, store)

	_, err := c.LoadEnvironment(ctx, 7)
	require.NoError(t, err)
	ctrl, err := c.Place(2, at(3, 3))
	require.NoError(t, err)
	c.Select(ctrl)
	require.Len(t, c.Controllers(), 2)

	_, err = c.LoadEnvironment(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, c.Controllers(), 1)
	assert.Nil(t, c.Selected())
}

func TestConcurrentLoadsShareOneRequest(t *testing.T) {
	store := newFakeStore()
	store.records = []object.PlacedObject{{ID: 1, EnvironmentID: 7, PrefabID: 1, Transform: at(1, 1)}}
	store.started = make(chan struct{}, 2)
	store.block = make(chan struct{})
	c := newCoordinator(t, store)

	var wg sync.WaitGroup
	reports := make([]LoadReport, 2)
	for i := range reports {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := c.LoadEnvironment(context.Background(), 7)
			assert.NoError(t, err)
			reports[i] = report
		}()
	}
	<-store.started
	time.Sleep(50 * time.Millisecond)
	close(store.block)
	wg.Wait()

	_, _, lists := store.counts()
	assert.Equal(t, 1, lists)
	assert.Equal(t, 1, reports[0].Loaded)
	assert.Equal(t, 1, reports[1].Loaded)
}

func TestPlaceRequiresEnvironment(t *testing.T) {
	c := newCoordinator(t, newFakeStore())
	_, err := c.Place(1, at(0, 0))
	assert.ErrorIs(t, err, ErrNoEnvironment)
}

func TestEndInteractionTargetsSelection(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	c := newCoordinator(t, store)
	_, err := c.LoadEnvironment(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, c.EndInteraction(ctx), "no selection is a no-op")

	first, err := c.Place(1, at(1, 1))
	require.NoError(t, err)
	second, err := c.Place(2, at(2, 2))
	require.NoError(t, err)

	c.Select(second)
	assert.Same(t, second, c.Selected())
	require.NoError(t, c.EndInteraction(ctx))

	assert.Equal(t, Unsaved, first.State())
	assert.Equal(t, Clean, second.State())
	creates, _, _ := store.counts()
	assert.Equal(t, 1, creates)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.nextID = 42
	c := newCoordinator(t, store)
	_, err := c.LoadEnvironment(ctx, 7)
	require.NoError(t, err)

	ctrl, err := c.Place(3, at(5, 2))
	require.NoError(t, err)
	c.Select(ctrl)
	require.NoError(t, c.EndInteraction(ctx))
	require.Equal(t, 42, ctrl.ID())
	require.Equal(t, Clean, ctrl.State())

	ctrl.SetTransform(at(5.5, 2))
	require.NoError(t, c.EndInteraction(ctx))
	require.Equal(t, Dirty, ctrl.State())
	assert.Equal(t, []*ObjectController{ctrl}, c.Pending())

	report := c.SaveAll(ctx)
	require.NoError(t, report.Err())
	assert.Equal(t, 1, report.Saved())

	require.Len(t, store.updates, 1)
	assert.Equal(t, 42, store.updates[0].ID)
	assert.Equal(t, 5.5, store.updates[0].PositionX)
	assert.Equal(t, Clean, ctrl.State())

	// A fresh load sees the saved position.
	other := newCoordinator(t, store)
	_, err = other.LoadEnvironment(ctx, 7)
	require.NoError(t, err)
	require.Len(t, other.Controllers(), 1)
	assert.Equal(t, 5.5, other.Controllers()[0].Transform().PositionX)
}

func TestSaveAllIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.failPrefab = 2
	c := newCoordinator(t, store, WithSaveWorkers(2))
	_, err := c.LoadEnvironment(ctx, 7)
	require.NoError(t, err)

	var placed []*ObjectController
	for _, prefab := range []int{1, 2, 3, 4} {
		ctrl, err := c.Place(prefab, at(float64(prefab), 1))
		require.NoError(t, err)
		placed = append(placed, ctrl)
	}

	report := c.SaveAll(ctx)
	require.Len(t, report.Results, 4)
	assert.Equal(t, 3, report.Saved())

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Same(t, placed[1], failed[0].Controller)
	assert.ErrorIs(t, failed[0].Err, errServer)
	assert.Len(t, multierr.Errors(report.Err()), 1)

	assert.Equal(t, Unsaved, placed[1].State())
	for _, i := range []int{0, 2, 3} {
		assert.Equal(t, Clean, placed[i].State())
	}
	assert.Equal(t, []*ObjectController{placed[1]}, c.Pending())
	assert.LessOrEqual(t, store.peak, 2)

	store.failPrefab = 0
	report = c.SaveAll(ctx)
	require.NoError(t, report.Err())
	assert.Equal(t, 1, report.Saved())
	assert.Empty(t, c.Pending())
}

func TestSaveAllWithNothingPending(t *testing.T) {
	c := newCoordinator(t, newFakeStore())
	report := c.SaveAll(context.Background())
	assert.Empty(t, report.Results)
	assert.NoError(t, report.Err())
}
