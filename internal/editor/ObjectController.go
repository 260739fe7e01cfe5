package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
)

var (
	// ErrInvalidIdentity is returned when the server answers a create or update with an unusable id.
	ErrInvalidIdentity = errors.New("server returned an invalid object identity")
	// ErrSentinelIdentity is returned when hydrating from a record that was never persisted.
	ErrSentinelIdentity = errors.New("record has no persisted identity")
)

// ObjectStore is the server side of placed objects, as seen by the editor.
type ObjectStore interface {
	Create(ctx context.Context, obj object.PlacedObject) (object.PlacedObject, error)
	Update(ctx context.Context, obj object.PlacedObject) (object.PlacedObject, error)
	ListByEnvironment(ctx context.Context, environmentID int) ([]object.PlacedObject, error)
}

// ObjectController owns the sync state of one placed object. It is safe for concurrent use.
type ObjectController struct {
	store     ObjectStore
	tolerance Tolerance
	metrics   *metrics
	logger    *log.Logger

	// gate holds a token while a network call for this object is in flight.
	gate chan struct{}

	mu            sync.Mutex
	id            int
	environmentID int
	prefabID      int
	state         SyncState
	current       object.Transform
	snapshot      object.Transform
}

// NewObjectController returns an Unsaved controller for a prefab dropped into an environment.
func NewObjectController(store ObjectStore, environmentID, prefabID int, t object.Transform, tolerance Tolerance, logger *log.Logger) *ObjectController {
	return &ObjectController{
		store:         store,
		tolerance:     tolerance,
		logger:        logger,
		gate:          make(chan struct{}, 1),
		environmentID: environmentID,
		prefabID:      prefabID,
		state:         Unsaved,
		current:       t.Normalized(),
	}
}

func (c *ObjectController) ID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *ObjectController) State() SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transform returns the current local transform.
func (c *ObjectController) Transform() object.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Snapshot returns the transform last confirmed by the server. ok is false while the object is Unsaved.
func (c *ObjectController) Snapshot() (t object.Transform, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot, c.id > 0
}

// Object returns the placed object with the current local transform.
func (c *ObjectController) Object() object.PlacedObject {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.objectLocked()
}

func (c *ObjectController) objectLocked() object.PlacedObject {
	return object.PlacedObject{
		ID:            c.id,
		EnvironmentID: c.environmentID,
		PrefabID:      c.prefabID,
		Transform:     c.current,
		SchemaVersion: object.SchemaVersion,
	}
}

// SetTransform records a local change made during a gesture. It never changes the state or touches the network.
func (c *ObjectController) SetTransform(t object.Transform) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t.Normalized()
}

// OnInteractionEnd runs when the user releases the object. An Unsaved object is created right away.
// A persisted object is compared against its snapshot and marked Dirty or Clean; nothing is sent.
func (c *ObjectController) OnInteractionEnd(ctx context.Context) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	c.mu.Lock()
	if c.state == Unsaved {
		c.mu.Unlock()
		return c.create(ctx)
	}
	c.state = c.evaluateLocked()
	c.mu.Unlock()
	return nil
}

// Commit sends the pending change. Dirty objects are updated, Unsaved objects are created, Clean objects are left alone.
// A failed call leaves the state as it was and returns the error.
func (c *ObjectController) Commit(ctx context.Context) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()

	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	switch state {
	case Unsaved:
		return c.create(ctx)
	case Dirty:
		return c.update(ctx)
	default:
		return nil
	}
}

// Hydrate adopts a record loaded from the server. The object becomes Clean. Calling it twice with the same record
// has the same result as calling it once.
func (c *ObjectController) Hydrate(record object.PlacedObject) error {
	if !record.IsPersisted() {
		return fmt.Errorf("%w: id %d", ErrSentinelIdentity, record.ID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = record.ID
	c.environmentID = record.EnvironmentID
	c.prefabID = record.PrefabID
	c.current = record.Transform.Normalized()
	c.snapshot = c.current
	c.state = Clean
	return nil
}

func (c *ObjectController) acquire(ctx context.Context) error {
	select {
	case c.gate <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *ObjectController) release() {
	<-c.gate
}

// evaluateLocked computes the state of a persisted object from its snapshot.
func (c *ObjectController) evaluateLocked() SyncState {
	if c.id <= 0 {
		return Unsaved
	}
	if c.tolerance.Exceeded(c.snapshot, c.current) {
		return Dirty
	}
	return Clean
}

// create must be called with the gate held.
func (c *ObjectController) create(ctx context.Context) error {
	c.mu.Lock()
	record := c.objectLocked()
	c.mu.Unlock()

	created, err := c.store.Create(ctx, record)
	if err == nil && !created.IsPersisted() {
		err = fmt.Errorf("%w: create returned id %d", ErrInvalidIdentity, created.ID)
	}
	c.metrics.commit(ctx, "create", err)
	if err != nil {
		return fmt.Errorf("creating object with prefab %d: %w", record.PrefabID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = created.ID
	c.snapshot = created.Transform.Normalized()
	c.state = c.evaluateLocked()
	c.logger.Debugf("Object %d created, state %s", c.id, c.state)
	return nil
}

// update must be called with the gate held.
func (c *ObjectController) update(ctx context.Context) error {
	c.mu.Lock()
	record := c.objectLocked()
	c.mu.Unlock()

	updated, err := c.store.Update(ctx, record)
	if err == nil && updated.ID != record.ID {
		err = fmt.Errorf("%w: update of %d returned id %d", ErrInvalidIdentity, record.ID, updated.ID)
	}
	c.metrics.commit(ctx, "update", err)
	if err != nil {
		return fmt.Errorf("updating object %d: %w", record.ID, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = updated.Transform.Normalized()
	c.state = c.evaluateLocked()
	c.logger.Debugf("Object %d updated, state %s", c.id, c.state)
	return nil
}
