package editor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
)

var (
	// ErrMissingToken is returned when loading without a logged in session. The caller should send the user to login.
	ErrMissingToken = errors.New("session has no token")
	// ErrNoEnvironment is returned when placing an object before an environment is loaded.
	ErrNoEnvironment = errors.New("no environment loaded")
)

// DefaultSaveWorkers bounds the number of concurrent calls made by SaveAll.
const DefaultSaveWorkers = 4

// Option configures a SceneCoordinator.
type Option func(*SceneCoordinator)

func WithTolerance(tol Tolerance) Option {
	return func(c *SceneCoordinator) { c.tolerance = tol }
}

// WithSaveWorkers sets the SaveAll concurrency. Values below 1 are ignored.
func WithSaveWorkers(n int) Option {
	return func(c *SceneCoordinator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// SkippedRecord is a loaded record that did not get a controller.
type SkippedRecord struct {
	ID     int
	Reason string
}

type LoadReport struct {
	EnvironmentID int
	Loaded        int
	Skipped       []SkippedRecord
}

// SaveResult is the outcome of committing one controller.
type SaveResult struct {
	Controller *ObjectController
	ID         int
	Err        error
}

type SaveReport struct {
	Results []SaveResult
}

func (r SaveReport) Saved() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

func (r SaveReport) Failed() []SaveResult {
	var failed []SaveResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err combines every failure of the batch, or returns nil.
func (r SaveReport) Err() error {
	var err error
	for _, res := range r.Results {
		err = multierr.Append(err, res.Err)
	}
	return err
}

// SceneCoordinator owns the controllers of the environment being edited.
type SceneCoordinator struct {
	session   Session
	store     ObjectStore
	tolerance Tolerance
	workers   int
	metrics   *metrics
	logger    *log.Logger

	loads singleflight.Group

	mu            sync.RWMutex
	environmentID int
	controllers   []*ObjectController
	selected      *ObjectController
}

func NewSceneCoordinator(session Session, store ObjectStore, logger *log.Logger, opts ...Option) (*SceneCoordinator, error) {
	m, err := newMetrics()
	if err != nil {
		return nil, err
	}

	c := &SceneCoordinator{
		session:   session,
		store:     store,
		tolerance: DefaultTolerance,
		workers:   DefaultSaveWorkers,
		metrics:   m,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *SceneCoordinator) newController(environmentID, prefabID int, t object.Transform) *ObjectController {
	ctrl := NewObjectController(c.store, environmentID, prefabID, t, c.tolerance, c.logger)
	ctrl.metrics = c.metrics
	return ctrl
}

// EnvironmentID returns the loaded environment, or 0.
func (c *SceneCoordinator) EnvironmentID() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.environmentID
}

// LoadEnvironment replaces the controller set with one Clean controller per stored object.
// Records without a persisted identity and repeated identities are skipped.
// Concurrent loads of the same environment share one request.
func (c *SceneCoordinator) LoadEnvironment(ctx context.Context, environmentID int) (LoadReport, error) {
	report := LoadReport{EnvironmentID: environmentID}
	if !c.session.Authenticated() {
		return report, ErrMissingToken
	}

	v, err, shared := c.loads.Do(strconv.Itoa(environmentID), func() (interface{}, error) {
		return c.store.ListByEnvironment(ctx, environmentID)
	})
	if err != nil {
		return report, fmt.Errorf("loading environment %d: %w", environmentID, err)
	}
	if shared {
		c.logger.Debugf("Load of environment %d shared with a concurrent caller", environmentID)
	}
	records := v.([]object.PlacedObject)

	controllers := make([]*ObjectController, 0, len(records))
	seen := make(map[int]struct{}, len(records))
	for _, record := range records {
		reason := ""
		if _, dup := seen[record.ID]; dup {
			reason = "duplicate"
		}

		ctrl := c.newController(environmentID, record.PrefabID, record.Transform)
		if reason == "" {
			if err := ctrl.Hydrate(record); err != nil {
				reason = "sentinel"
			}
		}
		if reason != "" {
			c.logger.Warnf("Skipping object %d of environment %d: %s identity", record.ID, environmentID, reason)
			c.metrics.skip(ctx, reason)
			report.Skipped = append(report.Skipped, SkippedRecord{ID: record.ID, Reason: reason})
			continue
		}

		seen[record.ID] = struct{}{}
		controllers = append(controllers, ctrl)
	}
	report.Loaded = len(controllers)

	c.mu.Lock()
	c.environmentID = environmentID
	c.controllers = controllers
	c.selected = nil
	c.mu.Unlock()

	c.logger.Infof("Loaded environment %d: %d objects, %d skipped", environmentID, report.Loaded, len(report.Skipped))
	return report, nil
}

// Place registers a new Unsaved object in the loaded environment. Nothing is sent until its interaction ends.
func (c *SceneCoordinator) Place(prefabID int, t object.Transform) (*ObjectController, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.environmentID <= 0 {
		return nil, ErrNoEnvironment
	}

	ctrl := c.newController(c.environmentID, prefabID, t)
	c.controllers = append(c.controllers, ctrl)
	return ctrl, nil
}

// Select makes ctrl the target of EndInteraction. nil clears the selection.
func (c *SceneCoordinator) Select(ctrl *ObjectController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = ctrl
}

func (c *SceneCoordinator) Selected() *ObjectController {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// EndInteraction forwards the release of a gesture to the selected controller.
func (c *SceneCoordinator) EndInteraction(ctx context.Context) error {
	ctrl := c.Selected()
	if ctrl == nil {
		return nil
	}
	return ctrl.OnInteractionEnd(ctx)
}

// Controllers returns the controllers in load and placement order.
func (c *SceneCoordinator) Controllers() []*ObjectController {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*ObjectController, len(c.controllers))
	copy(out, c.controllers)
	return out
}

// Pending returns the controllers a save would send.
func (c *SceneCoordinator) Pending() []*ObjectController {
	var pending []*ObjectController
	for _, ctrl := range c.Controllers() {
		if ctrl.State().Pending() {
			pending = append(pending, ctrl)
		}
	}
	return pending
}

// SaveAll commits every Dirty and Unsaved controller with at most the configured number of calls in flight.
// A failure does not stop the others; every controller gets its own result.
func (c *SceneCoordinator) SaveAll(ctx context.Context) SaveReport {
	pending := c.Pending()
	report := SaveReport{Results: make([]SaveResult, len(pending))}
	if len(pending) == 0 {
		return report
	}

	var g errgroup.Group
	g.SetLimit(c.workers)
	for i, ctrl := range pending {
		g.Go(func() error {
			err := ctrl.Commit(ctx)
			report.Results[i] = SaveResult{Controller: ctrl, ID: ctrl.ID(), Err: err}
			return nil
		})
	}
	_ = g.Wait()

	if failed := report.Failed(); len(failed) > 0 {
		c.logger.Warnf("Saved %d of %d objects: %v", report.Saved(), len(report.Results), report.Err())
	} else {
		c.logger.Infof("Saved %d objects", report.Saved())
	}
	return report
}
