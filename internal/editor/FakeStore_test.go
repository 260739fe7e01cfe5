package editor

import (
	"context"
	"errors"
	"sync"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
)

var errServer = errors.New("server unavailable")

// fakeStore is an in-memory ObjectStore that records every call.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int
	records  []object.PlacedObject
	creates  []object.PlacedObject
	updates  []object.PlacedObject
	lists    int
	inFlight int
	peak     int

	createErr  error
	updateErr  error
	failPrefab int
	createdID  *int

	// started receives once per call when set; block holds calls until closed.
	started chan struct{}
	block   chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (f *fakeStore) enter(ctx context.Context) error {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	started, block := f.started, f.block
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *fakeStore) leave() {
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

func (f *fakeStore) Create(ctx context.Context, obj object.PlacedObject) (object.PlacedObject, error) {
	defer f.leave()
	if err := f.enter(ctx); err != nil {
		return object.PlacedObject{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, obj)
	if f.createErr != nil || (f.failPrefab != 0 && obj.PrefabID == f.failPrefab) {
		return object.PlacedObject{}, errServer
	}
	if f.createdID != nil {
		obj.ID = *f.createdID
	} else {
		obj.ID = f.nextID
		f.nextID++
	}
	f.records = append(f.records, obj)
	return obj, nil
}

func (f *fakeStore) Update(ctx context.Context, obj object.PlacedObject) (object.PlacedObject, error) {
	defer f.leave()
	if err := f.enter(ctx); err != nil {
		return object.PlacedObject{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, obj)
	if f.updateErr != nil {
		return object.PlacedObject{}, f.updateErr
	}
	for i := range f.records {
		if f.records[i].ID == obj.ID {
			f.records[i] = obj
		}
	}
	return obj, nil
}

func (f *fakeStore) ListByEnvironment(ctx context.Context, environmentID int) ([]object.PlacedObject, error) {
	defer f.leave()
	if err := f.enter(ctx); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	var out []object.PlacedObject
	for _, r := range f.records {
		if r.EnvironmentID == environmentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) counts() (creates, updates, lists int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates), len(f.updates), f.lists
}
