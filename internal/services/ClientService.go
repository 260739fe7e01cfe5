package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/environment"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/user"
)

var (
	// ErrInvalidCredentials is returned by LoginUser for an unknown username or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEnvironmentLimit is returned when a user already owns environment.MaxEnvironmentsPerUser environments.
	ErrEnvironmentLimit = fmt.Errorf("a user can own at most %d environments", environment.MaxEnvironmentsPerUser)
	// ErrEnvironmentNameTaken is returned when the user already owns an environment with the same name.
	ErrEnvironmentNameTaken = errors.New("environment name is already in use")
)

type ClientService struct {
	users        UserStore
	environments EnvironmentStore
	objects      ObjectStore
	events       EventPublisher
	metrics      serviceMetrics
	logger       *log.Logger
}

// NewClientService wires the stores and the event publisher. A nil publisher drops events.
func NewClientService(stores Stores, events EventPublisher, logger *log.Logger) *ClientService {
	if events == nil {
		events = NopPublisher{}
	}
	return &ClientService{
		users:        stores.Users,
		environments: stores.Environments,
		objects:      stores.Objects,
		events:       events,
		metrics:      newServiceMetrics(logger),
		logger:       logger,
	}
}

// verifyEnvironmentAccess returns the environment if the given user owns it.
// Returns environment.ErrEnvironmentNotFound or user.ErrUserNoAccess otherwise.
func (s *ClientService) verifyEnvironmentAccess(ctx context.Context, userID string, environmentID int) (*environment.Environment, error) {
	env, err := s.environments.GetEnvironment(ctx, environmentID)
	if err != nil {
		return nil, err
	}
	if env.UserID != userID {
		return nil, user.ErrUserNoAccess
	}
	return env, nil
}

// publish sends a change event. The write it describes already succeeded, so failures are only logged.
func (s *ClientService) publish(ctx context.Context, event ChangeEvent) {
	event.Time = time.Now().UTC()
	err := s.events.Publish(ctx, event)
	s.metrics.event(ctx, event.Type, err)
	if err != nil {
		s.logger.Warnf("Failed to publish %s event: %v", event.Type, err)
	}
}

// LoginUser checks if the given username and password are correct and returns the user's ID, nil if successful.
// Returns "", ErrInvalidCredentials if the username or password is incorrect.
func (s *ClientService) LoginUser(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := u.CheckPassword(password); err != nil {
		return "", ErrInvalidCredentials
	}

	return u.ID, nil
}

// RegisterUser checks the password policy, then generates a new user with the given username and password.
// Returns nil if successful, error if the password is too weak, the username is already taken or the insert failed.
func (s *ClientService) RegisterUser(ctx context.Context, username, password string) error {
	if err := user.ValidatePassword(password); err != nil {
		return err
	}

	_, err := s.users.GenerateUser(ctx, username, password)
	return err
}

// UserExists reports whether the user behind a token still exists.
func (s *ClientService) UserExists(ctx context.Context, userID string) (bool, error) {
	_, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateEnvironment validates env and stores it as owned by the user.
func (s *ClientService) CreateEnvironment(ctx context.Context, userID string, env *environment.Environment) (*environment.Environment, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.environments.ListEnvironmentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= environment.MaxEnvironmentsPerUser {
		return nil, ErrEnvironmentLimit
	}
	for _, e := range existing {
		if e.Name == env.Name {
			return nil, ErrEnvironmentNameTaken
		}
	}

	created := *env
	created.ID = 0
	created.UserID = userID
	if err := s.environments.CreateEnvironment(ctx, &created); err != nil {
		return nil, err
	}

	s.logger.Infof("Environment %d created for user %s", created.ID, userID)
	return &created, nil
}

// ListEnvironments returns the environments owned by the user.
func (s *ClientService) ListEnvironments(ctx context.Context, userID string) ([]environment.Environment, error) {
	return s.environments.ListEnvironmentsByUser(ctx, userID)
}

// GetEnvironment returns an environment owned by the user.
func (s *ClientService) GetEnvironment(ctx context.Context, userID string, environmentID int) (*environment.Environment, error) {
	return s.verifyEnvironmentAccess(ctx, userID, environmentID)
}

// DeleteEnvironment removes an environment owned by the user together with all of its objects.
func (s *ClientService) DeleteEnvironment(ctx context.Context, userID string, environmentID int) error {
	if _, err := s.verifyEnvironmentAccess(ctx, userID, environmentID); err != nil {
		return err
	}

	removed, err := s.objects.DeleteObjectsByEnvironment(ctx, environmentID)
	if err != nil {
		return fmt.Errorf("deleting objects of environment %d: %w", environmentID, err)
	}
	if err := s.environments.DeleteEnvironment(ctx, environmentID); err != nil {
		return err
	}

	s.logger.Infof("Environment %d deleted with %d objects", environmentID, removed)
	s.publish(ctx, ChangeEvent{Type: EventEnvironmentDeleted, UserID: userID, EnvironmentID: environmentID})
	return nil
}

// CreateObject stores a new placed object in an environment owned by the user. Any identity sent by the client is ignored.
func (s *ClientService) CreateObject(ctx context.Context, userID string, obj *object.PlacedObject) (*object.PlacedObject, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.verifyEnvironmentAccess(ctx, userID, obj.EnvironmentID); err != nil {
		return nil, err
	}

	created := object.New(obj.EnvironmentID, obj.PrefabID, obj.Transform)
	if err := s.objects.CreateObject(ctx, &created); err != nil {
		return nil, err
	}

	s.publish(ctx, ChangeEvent{Type: EventObjectCreated, UserID: userID, EnvironmentID: created.EnvironmentID, ObjectID: created.ID, Object: &created})
	return &created, nil
}

// GetObject returns a placed object from an environment owned by the user.
func (s *ClientService) GetObject(ctx context.Context, userID string, objectID int) (*object.PlacedObject, error) {
	obj, err := s.objects.GetObject(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.verifyEnvironmentAccess(ctx, userID, obj.EnvironmentID); err != nil {
		return nil, err
	}
	return obj, nil
}

// ListObjects returns every placed object of an environment owned by the user. An empty environment gives an empty list.
func (s *ClientService) ListObjects(ctx context.Context, userID string, environmentID int) ([]object.PlacedObject, error) {
	if _, err := s.verifyEnvironmentAccess(ctx, userID, environmentID); err != nil {
		return nil, err
	}
	return s.objects.ListObjectsByEnvironment(ctx, environmentID)
}

// UpdateObject overwrites prefab, transform and sorting layer of an object. The environment of an object never changes.
func (s *ClientService) UpdateObject(ctx context.Context, userID string, objectID int, update *object.PlacedObject) (*object.PlacedObject, error) {
	if update.PrefabID <= 0 {
		return nil, object.ErrInvalidPrefab
	}

	existing, err := s.GetObject(ctx, userID, objectID)
	if err != nil {
		return nil, err
	}

	existing.PrefabID = update.PrefabID
	existing.Transform = update.Transform.Normalized()
	if err := s.objects.UpdateObject(ctx, existing); err != nil {
		return nil, err
	}

	s.publish(ctx, ChangeEvent{Type: EventObjectUpdated, UserID: userID, EnvironmentID: existing.EnvironmentID, ObjectID: existing.ID, Object: existing})
	return existing, nil
}

// DeleteObject removes a placed object from an environment owned by the user.
func (s *ClientService) DeleteObject(ctx context.Context, userID string, objectID int) error {
	obj, err := s.GetObject(ctx, userID, objectID)
	if err != nil {
		return err
	}
	if err := s.objects.DeleteObject(ctx, objectID); err != nil {
		return err
	}

	s.publish(ctx, ChangeEvent{Type: EventObjectDeleted, UserID: userID, EnvironmentID: obj.EnvironmentID, ObjectID: objectID})
	return nil
}
