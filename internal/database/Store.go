package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/environment"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/user"
)

// Store implements the user, environment and object stores on top of gorm.
// It returns the same sentinel errors as the MongoDB managers.
type Store struct {
	db     *gorm.DB
	logger *log.Logger
}

// NewStore wraps an open, migrated gorm connection.
func NewStore(db *gorm.DB, logger *log.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// GenerateUser inserts a new user with a random UUID identity.
// Returns user.ErrUsernameTaken if the username exists.
func (s *Store) GenerateUser(ctx context.Context, username, password string) (*user.User, error) {
	if _, err := s.GetUserByUsername(ctx, username); err == nil {
		return nil, user.ErrUsernameTaken
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return nil, err
	}

	u := &user.User{ID: uuid.NewString(), Username: username}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}

	row := userRow{ID: u.ID, Username: u.Username, EncryptedPassword: u.EncryptedPassword}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByID returns user.ErrUserNotFound if no user has the given id.
func (s *Store) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return userFromRow(row), nil
}

// GetUserByUsername returns user.ErrUserNotFound if no user has the given username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).First(&row, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return userFromRow(row), nil
}

// CreateEnvironment inserts env and sets its generated id.
func (s *Store) CreateEnvironment(ctx context.Context, env *environment.Environment) error {
	row := environmentToRow(env)
	row.ID = 0
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	env.ID = row.ID
	return nil
}

func (s *Store) GetEnvironment(ctx context.Context, id int) (*environment.Environment, error) {
	var row environmentRow
	err := s.db.WithContext(ctx).First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, environment.ErrEnvironmentNotFound
		}
		return nil, err
	}
	env := environmentFromRow(row)
	return &env, nil
}

func (s *Store) ListEnvironmentsByUser(ctx context.Context, userID string) ([]environment.Environment, error) {
	var rows []environmentRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	environments := make([]environment.Environment, 0, len(rows))
	for _, r := range rows {
		environments = append(environments, environmentFromRow(r))
	}
	return environments, nil
}

func (s *Store) DeleteEnvironment(ctx context.Context, id int) error {
	result := s.db.WithContext(ctx).Delete(&environmentRow{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return environment.ErrEnvironmentNotFound
	}
	return nil
}

// CreateObject inserts obj with a normalized transform and sets its generated id.
func (s *Store) CreateObject(ctx context.Context, obj *object.PlacedObject) error {
	obj.Transform = obj.Transform.Normalized()
	obj.SchemaVersion = object.SchemaVersion

	row := objectToRow(obj)
	row.ID = 0
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	obj.ID = row.ID
	return nil
}

func (s *Store) GetObject(ctx context.Context, id int) (*object.PlacedObject, error) {
	var row objectRow
	err := s.db.WithContext(ctx).First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, object.ErrObjectNotFound
		}
		return nil, err
	}
	obj := objectFromRow(row)
	return &obj, nil
}

func (s *Store) ListObjectsByEnvironment(ctx context.Context, environmentID int) ([]object.PlacedObject, error) {
	var rows []objectRow
	if err := s.db.WithContext(ctx).Where("environment_id = ?", environmentID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	objects := make([]object.PlacedObject, 0, len(rows))
	for _, r := range rows {
		objects = append(objects, objectFromRow(r))
	}
	return objects, nil
}

// UpdateObject overwrites every column of an existing object.
// Returns object.ErrObjectNotFound if it does not exist.
func (s *Store) UpdateObject(ctx context.Context, obj *object.PlacedObject) error {
	var existing objectRow
	if err := s.db.WithContext(ctx).Select("id").First(&existing, obj.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return object.ErrObjectNotFound
		}
		return err
	}

	obj.Transform = obj.Transform.Normalized()
	obj.SchemaVersion = object.SchemaVersion
	row := objectToRow(obj)
	return s.db.WithContext(ctx).Save(&row).Error
}

func (s *Store) DeleteObject(ctx context.Context, id int) error {
	result := s.db.WithContext(ctx).Delete(&objectRow{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return object.ErrObjectNotFound
	}
	return nil
}

func (s *Store) DeleteObjectsByEnvironment(ctx context.Context, environmentID int) (int64, error) {
	result := s.db.WithContext(ctx).Where("environment_id = ?", environmentID).Delete(&objectRow{})
	return result.RowsAffected, result.Error
}
