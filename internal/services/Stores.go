package services

import (
	"context"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/database"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/environment"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/user"
)

// UserStore is implemented by user.UserManager (MongoDB) and database.Store (SQL).
type UserStore interface {
	GenerateUser(ctx context.Context, username, password string) (*user.User, error)
	GetUserByID(ctx context.Context, userID string) (*user.User, error)
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)
}

// EnvironmentStore is implemented by environment.EnvironmentManager (MongoDB) and database.Store (SQL).
type EnvironmentStore interface {
	CreateEnvironment(ctx context.Context, env *environment.Environment) error
	GetEnvironment(ctx context.Context, id int) (*environment.Environment, error)
	ListEnvironmentsByUser(ctx context.Context, userID string) ([]environment.Environment, error)
	DeleteEnvironment(ctx context.Context, id int) error
}

// ObjectStore is implemented by object.ObjectManager (MongoDB) and database.Store (SQL).
type ObjectStore interface {
	CreateObject(ctx context.Context, obj *object.PlacedObject) error
	GetObject(ctx context.Context, id int) (*object.PlacedObject, error)
	ListObjectsByEnvironment(ctx context.Context, environmentID int) ([]object.PlacedObject, error)
	UpdateObject(ctx context.Context, obj *object.PlacedObject) error
	DeleteObject(ctx context.Context, id int) error
	DeleteObjectsByEnvironment(ctx context.Context, environmentID int) (int64, error)
}

// Stores groups the three stores the ClientService needs.
type Stores struct {
	Users        UserStore
	Environments EnvironmentStore
	Objects      ObjectStore
}

var (
	_ UserStore        = (*user.UserManager)(nil)
	_ EnvironmentStore = (*environment.EnvironmentManager)(nil)
	_ ObjectStore      = (*object.ObjectManager)(nil)

	_ UserStore        = (*database.Store)(nil)
	_ EnvironmentStore = (*database.Store)(nil)
	_ ObjectStore      = (*database.Store)(nil)
)
