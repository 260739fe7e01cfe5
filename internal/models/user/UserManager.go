// This file contains the UserManager implementation, which is responsible for interacting with the MongoDB users collection.
// The UserManager struct contains a pointer to the users collection and a logger. It provides methods to set, get
// and update user data in the database. Interaction with users is by ID, or by username at login.

package user

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
)

var (
	// ErrUserNotFound is returned when a requested user is not found in the database.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when a username is already taken.
	ErrUsernameTaken = errors.New("username is already taken")
	// ErrUserNoAccess is returned when a user does not own the environment a request refers to.
	ErrUserNoAccess = errors.New("user does not have access to this environment")
)

type UserManager struct {
	collection *mongo.Collection
	logger     *log.Logger
}

// NewUserManager creates a new instance of UserManager.
func NewUserManager(client *mongo.Client, database string, logger *log.Logger) *UserManager {
	return &UserManager{
		collection: client.Database(database).Collection("users"),
		logger:     logger,
	}
}

// SetUser updates or inserts a user document in the database.
// Returns nil if successful, or an error if an error occurred while updating the user.
func (um *UserManager) SetUser(ctx context.Context, user *User) error {
	_, err := um.collection.UpdateOne(
		ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": user},
		options.Update().SetUpsert(true),
	)
	return err
}

// UpdateUser updates an existing user document in the database.
func (um *UserManager) UpdateUser(ctx context.Context, user *User) error {
	result, err := um.collection.UpdateOne(
		ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": user},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GenerateUser generates a new user document with the given username and password,
// and inserts it into the database. Returns the User, nil if successful.
// Returns nil, error if the username is already taken or an error occurred while inserting the user.
func (um *UserManager) GenerateUser(ctx context.Context, username, password string) (*User, error) {
	_, err := um.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
	} else {
		return nil, ErrUsernameTaken
	}

	user := &User{
		ID:       primitive.NewObjectID().Hex(),
		Username: username,
	}

	if err := user.SetPassword(password); err != nil {
		return nil, err
	}

	if err := um.SetUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByID retrieves a user from the database based on the given ID.
func (um *UserManager) GetUserByID(ctx context.Context, userID string) (*User, error) {
	var user User
	err := um.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user from the database based on the given username.
// Returns the User, nil if successful. Returns nil, error if the user is not found.
func (um *UserManager) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := um.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			um.logger.Debugf("User %s not found", username)
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}
