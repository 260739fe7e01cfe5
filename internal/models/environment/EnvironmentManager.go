// This file contains the EnvironmentManager implementation, which is responsible for interacting with the MongoDB environments
// collection. Identities come from the 'environments' sequence so the editor can keep using integer ids.

package environment

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/sequence"
)

type EnvironmentManager struct {
	collection *mongo.Collection
	sequences  *sequence.SequenceManager
	logger     *log.Logger
}

// NewEnvironmentManager creates a new EnvironmentManager on the environments collection of the given database.
func NewEnvironmentManager(client *mongo.Client, database string, sequences *sequence.SequenceManager, logger *log.Logger) *EnvironmentManager {
	return &EnvironmentManager{
		collection: client.Database(database).Collection("environments"),
		sequences:  sequences,
		logger:     logger,
	}
}

// CreateEnvironment assigns the next environment id to env and inserts it.
func (em *EnvironmentManager) CreateEnvironment(ctx context.Context, env *Environment) error {
	id, err := em.sequences.Next(ctx, sequence.Environments)
	if err != nil {
		return fmt.Errorf("allocating environment id: %w", err)
	}
	env.ID = id

	_, err = em.collection.InsertOne(ctx, env)
	return err
}

// GetEnvironment retrieves an environment by ID. Returns ErrEnvironmentNotFound if it does not exist.
func (em *EnvironmentManager) GetEnvironment(ctx context.Context, id int) (*Environment, error) {
	var env Environment
	err := em.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&env)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEnvironmentNotFound
		}
		return nil, err
	}
	return &env, nil
}

// ListEnvironmentsByUser returns every environment owned by the user, ordered by id.
func (em *EnvironmentManager) ListEnvironmentsByUser(ctx context.Context, userID string) ([]Environment, error) {
	cursor, err := em.collection.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	environments := make([]Environment, 0)
	if err := cursor.All(ctx, &environments); err != nil {
		return nil, err
	}
	return environments, nil
}

// DeleteEnvironment removes an environment. Its objects are removed by the caller.
// Returns ErrEnvironmentNotFound if it does not exist.
func (em *EnvironmentManager) DeleteEnvironment(ctx context.Context, id int) error {
	result, err := em.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrEnvironmentNotFound
	}
	return nil
}
