// This file contains the ObjectManager implementation, which is responsible for interacting with the MongoDB objects collection.
// Documents are read as raw bson and passed through Migrate, so objects written by older editor revisions load in the current
// schema. An upgraded document is written back the first time it is read.

package object

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

type ObjectManager struct {
	collection *mongo.Collection
	sequences  *sequence.SequenceManager
	logger     *log.Logger
}

// NewObjectManager creates a new ObjectManager on the objects collection of the given database.
func NewObjectManager(client *mongo.Client, database string, sequences *sequence.SequenceManager, logger *log.Logger) *ObjectManager {
	return &ObjectManager{
		collection: client.Database(database).Collection("objects"),
		sequences:  sequences,
		logger:     logger,
	}
}

// CreateObject assigns the next object id to obj and inserts it.
func (om *ObjectManager) CreateObject(ctx context.Context, obj *PlacedObject) error {
	id, err := om.sequences.Next(ctx, sequence.Objects)
	if err != nil {
		return fmt.Errorf("allocating object id: %w", err)
	}

	obj.ID = id
	obj.Transform = obj.Transform.Normalized()
	obj.SchemaVersion = SchemaVersion

	_, err = om.collection.InsertOne(ctx, obj)
	return err
}

// GetObject retrieves a placed object by ID. Returns ErrObjectNotFound if it does not exist.
func (om *ObjectManager) GetObject(ctx context.Context, id int) (*PlacedObject, error) {
	var doc bson.M
	err := om.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return om.decode(ctx, doc)
}

// ListObjectsByEnvironment returns every object of an environment ordered by id.
// Legacy documents store the environment under environmentId, so both names are matched.
func (om *ObjectManager) ListObjectsByEnvironment(ctx context.Context, environmentID int) ([]PlacedObject, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"environment_id": environmentID},
		bson.M{"environmentId": environmentID},
	}}
	cursor, err := om.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	objects := make([]PlacedObject, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		obj, err := om.decode(ctx, doc)
		if err != nil {
			om.logger.Warnf("Skipping unreadable object document %v: %v", doc["_id"], err)
			continue
		}
		objects = append(objects, *obj)
	}
	return objects, cursor.Err()
}

// UpdateObject replaces the stored document of obj. Returns ErrObjectNotFound if it does not exist.
func (om *ObjectManager) UpdateObject(ctx context.Context, obj *PlacedObject) error {
	obj.Transform = obj.Transform.Normalized()
	obj.SchemaVersion = SchemaVersion

	result, err := om.collection.ReplaceOne(ctx, bson.M{"_id": obj.ID}, obj)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrObjectNotFound
	}
	return nil
}

// DeleteObject removes a placed object. Returns ErrObjectNotFound if it does not exist.
func (om *ObjectManager) DeleteObject(ctx context.Context, id int) error {
	result, err := om.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrObjectNotFound
	}
	return nil
}

// DeleteObjectsByEnvironment removes every object of an environment and returns how many were removed.
func (om *ObjectManager) DeleteObjectsByEnvironment(ctx context.Context, environmentID int) (int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"environment_id": environmentID},
		bson.M{"environmentId": environmentID},
	}}
	result, err := om.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// decode migrates a raw document and writes the upgrade back when the stored _id is already the integer identity.
func (om *ObjectManager) decode(ctx context.Context, doc bson.M) (*PlacedObject, error) {
	obj, err := Migrate(doc)
	if err != nil {
		return nil, err
	}
	if !NeedsMigration(doc) {
		return obj, nil
	}

	if storedID, ok := intField(doc, "_id"); ok && storedID == obj.ID {
		if _, err := om.collection.ReplaceOne(ctx, bson.M{"_id": doc["_id"]}, obj); err != nil {
			om.logger.Warnf("Failed to write back migrated object %d: %v", obj.ID, err)
		} else {
			om.logger.Infof("Migrated object %d to schema version %d", obj.ID, SchemaVersion)
		}
	}
	return obj, nil
}
