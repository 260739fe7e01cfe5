// This file contains the SequenceManager implementation, which is responsible for interacting with the MongoDB counters collection.
// The SequenceManager struct contains a pointer to the counters collection and a logger. Every call to Next atomically increments
// the named counter and returns the new value, so two concurrent creates never receive the same identity.

// Note that the only valid sequences are those in the sequenceNames slice.

package sequence

import (
	"context"
	"errors"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
)

const (
	Environments = "environments"
	Objects      = "objects"
)

var (
	// ErrInvalidSequenceID is returned when an unknown sequence name is used.
	ErrInvalidSequenceID = errors.New("not a valid sequence ID")
	// ErrSequenceAlreadyExists is returned when a sequence with the same name is registered twice.
	ErrSequenceAlreadyExists = errors.New("sequence already exists")
)

type SequenceManager struct {
	collection    *mongo.Collection
	sequenceNames []string
	logger        *log.Logger
}

// NewSequenceManager creates a new SequenceManager on the counters collection of the given database.
// By default, the 'environments' and 'objects' sequences are valid.
func NewSequenceManager(client *mongo.Client, database string, logger *log.Logger) *SequenceManager {
	return &SequenceManager{
		collection:    client.Database(database).Collection("counters"),
		sequenceNames: []string{Environments, Objects},
		logger:        logger,
	}
}

// GetSequenceNames returns the list of valid sequence names.
func (sm *SequenceManager) GetSequenceNames() []string {
	return sm.sequenceNames
}

// AddSequence registers a new valid sequence name. The counter document is created lazily by Next.
func (sm *SequenceManager) AddSequence(sequenceID string) error {
	if slices.Contains(sm.sequenceNames, sequenceID) {
		return ErrSequenceAlreadyExists
	}
	sm.sequenceNames = append(sm.sequenceNames, sequenceID)
	return nil
}

// Next increments the named sequence and returns the new value. The first value of a sequence is 1.
func (sm *SequenceManager) Next(ctx context.Context, sequenceID string) (int, error) {
	if !slices.Contains(sm.sequenceNames, sequenceID) {
		sm.logger.Info("Invalid sequence ID")
		return 0, ErrInvalidSequenceID
	}

	var seq Sequence
	err := sm.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": sequenceID},
		bson.M{"$inc": bson.M{"value": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&seq)
	if err != nil {
		return 0, err
	}
	return seq.Value, nil
}

// Current returns the last value handed out by the named sequence, 0 if it was never used.
func (sm *SequenceManager) Current(ctx context.Context, sequenceID string) (int, error) {
	if !slices.Contains(sm.sequenceNames, sequenceID) {
		return 0, ErrInvalidSequenceID
	}

	var seq Sequence
	err := sm.collection.FindOne(ctx, bson.M{"_id": sequenceID}).Decode(&seq)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return seq.Value, nil
}
