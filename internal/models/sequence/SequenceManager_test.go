package sequence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/log"
)

// Name checks run before the collection is touched, so no MongoDB is needed.
func newOfflineManager() *SequenceManager {
	return &SequenceManager{sequenceNames: []string{Environments, Objects}, logger: log.NewNopLogger()}
}

func TestSequenceNames(t *testing.T) {
	sm := newOfflineManager()
	assert.Equal(t, []string{Environments, Objects}, sm.GetSequenceNames())

	require.NoError(t, sm.AddSequence("prefabs"))
	assert.ErrorIs(t, sm.AddSequence("prefabs"), ErrSequenceAlreadyExists)
	assert.ErrorIs(t, sm.AddSequence(Objects), ErrSequenceAlreadyExists)
	assert.Contains(t, sm.GetSequenceNames(), "prefabs")
}

func TestUnknownSequenceIsRejected(t *testing.T) {
	sm := newOfflineManager()
	ctx := context.Background()

	_, err := sm.Next(ctx, "scenes")
	assert.ErrorIs(t, err, ErrInvalidSequenceID)
	_, err = sm.Current(ctx, "scenes")
	assert.ErrorIs(t, err, ErrInvalidSequenceID)
}
