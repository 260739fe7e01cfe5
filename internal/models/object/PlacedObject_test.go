package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeRotation(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{15, 15},
		{360, 0},
		{375, 15},
		{-15, 345},
		{-360, 0},
		{720.5, 0.5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalizeRotation(tt.in), 1e-9, "rotation %v", tt.in)
	}
}

func TestTransformNormalizedClampsScale(t *testing.T) {
	tr := Transform{ScaleX: 0.01, ScaleY: -3, RotationZ: -90}.Normalized()
	assert.Equal(t, MinScale, tr.ScaleX)
	assert.Equal(t, MinScale, tr.ScaleY)
	assert.InDelta(t, 270, tr.RotationZ, 1e-9)
}

func TestNewObjectIsUnpersisted(t *testing.T) {
	obj := New(7, 3, Transform{PositionX: 5, PositionY: 2, ScaleX: 1, ScaleY: 1})
	assert.False(t, obj.IsPersisted())
	assert.Equal(t, SchemaVersion, obj.SchemaVersion)
	assert.NoError(t, obj.Validate())

	obj.ID = 42
	assert.True(t, obj.IsPersisted())
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, PlacedObject{PrefabID: 1}.Validate(), ErrInvalidEnvironment)
	assert.ErrorIs(t, PlacedObject{EnvironmentID: 1}.Validate(), ErrInvalidPrefab)
}

func TestMigrate(t *testing.T) {
	tests := []struct {
		name  string
		doc   bson.M
		check func(t *testing.T, obj *PlacedObject)
	}{
		{
			name: "legacy camelCase document with objectId",
			doc: bson.M{
				"_id":           primitive.NewObjectID(),
				"objectId":      int32(12),
				"environmentId": int32(4),
				"prefabId":      int32(2),
				"positionX":     1.5,
				"positionY":     -2.0,
				"scaleX":        0.0,
				"scaleY":        2.0,
				"rotationZ":     -30.0,
				"sortingLayer":  int32(3),
			},
			check: func(t *testing.T, obj *PlacedObject) {
				assert.Equal(t, 12, obj.ID)
				assert.Equal(t, 4, obj.EnvironmentID)
				assert.Equal(t, 2, obj.PrefabID)
				assert.Equal(t, 1.5, obj.PositionX)
				assert.Equal(t, MinScale, obj.ScaleX)
				assert.Equal(t, 2.0, obj.ScaleY)
				assert.InDelta(t, 330, obj.RotationZ, 1e-9)
				assert.Equal(t, 3, obj.SortingLayer)
			},
		},
		{
			name: "version 1 has no sorting layer",
			doc: bson.M{
				"_id":            int64(9),
				"schema_version": int32(1),
				"environment_id": int64(4),
				"prefab_id":      int64(1),
				"position_x":     3.0,
				"scale_x":        1.0,
				"scale_y":        1.0,
				"sorting_layer":  int32(8),
			},
			check: func(t *testing.T, obj *PlacedObject) {
				assert.Equal(t, 9, obj.ID)
				assert.Equal(t, 0, obj.SortingLayer)
				assert.Equal(t, 3.0, obj.PositionX)
			},
		},
		{
			name: "current schema",
			doc: bson.M{
				"_id":            int32(5),
				"schema_version": int32(2),
				"environment_id": int32(1),
				"prefab_id":      int32(6),
				"scale_x":        1.0,
				"scale_y":        1.0,
				"rotation_z":     90.0,
				"sorting_layer":  int32(2),
			},
			check: func(t *testing.T, obj *PlacedObject) {
				assert.Equal(t, 5, obj.ID)
				assert.Equal(t, 6, obj.PrefabID)
				assert.Equal(t, 90.0, obj.RotationZ)
				assert.Equal(t, 2, obj.SortingLayer)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := Migrate(tt.doc)
			if assert.NoError(t, err) {
				assert.Equal(t, SchemaVersion, obj.SchemaVersion)
				tt.check(t, obj)
			}
		})
	}
}

func TestMigrateRejectsFutureSchema(t *testing.T) {
	_, err := Migrate(bson.M{"_id": int32(1), "schema_version": int32(SchemaVersion + 1)})
	assert.ErrorIs(t, err, ErrUnsupportedSchema)
}

func TestNeedsMigration(t *testing.T) {
	assert.True(t, NeedsMigration(bson.M{"_id": int32(1)}))
	assert.True(t, NeedsMigration(bson.M{"schema_version": int32(1)}))
	assert.False(t, NeedsMigration(bson.M{"schema_version": int32(SchemaVersion)}))
}
