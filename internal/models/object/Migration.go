// This file contains the upgrade path for stored placed-object documents.
//
// Version 0 documents were written by the first editor revisions: camelCase field names, the identity duplicated
// under objectId, no normalization. Version 1 documents use the current field names but have no sorting layer.
// Version 2 is the current schema. Documents are upgraded when read; ObjectManager writes the upgrade back.

package object

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Migrate decodes a stored document of any known schema version into the current PlacedObject.
func Migrate(doc bson.M) (*PlacedObject, error) {
	version, _ := intField(doc, "schema_version")

	var obj PlacedObject
	switch version {
	case 0:
		id, ok := intField(doc, "_id")
		if !ok {
			id, _ = intField(doc, "objectId")
		}
		obj.ID = id
		obj.EnvironmentID, _ = intField(doc, "environmentId")
		obj.PrefabID, _ = intField(doc, "prefabId")
		obj.PositionX, _ = floatField(doc, "positionX")
		obj.PositionY, _ = floatField(doc, "positionY")
		obj.ScaleX = floatFieldOr(doc, "scaleX", 1)
		obj.ScaleY = floatFieldOr(doc, "scaleY", 1)
		obj.RotationZ, _ = floatField(doc, "rotationZ")
		obj.SortingLayer, _ = intField(doc, "sortingLayer")
	case 1, 2:
		obj.ID, _ = intField(doc, "_id")
		obj.EnvironmentID, _ = intField(doc, "environment_id")
		obj.PrefabID, _ = intField(doc, "prefab_id")
		obj.PositionX, _ = floatField(doc, "position_x")
		obj.PositionY, _ = floatField(doc, "position_y")
		obj.ScaleX = floatFieldOr(doc, "scale_x", 1)
		obj.ScaleY = floatFieldOr(doc, "scale_y", 1)
		obj.RotationZ, _ = floatField(doc, "rotation_z")
		if version == 2 {
			obj.SortingLayer, _ = intField(doc, "sorting_layer")
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchema, version)
	}

	obj.Transform = obj.Transform.Normalized()
	obj.SchemaVersion = SchemaVersion
	return &obj, nil
}

// NeedsMigration reports whether a stored document predates SchemaVersion.
func NeedsMigration(doc bson.M) bool {
	version, _ := intField(doc, "schema_version")
	return version < SchemaVersion
}

func floatField(doc bson.M, key string) (float64, bool) {
	switch v := doc[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

func floatFieldOr(doc bson.M, key string, fallback float64) float64 {
	if v, ok := floatField(doc, key); ok {
		return v
	}
	return fallback
}

func intField(doc bson.M, key string) (int, bool) {
	f, ok := floatField(doc, key)
	return int(f), ok
}
