// This file contains the PlacedObject struct, the canonical schema of an object placed in an environment,
// and the Transform helpers shared by the API server and the editor.

// bson tags name the fields in MongoDB, json tags name them on the wire. The wire names follow the
// editor client (camelCase), the stored names follow the rest of the database (snake_case).

package object

import (
	"errors"
	"math"
)

// SchemaVersion is the version written by this code. Older documents are upgraded by Migrate.
const SchemaVersion = 2

// MinScale is the smallest scale either axis may take.
const MinScale = 0.1

var (
	// ErrObjectNotFound is returned when a placed object does not exist.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidPrefab is returned when a prefab id is not a positive integer.
	ErrInvalidPrefab = errors.New("prefab id must be positive")
	// ErrInvalidEnvironment is returned when an object does not reference an environment.
	ErrInvalidEnvironment = errors.New("environment id must be positive")
	// ErrUnsupportedSchema is returned when a stored document has a schema version newer than SchemaVersion.
	ErrUnsupportedSchema = errors.New("unsupported object schema version")
)

// Transform is the position, scale, rotation and render order of a placed object.
type Transform struct {
	PositionX    float64 `bson:"position_x" json:"positionX"`
	PositionY    float64 `bson:"position_y" json:"positionY"`
	ScaleX       float64 `bson:"scale_x" json:"scaleX"`
	ScaleY       float64 `bson:"scale_y" json:"scaleY"`
	RotationZ    float64 `bson:"rotation_z" json:"rotationZ"`
	SortingLayer int     `bson:"sorting_layer" json:"sortingLayer"`
}

// DefaultTransform is the transform of a freshly dropped prefab at the origin.
func DefaultTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// Normalized returns t with its rotation wrapped into [0,360) and its scale clamped to MinScale.
func (t Transform) Normalized() Transform {
	t.RotationZ = NormalizeRotation(t.RotationZ)
	t.ScaleX = math.Max(MinScale, t.ScaleX)
	t.ScaleY = math.Max(MinScale, t.ScaleY)
	return t
}

// NormalizeRotation wraps an angle in degrees into [0,360).
func NormalizeRotation(degrees float64) float64 {
	r := math.Mod(degrees, 360)
	if r < 0 {
		r += 360
	}
	if r >= 360 {
		r = 0
	}
	return r
}

// PlacedObject is one instance of a prefab placed in an environment.
// An ID <= 0 means the object has not been persisted yet.
type PlacedObject struct {
	ID            int `bson:"_id" json:"id,omitempty"`
	EnvironmentID int `bson:"environment_id" json:"environmentId"`
	PrefabID      int `bson:"prefab_id" json:"prefabId"`
	Transform     `bson:",inline"`
	SchemaVersion int `bson:"schema_version" json:"-"`
}

// New returns an unpersisted object with a normalized transform.
func New(environmentID, prefabID int, t Transform) PlacedObject {
	return PlacedObject{
		EnvironmentID: environmentID,
		PrefabID:      prefabID,
		Transform:     t.Normalized(),
		SchemaVersion: SchemaVersion,
	}
}

// IsPersisted reports whether the object carries a server-assigned identity.
func (o PlacedObject) IsPersisted() bool {
	return o.ID > 0
}

// Validate checks the references of the object. The transform is always representable once normalized.
func (o PlacedObject) Validate() error {
	if o.EnvironmentID <= 0 {
		return ErrInvalidEnvironment
	}
	if o.PrefabID <= 0 {
		return ErrInvalidPrefab
	}
	return nil
}
