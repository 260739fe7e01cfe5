package editor

import (
	"math"

	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
)

// Tolerance is how far a transform may drift from its snapshot before it counts as changed.
type Tolerance struct {
	Position float64 // world units, euclidean
	Rotation float64 // degrees, shortest way around
	Scale    float64 // per axis
}

// DefaultTolerance matches the editor's drag handling.
var DefaultTolerance = Tolerance{Position: 0.01, Rotation: 1, Scale: 0.01}

// Exceeded reports whether current differs from snapshot beyond the tolerance.
// Any change of sorting layer counts.
func (tol Tolerance) Exceeded(snapshot, current object.Transform) bool {
	if snapshot.SortingLayer != current.SortingLayer {
		return true
	}
	if math.Hypot(current.PositionX-snapshot.PositionX, current.PositionY-snapshot.PositionY) > tol.Position {
		return true
	}
	if angularDistance(snapshot.RotationZ, current.RotationZ) > tol.Rotation {
		return true
	}
	return math.Abs(current.ScaleX-snapshot.ScaleX) > tol.Scale ||
		math.Abs(current.ScaleY-snapshot.ScaleY) > tol.Scale
}

// angularDistance is the shortest distance between two angles in degrees, in [0,180].
func angularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}
