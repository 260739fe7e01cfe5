// This file contains the Environment struct and the rules a new environment must satisfy.

// When interacting with MongoDB, bson tags are used to specify the field names in the database.
// json tags follow the names the editor client sends and expects.

package environment

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrEnvironmentNotFound is returned when a requested environment does not exist.
	ErrEnvironmentNotFound = errors.New("environment not found")
	// ErrInvalidName is returned when a name is empty or too long.
	ErrInvalidName = errors.New("invalid environment name")
	// ErrInvalidWidth is returned when the width is out of bounds.
	ErrInvalidWidth = errors.New("invalid environment width")
	// ErrInvalidHeight is returned when the height is out of bounds.
	ErrInvalidHeight = errors.New("invalid environment height")
)

// Bounds an environment has to respect.
const (
	NameMinLength = 1
	NameMaxLength = 25
	MinWidth      = 20
	MaxWidth      = 200
	MinHeight     = 10
	MaxHeight     = 100

	MaxEnvironmentsPerUser = 5
)

// Environment is a named, bounded 2D world owned by a user.
type Environment struct {
	ID        int    `bson:"_id" json:"environmentId"`
	Name      string `bson:"name" json:"name"`
	UserID    string `bson:"user_id" json:"userId"`
	MaxWidth  int    `bson:"max_width" json:"maxWidth"`
	MaxHeight int    `bson:"max_height" json:"maxHeight"`
}

// Validate checks the name and bounds of the environment.
func (e *Environment) Validate() error {
	if n := utf8.RuneCountInString(e.Name); n < NameMinLength || n > NameMaxLength {
		return fmt.Errorf("%w: must be %d to %d characters", ErrInvalidName, NameMinLength, NameMaxLength)
	}
	if e.MaxWidth < MinWidth || e.MaxWidth > MaxWidth {
		return fmt.Errorf("%w: must be between %d and %d", ErrInvalidWidth, MinWidth, MaxWidth)
	}
	if e.MaxHeight < MinHeight || e.MaxHeight > MaxHeight {
		return fmt.Errorf("%w: must be between %d and %d", ErrInvalidHeight, MinHeight, MaxHeight)
	}
	return nil
}

// Contains reports whether a world position lies inside the environment bounds, anchored at the origin.
func (e *Environment) Contains(x, y float64) bool {
	return x >= 0 && y >= 0 && x <= float64(e.MaxWidth) && y <= float64(e.MaxHeight)
}
