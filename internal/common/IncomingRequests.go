// This file contains the expected structure of incoming requests to the API. These structs are used to
// validate incoming requests, provide a consistent interface for handling requests, and to pass data to the
// appropriate handlers.

// Note that all structs are independent of the user id. The user id is extracted from the JWT token,
// so a client can never act on behalf of someone else by putting an id in the body.

package common

import (
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/environment"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,strongPassword"`
}

type CreateEnvironmentRequest struct {
	Name      string `json:"name" validate:"required,max=25"`
	MaxWidth  int    `json:"maxWidth" validate:"min=20,max=200"`
	MaxHeight int    `json:"maxHeight" validate:"min=10,max=100"`
}

// Environment converts the request into an unowned, unpersisted environment.
func (r CreateEnvironmentRequest) Environment() *environment.Environment {
	return &environment.Environment{Name: r.Name, MaxWidth: r.MaxWidth, MaxHeight: r.MaxHeight}
}

type EnvironmentIDRequest struct {
	EnvironmentID int `params:"environmentId" validate:"required,min=1"`
}

type ObjectIDRequest struct {
	ObjectID int `params:"objectId" validate:"required,min=1"`
}

// ObjectBody is the placed object as sent by the editor. The id field is accepted and ignored.
// Scales that are left out default to 1.
type ObjectBody struct {
	ID            int      `json:"id"`
	EnvironmentID int      `json:"environmentId" validate:"min=0"`
	PrefabID      int      `json:"prefabId" validate:"required,min=1"`
	PositionX     float64  `json:"positionX"`
	PositionY     float64  `json:"positionY"`
	ScaleX        *float64 `json:"scaleX"`
	ScaleY        *float64 `json:"scaleY"`
	RotationZ     float64  `json:"rotationZ"`
	SortingLayer  int      `json:"sortingLayer"`
}

// CreateObjectRequest needs an environment id. It is checked by object.PlacedObject.Validate.
type CreateObjectRequest struct {
	ObjectBody
}

type UpdateObjectRequest struct {
	ObjectID int `params:"objectId" validate:"required,min=1"`
	ObjectBody
}

// Object converts the body into an unpersisted placed object.
func (b ObjectBody) Object() *object.PlacedObject {
	t := object.Transform{
		PositionX:    b.PositionX,
		PositionY:    b.PositionY,
		ScaleX:       1,
		ScaleY:       1,
		RotationZ:    b.RotationZ,
		SortingLayer: b.SortingLayer,
	}
	if b.ScaleX != nil {
		t.ScaleX = *b.ScaleX
	}
	if b.ScaleY != nil {
		t.ScaleY = *b.ScaleY
	}
	return &object.PlacedObject{EnvironmentID: b.EnvironmentID, PrefabID: b.PrefabID, Transform: t}
}
