package database

import (
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/environment"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/object"
	"github.com/NeRF-or-Nothing/EnvironmentCreator/internal/models/user"
)

type userRow struct {
	ID                string `gorm:"primaryKey;size:36"`
	Username          string `gorm:"uniqueIndex;size:100;not null"`
	EncryptedPassword string `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

type environmentRow struct {
	ID        int    `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:100;not null"`
	UserID    string `gorm:"index;size:36;not null"`
	MaxWidth  int    `gorm:"not null"`
	MaxHeight int    `gorm:"not null"`
}

func (environmentRow) TableName() string { return "environments" }

type objectRow struct {
	ID            int `gorm:"primaryKey;autoIncrement"`
	EnvironmentID int `gorm:"index;not null"`
	PrefabID      int `gorm:"not null"`
	PositionX     float64
	PositionY     float64
	ScaleX        float64
	ScaleY        float64
	RotationZ     float64
	SortingLayer  int
	SchemaVersion int
}

func (objectRow) TableName() string { return "objects" }

func userFromRow(r userRow) *user.User {
	return &user.User{ID: r.ID, Username: r.Username, EncryptedPassword: r.EncryptedPassword}
}

func environmentToRow(e *environment.Environment) environmentRow {
	return environmentRow{ID: e.ID, Name: e.Name, UserID: e.UserID, MaxWidth: e.MaxWidth, MaxHeight: e.MaxHeight}
}

func environmentFromRow(r environmentRow) environment.Environment {
	return environment.Environment{ID: r.ID, Name: r.Name, UserID: r.UserID, MaxWidth: r.MaxWidth, MaxHeight: r.MaxHeight}
}

func objectToRow(o *object.PlacedObject) objectRow {
	return objectRow{
		ID:            o.ID,
		EnvironmentID: o.EnvironmentID,
		PrefabID:      o.PrefabID,
		PositionX:     o.PositionX,
		PositionY:     o.PositionY,
		ScaleX:        o.ScaleX,
		ScaleY:        o.ScaleY,
		RotationZ:     o.RotationZ,
		SortingLayer:  o.SortingLayer,
		SchemaVersion: o.SchemaVersion,
	}
}

func objectFromRow(r objectRow) object.PlacedObject {
	return object.PlacedObject{
		ID:            r.ID,
		EnvironmentID: r.EnvironmentID,
		PrefabID:      r.PrefabID,
		Transform: object.Transform{
			PositionX:    r.PositionX,
			PositionY:    r.PositionY,
			ScaleX:       r.ScaleX,
			ScaleY:       r.ScaleY,
			RotationZ:    r.RotationZ,
			SortingLayer: r.SortingLayer,
		},
		SchemaVersion: r.SchemaVersion,
	}
}
