// Package editor keeps the editor's placed objects in sync with the server.
//
// Every placed object is owned by an ObjectController. The controller knows whether its object was ever stored
// (Unsaved), matches what the server last confirmed (Clean) or has moved past the Tolerance since then (Dirty).
// It decides between create and update and never runs two network calls for the same object at once.
//
// A SceneCoordinator owns the controllers of one environment. It loads them from the server, registers newly
// placed objects, routes the end of a drag to the selected controller and saves every pending object in a
// bounded batch.
package editor
