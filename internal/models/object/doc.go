// Package object contains the PlacedObject schema and the implementation of interacting with the MongoDB objects collection.
// The ObjectManager struct is responsible for interacting with the MongoDB objects collection. It is CRUD for placed objects,
// plus a cascading delete by environment.
// The PlacedObject and Transform structs are shared with the editor client, which receives them as JSON.
package object
