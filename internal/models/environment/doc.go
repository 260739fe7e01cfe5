// Package environment contains the implementation of interacting with the MongoDB environments collection.
// The EnvironmentManager struct is responsible for interacting with the MongoDB environments collection.
// The Environment struct is used to represent a user's 2D world and the bounds it was created with.
package environment
