// Package database contains the SQL storage backend. The Manager connects to Postgres and falls back to a local
// SQLite file when Postgres is unreachable; the Store implements the same user, environment and object operations
// as the MongoDB managers in the models packages, with the same sentinel errors, on top of gorm.
package database
