// Package log contains the Logger used by the entire application. The Logger is a wrapper around zap.SugaredLogger.
// There should be a single instance of the Logger per binary, and it should be injected into any structs that need to log.
// Subsystems may derive a named child with Named so their lines are easy to filter.
package log
