// Package sequence contains the integer identity counters kept in MongoDB.
// The SequenceManager struct is responsible for interacting with the MongoDB counters collection.
// Environments and placed objects use integer ids on the wire, which MongoDB does not generate by itself.
package sequence
