// This file contains the Sequence struct.
// A Sequence is a named integer counter, used to hand out the integer identities the editor expects from MongoDB.

package sequence

// Sequence is one counter document. Value is the last identity handed out.
type Sequence struct {
	ID    string `bson:"_id"`
	Value int    `bson:"value"`
}
