package editor

// SyncState is the relation between an object's local transform and the server.
type SyncState int

const (
	// Unsaved objects have no server identity yet.
	Unsaved SyncState = iota
	// Clean objects match the last transform confirmed by the server.
	Clean
	// Dirty objects moved past the tolerance since the last confirmation.
	Dirty
)

func (s SyncState) String() string {
	switch s {
	case Unsaved:
		return "unsaved"
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	default:
		return "unknown"
	}
}

// Pending reports whether a save batch has to send the object.
func (s SyncState) Pending() bool {
	return s == Unsaved || s == Dirty
}
