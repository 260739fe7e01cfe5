package editor

// Session is what the editor knows after login. The token does not change for the lifetime of a scene.
type Session struct {
	Token         string
	UserID        string
	EnvironmentID int
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}
