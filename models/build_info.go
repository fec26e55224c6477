package models

// BuildInfo identifies a binary. The fields are stamped with -ldflags at
// release time and stay empty in development builds.
type BuildInfo struct {
	Version string `json:"version"`
	Date    string `json:"date,omitempty"`
	Commit  string `json:"commit,omitempty"`
}

// Short returns the version followed by the commit, when known.
func (b BuildInfo) Short() string {
	switch {
	case b.Version == "":
		return "dev"
	case b.Commit == "":
		return b.Version
	default:
		return b.Version + " (" + b.Commit + ")"
	}
}
