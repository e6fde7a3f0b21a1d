package koharu

// ReleaseNotes is the human-readable description of an upstream release.
type ReleaseNotes struct {
	Version string
	Name    string
	Body    string
	Summary []string
	URL     string
}
