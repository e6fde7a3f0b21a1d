package koharu

import (
	"fmt"
	"strings"
)

// ValidationError reports input that was rejected before any I/O happened.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ArchiveError is returned when the archiving subprocess exits unsuccessfully.
// Stderr holds whatever the tool printed before it failed.
type ArchiveError struct {
	Op      string
	Archive string
	Stderr  string
	Err     error
}

func (e *ArchiveError) Error() string {
	msg := fmt.Sprintf("archive %s %s: %v", e.Op, e.Archive, e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// VersionControlError is returned when a version-control subcommand fails.
type VersionControlError struct {
	Args   []string
	Output string
	Err    error
}

func (e *VersionControlError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if s := strings.TrimSpace(e.Output); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *VersionControlError) Unwrap() error { return e.Err }
