// Package update implements the self-update workflow as a pure state machine
// driven by effect runners.
package update

import "koharu-go/internal/koharu"

// Status is the discriminator of the update state machine.
type Status string

const (
	StatusChecking      Status = "checking"
	StatusDirtyWarning  Status = "dirty-warning"
	StatusFetching      Status = "fetching"
	StatusPreview       Status = "preview"
	StatusBackupConfirm Status = "backup-confirm"
	StatusBackingUp     Status = "backing-up"
	StatusMerging       Status = "merging"
	StatusInstalling    Status = "installing"
	StatusDone          Status = "done"
	StatusConflict      Status = "conflict"
	StatusUpToDate      Status = "up-to-date"
	StatusError         Status = "error"
)

// Options are the caller's flags for one run.
type Options struct {
	CheckOnly  bool
	SkipBackup bool
	Force      bool
	TargetTag  string
}

// Info describes the pending update. It is computed once per run.
type Info struct {
	CurrentVersion string
	LatestVersion  string
	IsDowngrade    bool
	AheadCount     int
	BehindCount    int
	Commits        []koharu.Commit
	BranchWarning  string

	// Target is the ref merged into (or reset to) the current branch.
	Target string
}

// State is the single mutable value of an update run. It is only ever replaced
// by Reduce.
type State struct {
	Status      Status
	GitStatus   *koharu.GitStatus
	Info        *Info
	MergeResult *koharu.MergeResult
	BackupFile  string
	Error       string
	Options     Options

	// BackupSkipped is set once the user declined the backup offer, so the next
	// confirmation goes straight to merging.
	BackupSkipped bool

	// Aborting is set while the merge abort requested from the conflict state runs.
	Aborting bool

	// Finished ends the run. Cancelled marks a run the user backed out of,
	// including a successful merge abort.
	Finished  bool
	Cancelled bool
}

// NewState returns the initial state of a run.
func NewState(opts Options) State {
	return State{Status: StatusChecking, Options: opts}
}

// IsTerminal reports whether the run can only be dismissed from s.
func IsTerminal(s State) bool {
	switch s.Status {
	case StatusDone, StatusError, StatusUpToDate, StatusDirtyWarning:
		return true
	case StatusConflict:
		return !s.Aborting
	case StatusPreview:
		return s.Options.CheckOnly
	}
	return false
}

// IsBusy reports whether s is waiting on an effect rather than on the user.
func IsBusy(s State) bool {
	switch s.Status {
	case StatusChecking, StatusFetching, StatusBackingUp, StatusMerging, StatusInstalling:
		return true
	case StatusConflict:
		return s.Aborting
	}
	return false
}

// ExitCode maps a finished run to a process exit status.
func ExitCode(s State) int {
	if s.Cancelled {
		return 0
	}
	switch s.Status {
	case StatusError, StatusConflict:
		return 1
	}
	return 0
}
