package update

import "koharu-go/internal/koharu"

// Event is an input to Reduce: a user decision or a completed effect.
type Event interface {
	event()
}

// GitStatusEvent carries the working-tree state read in the checking step.
type GitStatusEvent struct{ Status koharu.GitStatus }

// InfoEvent carries the result of the fetch step.
type InfoEvent struct{ Info Info }

// ConfirmEvent accepts the previewed update.
type ConfirmEvent struct{}

// CancelEvent declines the update and ends the run.
type CancelEvent struct{}

// BackupConfirmEvent accepts the backup offer.
type BackupConfirmEvent struct{}

// BackupDoneEvent reports the archive written by the backup step.
type BackupDoneEvent struct{ File string }

// BackupSkipEvent declines the backup offer.
type BackupSkipEvent struct{}

// MergeDoneEvent reports the outcome of the merge step.
type MergeDoneEvent struct{ Result *koharu.MergeResult }

// InstallDoneEvent reports a successful dependency install.
type InstallDoneEvent struct{}

// AbortMergeEvent asks to abort a conflicted merge.
type AbortMergeEvent struct{}

// AbortMergeDoneEvent reports the result of aborting the merge.
type AbortMergeDoneEvent struct{ Err error }

// DismissEvent acknowledges a terminal state.
type DismissEvent struct{}

// ErrorEvent moves the run into the error state.
type ErrorEvent struct{ Message string }

func (GitStatusEvent) event()      {}
func (InfoEvent) event()           {}
func (ConfirmEvent) event()        {}
func (CancelEvent) event()         {}
func (BackupConfirmEvent) event()  {}
func (BackupDoneEvent) event()     {}
func (BackupSkipEvent) event()     {}
func (MergeDoneEvent) event()      {}
func (InstallDoneEvent) event()    {}
func (AbortMergeEvent) event()     {}
func (AbortMergeDoneEvent) event() {}
func (DismissEvent) event()        {}
func (ErrorEvent) event()          {}
