package update

// abortFailedMessage is shown when git merge --abort itself fails.
const abortFailedMessage = "could not abort the merge, run `git merge --abort` manually"

// Reduce computes the next state. It performs no I/O; events that do not apply
// to the current status leave the state unchanged.
func Reduce(s State, ev Event) State {
	if s.Finished {
		return s
	}

	switch e := ev.(type) {
	case ErrorEvent:
		s.Status = StatusError
		s.Error = e.Message
		s.Aborting = false
		return s

	case CancelEvent:
		s.Finished = true
		s.Cancelled = true
		return s

	case DismissEvent:
		if IsTerminal(s) {
			s.Finished = true
		}
		return s
	}

	switch s.Status {
	case StatusChecking:
		if e, ok := ev.(GitStatusEvent); ok {
			st := e.Status
			s.GitStatus = &st
			if st.IsDirty() && !s.Options.Force {
				s.Status = StatusDirtyWarning
			} else {
				s.Status = StatusFetching
			}
		}

	case StatusFetching:
		if e, ok := ev.(InfoEvent); ok {
			info := e.Info
			s.Info = &info
			if upToDate(info, s.Options) {
				s.Status = StatusUpToDate
			} else {
				s.Status = StatusPreview
			}
		}

	case StatusPreview:
		if _, ok := ev.(ConfirmEvent); ok && !s.Options.CheckOnly {
			if !s.Options.SkipBackup && !s.BackupSkipped && s.BackupFile == "" {
				s.Status = StatusBackupConfirm
			} else {
				s.Status = StatusMerging
			}
		}

	case StatusBackupConfirm:
		switch ev.(type) {
		case BackupConfirmEvent:
			s.Status = StatusBackingUp
		case BackupSkipEvent:
			s.BackupSkipped = true
			s.Status = StatusPreview
		}

	case StatusBackingUp:
		if e, ok := ev.(BackupDoneEvent); ok {
			s.BackupFile = e.File
			s.Status = StatusPreview
		}

	case StatusMerging:
		if e, ok := ev.(MergeDoneEvent); ok {
			if e.Result.HasConflicts() {
				s.MergeResult = e.Result
				s.Status = StatusConflict
			} else {
				s.Status = StatusInstalling
			}
		}

	case StatusInstalling:
		if _, ok := ev.(InstallDoneEvent); ok {
			s.Status = StatusDone
		}

	case StatusConflict:
		switch e := ev.(type) {
		case AbortMergeEvent:
			s.Aborting = true
		case AbortMergeDoneEvent:
			if !s.Aborting {
				break
			}
			s.Aborting = false
			if e.Err != nil {
				s.Status = StatusError
				s.Error = abortFailedMessage
			} else {
				s.Finished = true
				s.Cancelled = true
			}
		}
	}
	return s
}

// upToDate reports whether there is nothing to apply. Without a target only
// upstream commits matter; with one, any divergence is a change.
func upToDate(info Info, opts Options) bool {
	if info.BehindCount != 0 {
		return false
	}
	return opts.TargetTag == "" || info.AheadCount == 0
}

// AutoEvent returns the decision a forced run makes without asking.
func AutoEvent(s State) (Event, bool) {
	if s.Finished || !s.Options.Force || s.Options.CheckOnly {
		return nil, false
	}
	switch s.Status {
	case StatusPreview:
		return ConfirmEvent{}, true
	case StatusBackupConfirm:
		return BackupConfirmEvent{}, true
	}
	return nil, false
}
