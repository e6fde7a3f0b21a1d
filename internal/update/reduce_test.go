package update_test

import (
	"errors"
	"testing"

	"koharu-go/internal/koharu"
	"koharu-go/internal/update"
)

func previewState(opts update.Options) update.State {
	s := update.NewState(opts)
	s = update.Reduce(s, update.GitStatusEvent{})
	return update.Reduce(s, update.InfoEvent{Info: update.Info{BehindCount: 3, Target: "origin/main"}})
}

func TestReduce_Checking(t *testing.T) {
	dirty := koharu.GitStatus{UncommittedFiles: []string{"a.md"}}

	tests := []struct {
		name   string
		opts   update.Options
		status koharu.GitStatus
		want   update.Status
	}{
		{name: "clean tree fetches", status: koharu.GitStatus{}, want: update.StatusFetching},
		{name: "dirty tree warns", status: dirty, want: update.StatusDirtyWarning},
		{name: "dirty tree forced fetches", opts: update.Options{Force: true}, status: dirty, want: update.StatusFetching},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := update.Reduce(update.NewState(tt.opts), update.GitStatusEvent{Status: tt.status})
			if s.Status != tt.want {
				t.Errorf("Status = %q, want %q", s.Status, tt.want)
			}
			if s.GitStatus == nil {
				t.Error("GitStatus should be recorded")
			}
		})
	}
}

func TestReduce_Fetching(t *testing.T) {
	tests := []struct {
		name string
		opts update.Options
		info update.Info
		want update.Status
	}{
		{name: "nothing behind", info: update.Info{}, want: update.StatusUpToDate},
		{name: "only local commits", info: update.Info{AheadCount: 2}, want: update.StatusUpToDate},
		{name: "behind", info: update.Info{BehindCount: 3}, want: update.StatusPreview},
		{name: "target equal to HEAD", opts: update.Options{TargetTag: "v1.0.0"}, info: update.Info{}, want: update.StatusUpToDate},
		{name: "target behind HEAD", opts: update.Options{TargetTag: "v1.0.0"}, info: update.Info{AheadCount: 4, IsDowngrade: true}, want: update.StatusPreview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := update.Reduce(update.NewState(tt.opts), update.GitStatusEvent{})
			s = update.Reduce(s, update.InfoEvent{Info: tt.info})
			if s.Status != tt.want {
				t.Errorf("Status = %q, want %q", s.Status, tt.want)
			}
			if s.Info == nil {
				t.Error("Info should be recorded")
			}
		})
	}
}

func TestReduce_ConfirmWithoutBackupGoesToBackupConfirm(t *testing.T) {
	s := previewState(update.Options{})
	if s.Info.IsDowngrade || s.Info.BehindCount != 3 {
		t.Fatalf("unexpected preview info: %+v", s.Info)
	}

	s = update.Reduce(s, update.ConfirmEvent{})
	if s.Status != update.StatusBackupConfirm {
		t.Fatalf("Status = %q, want %q", s.Status, update.StatusBackupConfirm)
	}
}

func TestReduce_BackupFlow(t *testing.T) {
	s := previewState(update.Options{})
	s = update.Reduce(s, update.ConfirmEvent{})
	s = update.Reduce(s, update.BackupConfirmEvent{})
	if s.Status != update.StatusBackingUp {
		t.Fatalf("Status = %q, want %q", s.Status, update.StatusBackingUp)
	}

	s = update.Reduce(s, update.BackupDoneEvent{File: "backup-1.tar.gz"})
	if s.Status != update.StatusPreview || s.BackupFile != "backup-1.tar.gz" {
		t.Fatalf("after backup: Status = %q, BackupFile = %q", s.Status, s.BackupFile)
	}

	s = update.Reduce(s, update.ConfirmEvent{})
	if s.Status != update.StatusMerging {
		t.Errorf("confirm after backup: Status = %q, want %q", s.Status, update.StatusMerging)
	}
}

func TestReduce_BackupSkip(t *testing.T) {
	s := previewState(update.Options{})
	s = update.Reduce(s, update.ConfirmEvent{})
	s = update.Reduce(s, update.BackupSkipEvent{})
	if s.Status != update.StatusPreview || s.BackupFile != "" {
		t.Fatalf("after skip: Status = %q, BackupFile = %q", s.Status, s.BackupFile)
	}

	s = update.Reduce(s, update.ConfirmEvent{})
	if s.Status != update.StatusMerging {
		t.Errorf("confirm after skip: Status = %q, want %q", s.Status, update.StatusMerging)
	}
}

func TestReduce_SkipBackupOption(t *testing.T) {
	s := previewState(update.Options{SkipBackup: true})
	s = update.Reduce(s, update.ConfirmEvent{})
	if s.Status != update.StatusMerging {
		t.Errorf("Status = %q, want %q", s.Status, update.StatusMerging)
	}
}

func TestReduce_CheckOnlyPreviewIgnoresConfirm(t *testing.T) {
	s := previewState(update.Options{CheckOnly: true})
	if !update.IsTerminal(s) {
		t.Error("check-only preview should be terminal")
	}
	s = update.Reduce(s, update.ConfirmEvent{})
	if s.Status != update.StatusPreview {
		t.Errorf("Status = %q, want %q", s.Status, update.StatusPreview)
	}
}

func TestReduce_CancelEndsRunWithoutStateChange(t *testing.T) {
	s := previewState(update.Options{})
	s = update.Reduce(s, update.CancelEvent{})
	if !s.Finished || !s.Cancelled {
		t.Fatalf("Finished = %v, Cancelled = %v", s.Finished, s.Cancelled)
	}
	if s.Status != update.StatusPreview {
		t.Errorf("Status = %q, want %q", s.Status, update.StatusPreview)
	}
	if update.ExitCode(s) != 0 {
		t.Errorf("ExitCode = %d, want 0", update.ExitCode(s))
	}
}

func TestReduce_MergeAndInstall(t *testing.T) {
	s := previewState(update.Options{SkipBackup: true})
	s = update.Reduce(s, update.ConfirmEvent{})
	s = update.Reduce(s, update.MergeDoneEvent{Result: &koharu.MergeResult{}})
	if s.Status != update.StatusInstalling {
		t.Fatalf("Status = %q, want %q", s.Status, update.StatusInstalling)
	}
	s = update.Reduce(s, update.InstallDoneEvent{})
	if s.Status != update.StatusDone {
		t.Fatalf("Status = %q, want %q", s.Status, update.StatusDone)
	}
	s = update.Reduce(s, update.DismissEvent{})
	if !s.Finished || s.Cancelled {
		t.Errorf("Finished = %v, Cancelled = %v", s.Finished, s.Cancelled)
	}
}

func conflictState(t *testing.T) update.State {
	t.Helper()
	s := previewState(update.Options{SkipBackup: true})
	s = update.Reduce(s, update.ConfirmEvent{})
	s = update.Reduce(s, update.MergeDoneEvent{Result: &koharu.MergeResult{ConflictFiles: []string{"a.md"}}})
	if s.Status != update.StatusConflict {
		t.Fatalf("Status = %q, want %q", s.Status, update.StatusConflict)
	}
	if got := s.MergeResult.ConflictFiles; len(got) != 1 || got[0] != "a.md" {
		t.Fatalf("ConflictFiles = %v", got)
	}
	return s
}

func TestReduce_AbortMergeEndsRunCleanly(t *testing.T) {
	s := conflictState(t)

	s = update.Reduce(s, update.AbortMergeEvent{})
	if !s.Aborting || !update.IsBusy(s) {
		t.Fatalf("Aborting = %v, busy = %v", s.Aborting, update.IsBusy(s))
	}

	s = update.Reduce(s, update.AbortMergeDoneEvent{})
	if !s.Finished || !s.Cancelled {
		t.Fatalf("Finished = %v, Cancelled = %v", s.Finished, s.Cancelled)
	}
	switch s.Status {
	case update.StatusError, update.StatusDone, update.StatusPreview, update.StatusMerging:
		t.Errorf("Status = %q after abort", s.Status)
	}
	if update.ExitCode(s) != 0 {
		t.Errorf("ExitCode = %d, want 0", update.ExitCode(s))
	}

	// A finished run ignores everything else.
	after := update.Reduce(s, update.ErrorEvent{Message: "late"})
	if after.Status != s.Status || after.Error != "" {
		t.Errorf("finished state changed: %+v", after)
	}
}

func TestReduce_AbortMergeFailure(t *testing.T) {
	s := conflictState(t)
	s = update.Reduce(s, update.AbortMergeEvent{})
	s = update.Reduce(s, update.AbortMergeDoneEvent{Err: errors.New("boom")})
	if s.Status != update.StatusError || s.Error == "" {
		t.Fatalf("Status = %q, Error = %q", s.Status, s.Error)
	}
	if update.ExitCode(s) != 1 {
		t.Errorf("ExitCode = %d, want 1", update.ExitCode(s))
	}
}

func TestReduce_ConflictExitCode(t *testing.T) {
	s := conflictState(t)
	s = update.Reduce(s, update.DismissEvent{})
	if !s.Finished {
		t.Fatal("dismissing a conflict should finish the run")
	}
	if update.ExitCode(s) != 1 {
		t.Errorf("ExitCode = %d, want 1", update.ExitCode(s))
	}
}

func TestReduce_ErrorFromAnyStep(t *testing.T) {
	for _, st := range []update.Status{update.StatusChecking, update.StatusFetching, update.StatusBackingUp, update.StatusMerging, update.StatusInstalling} {
		t.Run(string(st), func(t *testing.T) {
			s := update.State{Status: st}
			s = update.Reduce(s, update.ErrorEvent{Message: "failed"})
			if s.Status != update.StatusError || s.Error != "failed" {
				t.Errorf("Status = %q, Error = %q", s.Status, s.Error)
			}
		})
	}
}

func TestReduce_IgnoresUnrelatedEvents(t *testing.T) {
	s := update.NewState(update.Options{})
	next := update.Reduce(s, update.InstallDoneEvent{})
	if next.Status != update.StatusChecking {
		t.Errorf("Status = %q, want %q", next.Status, update.StatusChecking)
	}
	next = update.Reduce(s, update.DismissEvent{})
	if next.Finished {
		t.Error("dismiss should not finish a non-terminal state")
	}
}

func TestAutoEvent(t *testing.T) {
	tests := []struct {
		name   string
		state  update.State
		want   update.Event
		wantOK bool
	}{
		{name: "not forced", state: update.State{Status: update.StatusPreview}},
		{name: "forced preview confirms", state: update.State{Status: update.StatusPreview, Options: update.Options{Force: true}}, want: update.ConfirmEvent{}, wantOK: true},
		{name: "forced backup offer accepted", state: update.State{Status: update.StatusBackupConfirm, Options: update.Options{Force: true}}, want: update.BackupConfirmEvent{}, wantOK: true},
		{name: "check-only never confirms", state: update.State{Status: update.StatusPreview, Options: update.Options{Force: true, CheckOnly: true}}},
		{name: "terminal state", state: update.State{Status: update.StatusDone, Options: update.Options{Force: true}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := update.AutoEvent(tt.state)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("event = %#v, want %#v", got, tt.want)
			}
		})
	}
}
