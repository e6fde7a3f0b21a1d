package shell

import (
	"context"
	"fmt"
	"io"
	"sync"

	"koharu-go/internal/koharu"
	"koharu-go/internal/update"
)

// UpdateView draws update states on a writer and turns prompter answers into
// update events.
type UpdateView struct {
	out      io.Writer
	prompter Prompter
	repo     string

	mu      sync.Mutex
	version string
	last    string
}

var _ update.View = (*UpdateView)(nil)

// NewUpdateView creates a view. prompter may be nil for scripted runs, which
// never prompt.
func NewUpdateView(out io.Writer, prompter Prompter, repo string) *UpdateView {
	return &UpdateView{out: out, prompter: prompter, repo: repo}
}

// Render draws s unless it is identical to the previously drawn state.
func (v *UpdateView) Render(s update.State) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s.Info != nil {
		v.version = s.Info.LatestVersion
	}
	text := RenderState(s, v.repo)
	if text == v.last {
		return
	}
	v.last = text
	fmt.Fprint(v.out, text)
}

func (v *UpdateView) Notes(n *koharu.ReleaseNotes) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprint(v.out, RenderNotes(n, v.repo, v.version))
}

// Prompt asks the question that belongs to s.
func (v *UpdateView) Prompt(ctx context.Context, s update.State) (update.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if v.prompter == nil {
		return nil, fmt.Errorf("no prompter for state %s", s.Status)
	}

	switch {
	case s.Status == update.StatusPreview && !s.Options.CheckOnly:
		ok, err := v.prompter.Confirm(confirmMessage(s), s.Info == nil || !s.Info.IsDowngrade)
		if err != nil {
			return nil, err
		}
		if ok {
			return update.ConfirmEvent{}, nil
		}
		return update.CancelEvent{}, nil

	case s.Status == update.StatusBackupConfirm:
		ok, err := v.prompter.Confirm("Back up your content first?", true)
		if err != nil {
			return nil, err
		}
		if ok {
			return update.BackupConfirmEvent{}, nil
		}
		return update.BackupSkipEvent{}, nil

	case s.Status == update.StatusConflict && !s.Aborting:
		ok, err := v.prompter.Confirm("Abort the merge?", true)
		if err != nil {
			return nil, err
		}
		if ok {
			return update.AbortMergeEvent{}, nil
		}
		return update.DismissEvent{}, nil
	}

	if err := v.prompter.Pause("Press enter to continue"); err != nil {
		return nil, err
	}
	return update.DismissEvent{}, nil
}

func confirmMessage(s update.State) string {
	if s.Info == nil {
		return "Continue?"
	}
	to := displayVersion(s.Info.LatestVersion)
	switch {
	case s.Info.IsDowngrade:
		return "Downgrade to " + to + "?"
	case s.Options.TargetTag != "":
		return "Update to " + to + "?"
	}
	return "Update to the latest version?"
}
