package shell

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"koharu-go/internal/update"
)

func TestUpdateViewPrompt(t *testing.T) {
	info := &update.Info{CurrentVersion: "1.0.0", LatestVersion: "1.1.0"}
	downgrade := &update.Info{CurrentVersion: "1.1.0", LatestVersion: "1.0.0", IsDowngrade: true}

	tests := []struct {
		name    string
		state   update.State
		confirm bool
		want    update.Event
		asked   string
	}{
		{"preview accepted", update.State{Status: update.StatusPreview, Info: info}, true, update.ConfirmEvent{}, "Update to the latest version?"},
		{"preview declined", update.State{Status: update.StatusPreview, Info: info}, false, update.CancelEvent{}, "Update to the latest version?"},
		{"tagged preview", update.State{Status: update.StatusPreview, Info: info, Options: update.Options{TargetTag: "v1.1.0"}}, true, update.ConfirmEvent{}, "Update to v1.1.0?"},
		{"downgrade preview", update.State{Status: update.StatusPreview, Info: downgrade}, true, update.ConfirmEvent{}, "Downgrade to v1.0.0?"},
		{"backup accepted", update.State{Status: update.StatusBackupConfirm, Info: info}, true, update.BackupConfirmEvent{}, "Back up your content first?"},
		{"backup declined", update.State{Status: update.StatusBackupConfirm, Info: info}, false, update.BackupSkipEvent{}, "Back up your content first?"},
		{"abort merge", update.State{Status: update.StatusConflict}, true, update.AbortMergeEvent{}, "Abort the merge?"},
		{"keep conflict", update.State{Status: update.StatusConflict}, false, update.DismissEvent{}, "Abort the merge?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedPrompter{confirms: []bool{tt.confirm}}
			v := NewUpdateView(&bytes.Buffer{}, p, "")

			ev, err := v.Prompt(context.Background(), tt.state)
			if err != nil {
				t.Fatalf("Prompt: %v", err)
			}
			if ev != tt.want {
				t.Errorf("event = %#v, want %#v", ev, tt.want)
			}
			if len(p.asked) != 1 || p.asked[0] != tt.asked {
				t.Errorf("asked = %q, want %q", p.asked, tt.asked)
			}
		})
	}
}

func TestUpdateViewTerminalStatesPause(t *testing.T) {
	states := []update.State{
		{Status: update.StatusDone},
		{Status: update.StatusError, Error: "boom"},
		{Status: update.StatusUpToDate},
		{Status: update.StatusDirtyWarning},
		{Status: update.StatusPreview, Options: update.Options{CheckOnly: true}},
	}
	for _, s := range states {
		p := &scriptedPrompter{}
		v := NewUpdateView(&bytes.Buffer{}, p, "")
		ev, err := v.Prompt(context.Background(), s)
		if err != nil {
			t.Fatalf("%s: %v", s.Status, err)
		}
		if _, ok := ev.(update.DismissEvent); !ok {
			t.Errorf("%s: event = %#v, want DismissEvent", s.Status, ev)
		}
		if p.pauses != 1 {
			t.Errorf("%s: pauses = %d, want 1", s.Status, p.pauses)
		}
	}
}

func TestUpdateViewInterrupt(t *testing.T) {
	v := NewUpdateView(&bytes.Buffer{}, &scriptedPrompter{interrupt: true}, "")
	_, err := v.Prompt(context.Background(), update.State{Status: update.StatusPreview, Info: &update.Info{}})
	if !errors.Is(err, update.ErrInterrupted) {
		t.Errorf("err = %v, want ErrInterrupted", err)
	}
}

func TestUpdateViewWithoutPrompter(t *testing.T) {
	v := NewUpdateView(&bytes.Buffer{}, nil, "")
	if _, err := v.Prompt(context.Background(), update.State{Status: update.StatusDone}); err == nil {
		t.Error("expected an error without a prompter")
	}
}

func TestUpdateViewRenderSkipsRepeats(t *testing.T) {
	var out bytes.Buffer
	v := NewUpdateView(&out, nil, "owner/koharu")

	s := update.State{Status: update.StatusPreview, Info: &update.Info{CurrentVersion: "1.0.0", LatestVersion: "1.1.0"}}
	v.Render(s)
	v.Render(s)
	if n := strings.Count(out.String(), "New version available"); n != 1 {
		t.Errorf("preview drawn %d times, want 1", n)
	}

	v.Notes(nil)
	if !strings.Contains(out.String(), "releases/tag/v1.1.0") {
		t.Errorf("notes fallback should link the previewed version:\n%s", out.String())
	}
}
