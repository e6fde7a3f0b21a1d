package shell

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"koharu-go/internal/update"
)

func TestMenuRunsItemsUntilExit(t *testing.T) {
	var ran []string
	items := []MenuItem{
		{Label: "Backup", Run: func(context.Context) error { ran = append(ran, "backup"); return nil }},
		{Label: "Update", Run: func(context.Context) error { ran = append(ran, "update"); return nil }, SelfDismissing: true},
		{Label: "Clean", Run: func(context.Context) error { return errors.New("keep must be positive") }},
	}
	// backup, update, clean, exit
	p := &scriptedPrompter{selects: []int{0, 1, 2, 3}}
	var out bytes.Buffer

	if err := NewMenu(&out, p, items).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Join(ran, ",") != "backup,update" {
		t.Errorf("ran = %v", ran)
	}
	// backup and the failed clean pause; the self-dismissing update does not.
	if p.pauses != 2 {
		t.Errorf("pauses = %d, want 2", p.pauses)
	}
	if !strings.Contains(out.String(), "Error: keep must be positive") {
		t.Errorf("error not shown:\n%s", out.String())
	}
}

func TestMenuInterruptExits(t *testing.T) {
	p := &scriptedPrompter{interrupt: true}
	if err := NewMenu(&bytes.Buffer{}, p, nil).Run(context.Background()); err != nil {
		t.Errorf("Run = %v, want nil", err)
	}
}

func TestMenuItemInterruptReturnsToMenu(t *testing.T) {
	items := []MenuItem{
		{Label: "Restore", Run: func(context.Context) error { return update.ErrInterrupted }},
	}
	p := &scriptedPrompter{selects: []int{0, 1}}
	var out bytes.Buffer

	if err := NewMenu(&out, p, items).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "Cancelled.") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestMenuStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewMenu(&bytes.Buffer{}, &scriptedPrompter{}, nil).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}
