package shell

import (
	"context"
	"errors"
	"fmt"
	"io"

	"koharu-go/internal/update"
)

// MenuItem is one entry of the interactive menu.
type MenuItem struct {
	Label string
	Run   func(ctx context.Context) error

	// SelfDismissing items wait for the user themselves, so the menu does not
	// pause after them.
	SelfDismissing bool
}

// Menu loops over a selection of items until the user exits.
type Menu struct {
	out      io.Writer
	prompter Prompter
	items    []MenuItem
}

const exitLabel = "Exit"

// NewMenu creates a menu. An "Exit" entry is appended to items.
func NewMenu(out io.Writer, prompter Prompter, items []MenuItem) *Menu {
	return &Menu{out: out, prompter: prompter, items: items}
}

// Run shows the menu until the user picks Exit or interrupts the selection.
// Errors from items are printed and the menu continues.
func (m *Menu) Run(ctx context.Context) error {
	labels := make([]string, 0, len(m.items)+1)
	for _, it := range m.items {
		labels = append(labels, it.Label)
	}
	labels = append(labels, exitLabel)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx, err := m.prompter.Select("What would you like to do?", labels)
		if errors.Is(err, update.ErrInterrupted) {
			return nil
		}
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(m.items) {
			return nil
		}

		item := m.items[idx]
		if err := item.Run(ctx); err != nil {
			if errors.Is(err, update.ErrInterrupted) {
				fmt.Fprintln(m.out, infoStyle.Render("Cancelled."))
			} else {
				fmt.Fprintln(m.out, errorStyle.Render("Error: "+err.Error()))
			}
		} else if item.SelfDismissing {
			continue
		}

		if err := m.prompter.Pause("Press enter to return to the menu"); err != nil {
			if errors.Is(err, update.ErrInterrupted) {
				return nil
			}
			return err
		}
	}
}
