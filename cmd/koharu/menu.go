package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"koharu-go/internal/app"
	"koharu-go/internal/shell"
	"koharu-go/internal/update"
)

var keepChoices = []int{1, 3, 5, 10}

func newMenu(a *app.App, p shell.Prompter) *shell.Menu {
	return shell.NewMenu(os.Stdout, p, []shell.MenuItem{
		{Label: "Back up content", Run: func(ctx context.Context) error {
			return runBackup(ctx, a, false)
		}},
		{Label: "Back up everything", Run: func(ctx context.Context) error {
			return runBackup(ctx, a, true)
		}},
		{Label: "Restore a backup", Run: func(ctx context.Context) error {
			return runRestore(ctx, a, p, restoreRequest{})
		}},
		{Label: "Update from upstream", SelfDismissing: true, Run: func(ctx context.Context) error {
			err := runUpdate(ctx, a, p, update.Options{}, true)
			if errors.Is(err, errUpdateFailed) {
				return nil
			}
			return err
		}},
		{Label: "Clean old backups", Run: func(ctx context.Context) error {
			return menuClean(ctx, a, p)
		}},
		{Label: "List backups", Run: func(ctx context.Context) error {
			return runList(ctx, a)
		}},
		{Label: "Operation history", Run: func(ctx context.Context) error {
			return runHistory(ctx, a, 20)
		}},
		{Label: "Help", Run: func(ctx context.Context) error {
			fmt.Print(shell.Help)
			return nil
		}},
	})
}

// menuClean asks how many archives to keep, shows the plan and confirms it.
func menuClean(ctx context.Context, a *app.App, p shell.Prompter) error {
	labels := make([]string, len(keepChoices))
	for i, n := range keepChoices {
		labels[i] = "Keep the newest " + strconv.Itoa(n)
	}
	idx, err := p.Select("How many backups to keep?", labels)
	if err != nil {
		return err
	}
	keep := keepChoices[idx]

	plan, err := a.PlanClean(keep)
	if err != nil {
		return err
	}
	fmt.Print(shell.RenderClean(plan, true))
	if len(plan.Deleted) == 0 {
		return nil
	}

	ok, err := p.Confirm("Delete these backups?", false)
	if err != nil || !ok {
		return err
	}
	return runClean(ctx, a, keep, false)
}
