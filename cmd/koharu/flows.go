package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"koharu-go/internal/app"
	"koharu-go/internal/shell"
	"koharu-go/internal/update"
)

func runBackup(ctx context.Context, a *app.App, full bool) error {
	res, err := a.Backup(ctx, full)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	fmt.Print(shell.RenderBackupResult(res))
	return nil
}

func runList(ctx context.Context, a *app.App) error {
	records, err := a.Archives(ctx)
	if err != nil {
		return err
	}
	fmt.Print(shell.RenderArchives(records))
	return nil
}

func runHistory(ctx context.Context, a *app.App, limit int) error {
	ops, err := a.History(ctx, limit)
	if err != nil {
		return err
	}
	fmt.Print(shell.RenderHistory(ops))
	return nil
}

func runClean(ctx context.Context, a *app.App, keep int, dryRun bool) error {
	if dryRun {
		res, err := a.PlanClean(keep)
		if err != nil {
			return err
		}
		fmt.Print(shell.RenderClean(res, true))
		return nil
	}

	res, err := a.Clean(ctx, keep)
	if err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}
	fmt.Print(shell.RenderClean(res, false))
	return nil
}

// restoreRequest selects an archive by File, by Latest, or, when neither is
// set, by asking.
type restoreRequest struct {
	File   string
	Latest bool
	DryRun bool
	Force  bool
}

// runRestore restores an archive. p is nil in scripted sessions, which then
// need an explicit selection and --force.
func runRestore(ctx context.Context, a *app.App, p shell.Prompter, req restoreRequest) error {
	archivePath, err := selectArchive(ctx, a, p, req)
	if err != nil || archivePath == "" {
		return err
	}
	name := filepath.Base(archivePath)

	m, err := a.ReadManifest(ctx, archivePath)
	if err != nil {
		return err
	}
	fmt.Print(shell.RenderManifest(name, m))

	if req.DryRun {
		paths, err := a.PreviewRestore(ctx, archivePath)
		if err != nil {
			return err
		}
		fmt.Print(shell.RenderRestore(paths, true))
		return nil
	}

	if !req.Force {
		if p == nil {
			return errors.New("refusing to restore without confirmation; pass --force")
		}
		ok, err := p.Confirm("Restore "+name+"? Existing files will be overwritten.", false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	restored, err := a.Restore(ctx, archivePath)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	fmt.Print(shell.RenderRestore(restored, false))
	return nil
}

// selectArchive returns "" with no error when there is nothing to choose from.
func selectArchive(ctx context.Context, a *app.App, p shell.Prompter, req restoreRequest) (string, error) {
	switch {
	case req.File != "":
		return a.ResolveArchive(req.File)
	case req.Latest:
		rec, err := a.LatestArchive(ctx)
		if err != nil {
			return "", err
		}
		if rec == nil {
			return "", errors.New("no backups found")
		}
		return rec.Path, nil
	case p == nil:
		return "", errors.New("pass a file or --latest")
	}

	records, err := a.Archives(ctx)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		fmt.Print(shell.RenderArchives(nil))
		return "", nil
	}
	labels := make([]string, len(records))
	for i, r := range records {
		labels[i] = shell.ArchiveLabel(r)
	}
	idx, err := p.Select("Which backup?", labels)
	if err != nil {
		return "", err
	}
	return records[idx].Path, nil
}

func runUpdate(ctx context.Context, a *app.App, p shell.Prompter, opts update.Options, interactive bool) error {
	view := shell.NewUpdateView(os.Stdout, p, a.Config().Upstream.ReleaseRepo)
	final, err := a.Update(ctx, opts, view, interactive)
	if err != nil {
		return err
	}
	if update.ExitCode(final) != 0 {
		return errUpdateFailed
	}
	return nil
}
