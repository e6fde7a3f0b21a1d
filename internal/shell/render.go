package shell

import (
	"fmt"
	"strings"

	"koharu-go/internal/koharu"
	"koharu-go/internal/releasenotes"
	"koharu-go/internal/update"
)

const (
	maxDirtyFiles = 5
	maxCommits    = 10
	notesWidth    = 80
)

// RenderState renders one update state. repo is the upstream release
// repository ("owner/name"); it may be empty.
func RenderState(s update.State, repo string) string {
	var b strings.Builder
	switch s.Status {
	case update.StatusChecking:
		b.WriteString(infoStyle.Render("Checking git status...") + "\n")
	case update.StatusFetching:
		b.WriteString(infoStyle.Render("Fetching upstream updates...") + "\n")
	case update.StatusBackingUp:
		b.WriteString(infoStyle.Render("Backing up content...") + "\n")
	case update.StatusMerging:
		if s.Info != nil && s.Info.IsDowngrade {
			b.WriteString(infoStyle.Render("Resetting to the target version...") + "\n")
		} else {
			b.WriteString(infoStyle.Render("Merging upstream changes...") + "\n")
		}
	case update.StatusInstalling:
		b.WriteString(infoStyle.Render("Installing dependencies...") + "\n")
	case update.StatusDirtyWarning:
		renderDirty(&b, s)
	case update.StatusPreview, update.StatusBackupConfirm:
		renderPreview(&b, s)
	case update.StatusDone:
		renderDone(&b, s, repo)
	case update.StatusUpToDate:
		if s.Options.TargetTag != "" {
			b.WriteString(successStyle.Render("Already at that version") + "\n")
		} else {
			b.WriteString(successStyle.Render("Already up to date") + "\n")
		}
		if s.Info != nil {
			fmt.Fprintf(&b, "Current version: %s\n", displayVersion(s.Info.CurrentVersion))
		}
	case update.StatusConflict:
		renderConflict(&b, s)
	case update.StatusError:
		b.WriteString(errorStyle.Render("Update failed") + "\n")
		if s.Error != "" {
			b.WriteString("  " + s.Error + "\n")
		}
	}
	return b.String()
}

func renderDirty(b *strings.Builder, s update.State) {
	b.WriteString(warningStyle.Render("The working tree has uncommitted changes") + "\n")
	if s.GitStatus != nil {
		files := s.GitStatus.UncommittedFiles
		for i, f := range files {
			if i == maxDirtyFiles {
				fmt.Fprintf(b, "  ... and %d more\n", len(files)-maxDirtyFiles)
				break
			}
			b.WriteString("  " + f + "\n")
		}
	}
	b.WriteString("\nCommit or stash them before updating:\n")
	b.WriteString("  " + codeStyle.Render("git add . && git commit -m \"save changes\"") + "\n")
	b.WriteString("  " + codeStyle.Render("git stash") + "\n")
}

func renderPreview(b *strings.Builder, s update.State) {
	info := s.Info
	if info == nil {
		return
	}
	if s.BackupFile != "" {
		b.WriteString(successStyle.Render("Backup complete: ") + s.BackupFile + "\n")
	}
	if info.IsDowngrade {
		b.WriteString(warningStyle.Render("This is a downgrade to an older version") + "\n")
		b.WriteString("  Downgrading resets the theme files; local commits after the target are removed.\n")
		if s.BackupFile == "" && (s.Options.SkipBackup || s.BackupSkipped) {
			b.WriteString(warningStyle.Render("  No backup will be taken.") + "\n")
		}
	}
	if info.BranchWarning != "" {
		b.WriteString(warningStyle.Render(info.BranchWarning) + "\n")
	}

	from, to := displayVersion(info.CurrentVersion), displayVersion(info.LatestVersion)
	switch {
	case info.IsDowngrade:
		b.WriteString(titleStyle.Render("Downgrade: "+from+" -> "+to) + "\n")
	case s.Options.TargetTag != "":
		b.WriteString(titleStyle.Render("Update to tagged version: "+from+" -> "+to) + "\n")
	default:
		b.WriteString(titleStyle.Render("New version available: "+from+" -> "+to) + "\n")
	}

	if n := len(info.Commits); n > 0 {
		if info.IsDowngrade {
			fmt.Fprintf(b, "\n%d commit(s) will be removed:\n", n)
		} else {
			fmt.Fprintf(b, "\n%d new commit(s):\n", n)
		}
		for i, c := range info.Commits {
			if i == maxCommits {
				fmt.Fprintf(b, "  ... and %d more\n", n-maxCommits)
				break
			}
			mark := addedStyle.Render("+")
			if info.IsDowngrade {
				mark = removedStyle.Render("-")
			}
			fmt.Fprintf(b, "  %s %s %s %s\n", mark, codeStyle.Render(c.Hash), c.Message, infoStyle.Render("("+c.Date+")"))
		}
	}

	if !info.IsDowngrade && info.AheadCount > 0 {
		fmt.Fprintf(b, "\n%s\n", infoStyle.Render(fmt.Sprintf(
			"Note: the local branch has %d commit(s) not in the upstream template", info.AheadCount)))
	}
	if s.Options.CheckOnly {
		b.WriteString("\n" + infoStyle.Render("Check only; nothing was changed.") + "\n")
	}
	if s.Status == update.StatusBackupConfirm {
		b.WriteString("\nA backup of your content is recommended before the update.\n")
	}
}

func renderDone(b *strings.Builder, s update.State, repo string) {
	downgrade := s.Info != nil && s.Info.IsDowngrade
	if downgrade {
		b.WriteString(successStyle.Render("Downgrade complete") + "\n")
	} else {
		b.WriteString(successStyle.Render("Update complete") + "\n")
	}
	if s.Info != nil {
		fmt.Fprintf(b, "Now at version %s\n", displayVersion(s.Info.LatestVersion))
	}
	if s.BackupFile != "" {
		fmt.Fprintf(b, "Backup: %s\n", s.BackupFile)
	}
	if !downgrade && repo != "" && s.Info != nil && knownVersion(s.Info.LatestVersion) {
		fmt.Fprintf(b, "Release notes: %s\n", releasenotes.BuildReleaseURL(repo, s.Info.LatestVersion))
	}
	if downgrade {
		b.WriteString("\n" + warningStyle.Render("Restore your content now:") + "\n")
		if s.BackupFile != "" {
			b.WriteString("  " + codeStyle.Render("koharu restore --latest") + "\n")
		} else {
			b.WriteString("  No backup was taken; restore src/content/blog and config/site.yaml by hand.\n")
		}
	}
	b.WriteString("\nNext steps:\n")
	b.WriteString("  " + codeStyle.Render("pnpm dev") + "   start the dev server and check the site\n")
}

func renderConflict(b *strings.Builder, s update.State) {
	if s.Aborting {
		b.WriteString(infoStyle.Render("Aborting merge...") + "\n")
		return
	}
	b.WriteString(errorStyle.Render("Merge conflict") + "\n")
	if s.MergeResult != nil {
		for _, f := range s.MergeResult.ConflictFiles {
			b.WriteString("  " + removedStyle.Render(f) + "\n")
		}
	}
	b.WriteString("\nYou can:\n")
	b.WriteString("  1. Resolve the conflicts by hand, then run " + codeStyle.Render("git add . && git commit") + "\n")
	b.WriteString("  2. Abort the merge with " + codeStyle.Render("git merge --abort") + "\n")
	if s.BackupFile != "" {
		fmt.Fprintf(b, "\nBackup: %s\n", s.BackupFile)
	}
}

// RenderNotes renders release notes for version. A nil n renders the
// fallback line and, when repo is known, the link to the release page.
func RenderNotes(n *koharu.ReleaseNotes, repo, version string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Release notes") + "\n")
	switch {
	case n == nil:
		b.WriteString(infoStyle.Render("(no notes available)") + "\n")
	case len(n.Summary) > 0:
		var md strings.Builder
		for _, line := range n.Summary {
			md.WriteString("- " + line + "\n")
		}
		b.WriteString(strings.TrimRight(releasenotes.Render(md.String(), notesWidth), "\n") + "\n")
	default:
		b.WriteString(infoStyle.Render("(no notes)") + "\n")
	}

	url := ""
	if n != nil {
		url = n.URL
	}
	if url == "" && repo != "" && knownVersion(version) {
		url = releasenotes.BuildReleaseURL(repo, version)
	}
	if url != "" {
		fmt.Fprintf(&b, "Full notes: %s\n", url)
	}
	return b.String()
}

// RenderBackupResult renders the per-item outcome of a backup run.
func RenderBackupResult(res *koharu.BackupResult) string {
	var b strings.Builder
	skipped := 0
	for _, it := range res.Items {
		switch {
		case it.Copied:
			fmt.Fprintf(&b, "  %s %s\n", addedStyle.Render("+"), it.Item.Label)
		case it.Err != nil:
			skipped++
			fmt.Fprintf(&b, "  %s %s %s\n", removedStyle.Render("!"), it.Item.Label, errorStyle.Render("("+it.Err.Error()+")"))
		default:
			skipped++
			fmt.Fprintf(&b, "  %s %s %s\n", removedStyle.Render("-"), it.Item.Label, infoStyle.Render("(missing, skipped)"))
		}
	}
	b.WriteString("\n" + successStyle.Render("Backup complete") + "\n")
	fmt.Fprintf(&b, "  File:    %s\n", res.ArchivePath)
	fmt.Fprintf(&b, "  Type:    %s\n", res.Type)
	fmt.Fprintf(&b, "  Size:    %s\n", FormatSize(res.Size))
	fmt.Fprintf(&b, "  Items:   %d copied, %d skipped\n", res.Copied(), skipped)
	if missing := res.MissingRequired(); len(missing) > 0 {
		labels := make([]string, len(missing))
		for i, it := range missing {
			labels[i] = it.Label
		}
		b.WriteString(warningStyle.Render("Required items missing: "+strings.Join(labels, ", ")) + "\n")
	}
	b.WriteString(infoStyle.Render("Use 'koharu restore' to bring it back after a theme update.") + "\n")
	return b.String()
}

// RenderArchives renders the local archive listing.
func RenderArchives(records []koharu.ArchiveRecord) string {
	if len(records) == 0 {
		return infoStyle.Render("No backups found.") + "\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-36s  %-8s  %10s  %s\n", "NAME", "TYPE", "SIZE", "TIMESTAMP")
	for _, r := range records {
		fmt.Fprintf(&b, "%-36s  %-8s  %10s  %s\n", r.Name, r.Type, FormatSize(r.Size), r.Timestamp)
	}
	return b.String()
}

// ArchiveLabel is the one-line description used in selection lists.
func ArchiveLabel(r koharu.ArchiveRecord) string {
	return fmt.Sprintf("%s  (%s, %s)", r.Name, r.Type, FormatSize(r.Size))
}

// RenderManifest renders the summary shown before a restore is confirmed.
func RenderManifest(name string, m *koharu.Manifest) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Restore "+name) + "\n")
	if m == nil {
		b.WriteString(warningStyle.Render("  The archive has no readable manifest.") + "\n")
		return b.String()
	}
	fmt.Fprintf(&b, "  Type:      %s\n", m.Type)
	fmt.Fprintf(&b, "  Version:   %s\n", displayVersion(m.Version))
	fmt.Fprintf(&b, "  Timestamp: %s\n", m.Timestamp)
	return b.String()
}

// RenderRestore renders the paths a restore wrote, or would write on a dry run.
func RenderRestore(paths []string, dryRun bool) string {
	var b strings.Builder
	if dryRun {
		b.WriteString(titleStyle.Render("Dry run: these paths would be restored") + "\n")
	}
	for _, p := range paths {
		fmt.Fprintf(&b, "  %s %s\n", addedStyle.Render("+"), p)
	}
	if dryRun {
		fmt.Fprintf(&b, "\n%d path(s); nothing was changed.\n", len(paths))
		return b.String()
	}
	b.WriteString("\n" + successStyle.Render(fmt.Sprintf("Restored %d path(s)", len(paths))) + "\n")
	b.WriteString("\nNext steps:\n")
	b.WriteString("  " + codeStyle.Render("pnpm install") + "\n")
	b.WriteString("  " + codeStyle.Render("pnpm build") + "\n")
	b.WriteString("  " + codeStyle.Render("pnpm dev") + "\n")
	return b.String()
}

// RenderClean renders a retention pass. planned marks a preview.
func RenderClean(res *koharu.CleanResult, planned bool) string {
	var b strings.Builder
	verb := "Deleted"
	if planned {
		verb = "Would delete"
	}
	for _, name := range res.Deleted {
		fmt.Fprintf(&b, "  %s %s\n", removedStyle.Render("-"), name)
	}
	if len(res.Deleted) == 0 {
		b.WriteString(infoStyle.Render("Nothing to delete.") + "\n")
	}
	fmt.Fprintf(&b, "%s %d archive(s), kept %d\n", verb, len(res.Deleted), len(res.Kept))
	return b.String()
}

// RenderHistory renders recorded operations, one per line.
func RenderHistory(ops []koharu.Operation) string {
	if len(ops) == 0 {
		return infoStyle.Render("No operations recorded.") + "\n"
	}
	var b strings.Builder
	for _, op := range ops {
		finished := "-"
		if op.FinishedAt.Valid {
			finished = op.FinishedAt.Time.Local().Format("15:04:05")
		}
		fmt.Fprintf(&b, "#%d  %-8s  %s  %-10s  %-9s  %s\n",
			op.ID, op.Operation, op.StartedAt.Local().Format("2006-01-02 15:04:05"), op.Status, finished, op.Parameters)
	}
	return b.String()
}

// RenderRemote renders the names stored in a vault.
func RenderRemote(names []string) string {
	if len(names) == 0 {
		return infoStyle.Render("The vault is empty.") + "\n"
	}
	return strings.Join(names, "\n") + "\n"
}

// Help is the usage summary shown by the menu.
const Help = `koharu maintains a blog built from the koharu template.

Usage:
  koharu                    open the interactive menu
  koharu backup [--full]    snapshot content into backups/
  koharu restore [FILE]     restore a snapshot (--latest, --dry-run, --force)
  koharu update             update from the upstream template
                            (--check, --skip-backup, --force, --tag VERSION)
  koharu clean --keep N     keep the newest N snapshots
  koharu list               list snapshots
  koharu history [-n N]     show recorded operations
  koharu push [FILE]        upload a snapshot to the vault
  koharu pull NAME          download a snapshot from the vault
  koharu keys init          create the vault encryption keys
  koharu config init|list   manage the config file
`
