package update

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"koharu-go/internal/koharu"
)

// VersionControl is the subset of git the update flow needs.
type VersionControl interface {
	Status(ctx context.Context) (koharu.GitStatus, error)
	HasRemote(ctx context.Context, name string) (bool, error)
	Fetch(ctx context.Context, remote string) error
	CurrentBranch(ctx context.Context) (string, error)
	ResolveRef(ctx context.Context, ref string) (string, error)
	AheadBehind(ctx context.Context, base, target string) (ahead, behind int, err error)
	Log(ctx context.Context, from, to string) ([]koharu.Commit, error)
	ShowFile(ctx context.Context, ref, path string) ([]byte, error)
	Merge(ctx context.Context, target string) (*koharu.MergeResult, error)
	ResetHard(ctx context.Context, target string) error
	AbortMerge(ctx context.Context) error
}

// BackupRunner takes the safety backup offered before merging.
type BackupRunner interface {
	Run(ctx context.Context, full bool) (*koharu.BackupResult, error)
}

// Installer runs the dependency install after a merge.
type Installer interface {
	Install(ctx context.Context) error
}

// Upstream names where updates come from. An empty Remote means
// DefaultUpstreamRemote when the repository has it, else DefaultRemote.
type Upstream struct {
	Remote string
	Branch string
}

const (
	DefaultUpstreamRemote = "upstream"
	DefaultRemote         = "origin"
)

// Runner performs the side effect belonging to each busy status and reports
// its outcome as an Event. Failures become ErrorEvents; nothing is retried.
type Runner struct {
	vcs       VersionControl
	backup    BackupRunner
	installer Installer
	upstream  Upstream
	logger    koharu.Logger
}

// NewRunner creates a Runner.
func NewRunner(vcs VersionControl, backup BackupRunner, installer Installer, upstream Upstream, logger koharu.Logger) *Runner {
	if upstream.Branch == "" {
		upstream.Branch = "main"
	}
	return &Runner{vcs: vcs, backup: backup, installer: installer, upstream: upstream, logger: logger}
}

// Step runs the effect for s. ok is false when s waits on the user instead.
func (r *Runner) Step(ctx context.Context, s State) (ev Event, ok bool) {
	switch s.Status {
	case StatusChecking:
		return r.check(ctx), true
	case StatusFetching:
		return r.fetch(ctx, s.Options), true
	case StatusBackingUp:
		return r.runBackup(ctx), true
	case StatusMerging:
		return r.merge(ctx, s.Info), true
	case StatusInstalling:
		return r.install(ctx), true
	case StatusConflict:
		if s.Aborting {
			return r.abort(ctx), true
		}
	}
	return nil, false
}

func (r *Runner) check(ctx context.Context) Event {
	st, err := r.vcs.Status(ctx)
	if err != nil {
		return ErrorEvent{Message: fmt.Sprintf("checking working tree: %v", err)}
	}
	r.logger.Debug("working tree checked", "uncommitted", len(st.UncommittedFiles))
	return GitStatusEvent{Status: st}
}

func (r *Runner) fetch(ctx context.Context, opts Options) Event {
	remote, err := r.remote(ctx)
	if err != nil {
		return ErrorEvent{Message: fmt.Sprintf("listing remotes: %v", err)}
	}
	if err := r.vcs.Fetch(ctx, remote); err != nil {
		return ErrorEvent{Message: fmt.Sprintf("fetching %s: %v", remote, err)}
	}

	info, err := r.describe(ctx, remote, opts.TargetTag)
	if err != nil {
		return ErrorEvent{Message: err.Error()}
	}
	r.logger.Info("update checked", "target", info.Target, "ahead", info.AheadCount, "behind", info.BehindCount, "downgrade", info.IsDowngrade)
	return InfoEvent{Info: *info}
}

// remote returns the configured remote, or detects the template remote in a
// fork where origin is the user's own repository.
func (r *Runner) remote(ctx context.Context) (string, error) {
	if r.upstream.Remote != "" {
		return r.upstream.Remote, nil
	}
	ok, err := r.vcs.HasRemote(ctx, DefaultUpstreamRemote)
	if err != nil {
		return "", err
	}
	if ok {
		return DefaultUpstreamRemote, nil
	}
	return DefaultRemote, nil
}

// describe computes the update Info against the upstream branch or a requested tag.
func (r *Runner) describe(ctx context.Context, remote, tag string) (*Info, error) {
	info := &Info{Target: remote + "/" + r.upstream.Branch}

	if tag != "" {
		ref, err := r.resolveTag(ctx, tag)
		if err != nil {
			return nil, err
		}
		info.Target = ref
	} else if _, err := r.vcs.ResolveRef(ctx, info.Target); err != nil {
		return nil, fmt.Errorf("upstream branch %s not found: %v", info.Target, err)
	}

	branch, err := r.vcs.CurrentBranch(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading current branch: %w", err)
	}
	if branch != r.upstream.Branch {
		info.BranchWarning = fmt.Sprintf("current branch is %q, updates track %q", branch, r.upstream.Branch)
	}

	ahead, behind, err := r.vcs.AheadBehind(ctx, "HEAD", info.Target)
	if err != nil {
		return nil, fmt.Errorf("comparing with %s: %w", info.Target, err)
	}
	info.AheadCount = ahead
	info.BehindCount = behind

	info.CurrentVersion = r.versionAt(ctx, "HEAD")
	info.LatestVersion = r.versionAt(ctx, info.Target)
	if tag != "" && info.LatestVersion == koharu.UnknownVersion {
		info.LatestVersion = strings.TrimPrefix(info.Target, "v")
	}

	if tag != "" {
		info.IsDowngrade = isDowngrade(ahead, behind, info.CurrentVersion, info.LatestVersion)
	}

	from, to := "HEAD", info.Target
	if info.IsDowngrade {
		from, to = info.Target, "HEAD"
	}
	commits, err := r.vcs.Log(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing commits: %w", err)
	}
	info.Commits = commits
	return info, nil
}

// resolveTag accepts "1.2.3" or "v1.2.3" and returns the ref that exists.
func (r *Runner) resolveTag(ctx context.Context, tag string) (string, error) {
	candidates := []string{tag}
	if v := canonical(tag); v != "" && v != tag {
		candidates = append(candidates, v)
	}
	for _, c := range candidates {
		if _, err := r.vcs.ResolveRef(ctx, c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("tag %s not found", tag)
}

func (r *Runner) versionAt(ctx context.Context, ref string) string {
	data, err := r.vcs.ShowFile(ctx, ref, "package.json")
	if err != nil {
		return koharu.UnknownVersion
	}
	return koharu.PackageVersion(data)
}

// canonical returns the "vX.Y.Z" form of a version, or "" if it is not semver.
func canonical(version string) string {
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}

// isDowngrade reports whether moving to the target goes back in history.
// When both sides have commits the other lacks, the versions decide.
func isDowngrade(ahead, behind int, current, latest string) bool {
	if behind == 0 && ahead > 0 {
		return true
	}
	if ahead > 0 && behind > 0 {
		cv, lv := canonical(current), canonical(latest)
		if cv != "" && lv != "" {
			return semver.Compare(lv, cv) < 0
		}
	}
	return false
}

func (r *Runner) runBackup(ctx context.Context) Event {
	res, err := r.backup.Run(ctx, true)
	if err != nil {
		return ErrorEvent{Message: fmt.Sprintf("backup failed: %v", err)}
	}
	return BackupDoneEvent{File: res.Name}
}

func (r *Runner) merge(ctx context.Context, info *Info) Event {
	if info == nil {
		return ErrorEvent{Message: "no update information"}
	}

	if info.IsDowngrade {
		r.logger.Info("resetting to target", "target", info.Target)
		if err := r.vcs.ResetHard(ctx, info.Target); err != nil {
			return ErrorEvent{Message: fmt.Sprintf("resetting to %s: %v", info.Target, err)}
		}
		return MergeDoneEvent{Result: &koharu.MergeResult{}}
	}

	r.logger.Info("merging", "target", info.Target)
	res, err := r.vcs.Merge(ctx, info.Target)
	if err != nil {
		return ErrorEvent{Message: fmt.Sprintf("merging %s: %v", info.Target, err)}
	}
	if res.HasConflicts() {
		r.logger.Warn("merge stopped on conflicts", "files", len(res.ConflictFiles))
	}
	return MergeDoneEvent{Result: res}
}

func (r *Runner) install(ctx context.Context) Event {
	if err := r.installer.Install(ctx); err != nil {
		return ErrorEvent{Message: fmt.Sprintf("installing dependencies: %v", err)}
	}
	return InstallDoneEvent{}
}

func (r *Runner) abort(ctx context.Context) Event {
	err := r.vcs.AbortMerge(ctx)
	if err != nil {
		r.logger.Error("merge abort failed", "error", err)
	}
	return AbortMergeDoneEvent{Err: err}
}
