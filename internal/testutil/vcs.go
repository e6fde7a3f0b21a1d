package testutil

import (
	"context"
	"fmt"
	"sync"

	"koharu-go/internal/koharu"
)

// FakeVCS is a scripted stand-in for the git client. Zero values describe a
// clean tree on main that is up to date with origin/main.
type FakeVCS struct {
	mu sync.Mutex

	Uncommitted []string
	Remotes     []string // nil means only origin
	Fetched     string   // remote passed to the last Fetch
	Branch      string
	Ahead       int
	Behind      int
	Commits     []koharu.Commit
	Refs        map[string]bool   // refs ResolveRef accepts; nil accepts everything
	Files       map[string][]byte // "ref:path" -> contents
	Conflicts   []string          // returned by Merge
	Errs        map[string]error  // method name -> error to return

	Calls []string
}

// NewFakeVCS returns a FakeVCS with package.json versions at HEAD and at target.
func NewFakeVCS(target, current, latest string) *FakeVCS {
	return &FakeVCS{
		Branch: "main",
		Files: map[string][]byte{
			"HEAD:package.json":      []byte(fmt.Sprintf(`{"version":%q}`, current)),
			target + ":package.json": []byte(fmt.Sprintf(`{"version":%q}`, latest)),
		},
	}
}

func (f *FakeVCS) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, call)
	return f.Errs[call]
}

// Called reports whether method was invoked.
func (f *FakeVCS) Called(method string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.Calls {
		if c == method {
			return true
		}
	}
	return false
}

func (f *FakeVCS) Status(ctx context.Context) (koharu.GitStatus, error) {
	if err := f.record("Status"); err != nil {
		return koharu.GitStatus{}, err
	}
	return koharu.GitStatus{UncommittedFiles: f.Uncommitted}, nil
}

func (f *FakeVCS) HasRemote(ctx context.Context, name string) (bool, error) {
	if err := f.record("HasRemote"); err != nil {
		return false, err
	}
	remotes := f.Remotes
	if remotes == nil {
		remotes = []string{"origin"}
	}
	for _, r := range remotes {
		if r == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeVCS) Fetch(ctx context.Context, remote string) error {
	f.mu.Lock()
	f.Fetched = remote
	f.mu.Unlock()
	return f.record("Fetch")
}

func (f *FakeVCS) CurrentBranch(ctx context.Context) (string, error) {
	if err := f.record("CurrentBranch"); err != nil {
		return "", err
	}
	if f.Branch == "" {
		return "main", nil
	}
	return f.Branch, nil
}

func (f *FakeVCS) ResolveRef(ctx context.Context, ref string) (string, error) {
	if err := f.record("ResolveRef"); err != nil {
		return "", err
	}
	if f.Refs != nil && !f.Refs[ref] {
		return "", fmt.Errorf("unknown ref %s", ref)
	}
	return "0123456789abcdef", nil
}

func (f *FakeVCS) AheadBehind(ctx context.Context, base, target string) (int, int, error) {
	if err := f.record("AheadBehind"); err != nil {
		return 0, 0, err
	}
	return f.Ahead, f.Behind, nil
}

func (f *FakeVCS) Log(ctx context.Context, from, to string) ([]koharu.Commit, error) {
	if err := f.record("Log"); err != nil {
		return nil, err
	}
	return f.Commits, nil
}

func (f *FakeVCS) ShowFile(ctx context.Context, ref, path string) ([]byte, error) {
	if err := f.record("ShowFile"); err != nil {
		return nil, err
	}
	data, ok := f.Files[ref+":"+path]
	if !ok {
		return nil, fmt.Errorf("%s:%s does not exist", ref, path)
	}
	return data, nil
}

func (f *FakeVCS) Merge(ctx context.Context, target string) (*koharu.MergeResult, error) {
	if err := f.record("Merge"); err != nil {
		return nil, err
	}
	return &koharu.MergeResult{ConflictFiles: f.Conflicts}, nil
}

func (f *FakeVCS) ResetHard(ctx context.Context, target string) error {
	return f.record("ResetHard")
}

func (f *FakeVCS) AbortMerge(ctx context.Context) error {
	return f.record("AbortMerge")
}

// FakeInstaller records install calls and returns Err.
type FakeInstaller struct {
	mu    sync.Mutex
	Err   error
	Calls int
}

func (f *FakeInstaller) Install(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	return f.Err
}

// FakeBackupRunner returns a fixed archive name, or Err.
type FakeBackupRunner struct {
	mu    sync.Mutex
	Name  string
	Err   error
	Calls int
	Full  []bool
}

func (f *FakeBackupRunner) Run(ctx context.Context, full bool) (*koharu.BackupResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.Full = append(f.Full, full)
	if f.Err != nil {
		return nil, f.Err
	}
	name := f.Name
	if name == "" {
		name = "backup-2024-01-15-10-30-00.tar.gz"
	}
	return &koharu.BackupResult{Name: name, Type: koharu.TypeFor(full)}, nil
}
