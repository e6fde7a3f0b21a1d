// Package git drives the git command line for the self-update flow.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"koharu-go/internal/koharu"
)

// fieldSep separates fields in formatted log output.
const fieldSep = "\x1f"

// Client runs git in a single repository.
type Client struct {
	dir string
	bin string
}

// NewClient creates a Client rooted at dir.
func NewClient(dir string) *Client {
	return &Client{dir: dir, bin: "git"}
}

// Paths are printed as stored, so non-ASCII names are not octal-escaped.
var baseArgs = []string{"-c", "core.quotepath=off"}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.bin, append(append([]string{}, baseArgs...), args...)...)
	cmd.Dir = c.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		out := stderr.String()
		if strings.TrimSpace(out) == "" {
			out = stdout.String()
		}
		return "", &koharu.VersionControlError{Args: args, Output: out, Err: err}
	}
	return stdout.String(), nil
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimRight(line, "\r"); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Status lists paths with uncommitted changes, untracked files included.
func (c *Client) Status(ctx context.Context) (koharu.GitStatus, error) {
	out, err := c.run(ctx, "status", "--porcelain", "-z")
	if err != nil {
		return koharu.GitStatus{}, err
	}
	var files []string
	entries := strings.Split(out, "\x00")
	for i := 0; i < len(entries); i++ {
		entry := entries[i]
		if len(entry) <= 3 {
			continue
		}
		files = append(files, entry[3:])
		// A rename or copy is followed by its source path.
		if entry[0] == 'R' || entry[0] == 'C' {
			i++
		}
	}
	return koharu.GitStatus{UncommittedFiles: files}, nil
}

// HasRemote reports whether a remote called name is configured.
func (c *Client) HasRemote(ctx context.Context, name string) (bool, error) {
	out, err := c.run(ctx, "remote")
	if err != nil {
		return false, err
	}
	for _, r := range splitLines(out) {
		if strings.TrimSpace(r) == name {
			return true, nil
		}
	}
	return false, nil
}

// Fetch updates remote-tracking refs and tags from remote.
func (c *Client) Fetch(ctx context.Context, remote string) error {
	_, err := c.run(ctx, "fetch", "--tags", remote)
	return err
}

// CurrentBranch returns the checked-out branch name ("HEAD" when detached).
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ResolveRef returns the commit hash ref points to.
func (c *Client) ResolveRef(ctx context.Context, ref string) (string, error) {
	out, err := c.run(ctx, "rev-parse", "--verify", "--quiet", ref+"^{commit}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// AheadBehind counts commits reachable only from base (ahead) and only from target (behind).
func (c *Client) AheadBehind(ctx context.Context, base, target string) (int, int, error) {
	out, err := c.run(ctx, "rev-list", "--left-right", "--count", base+"..."+target)
	if err != nil {
		return 0, 0, err
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output: %q", out)
	}
	ahead, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("parsing ahead count: %w", err)
	}
	behind, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("parsing behind count: %w", err)
	}
	return ahead, behind, nil
}

// Log lists commits reachable from to but not from, newest first.
func (c *Client) Log(ctx context.Context, from, to string) ([]koharu.Commit, error) {
	format := "--pretty=format:%h" + fieldSep + "%s" + fieldSep + "%ad"
	out, err := c.run(ctx, "log", format, "--date=short", from+".."+to)
	if err != nil {
		return nil, err
	}
	var commits []koharu.Commit
	for _, line := range splitLines(out) {
		parts := strings.SplitN(line, fieldSep, 3)
		if len(parts) != 3 {
			continue
		}
		commits = append(commits, koharu.Commit{Hash: parts[0], Message: parts[1], Date: parts[2]})
	}
	return commits, nil
}

// ShowFile returns the contents of path at ref.
func (c *Client) ShowFile(ctx context.Context, ref, path string) ([]byte, error) {
	out, err := c.run(ctx, "show", ref+":"+path)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// Merge merges target into the current branch. A merge that stops on conflicts
// returns a MergeResult listing them and a nil error; any other failure is an error.
func (c *Client) Merge(ctx context.Context, target string) (*koharu.MergeResult, error) {
	_, mergeErr := c.run(ctx, "merge", "--no-edit", target)
	if mergeErr == nil {
		return &koharu.MergeResult{}, nil
	}

	out, err := c.run(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, mergeErr
	}
	conflicts := splitLines(out)
	if len(conflicts) == 0 {
		return nil, mergeErr
	}
	return &koharu.MergeResult{ConflictFiles: conflicts}, nil
}

// ResetHard moves the current branch to target, discarding local commits.
func (c *Client) ResetHard(ctx context.Context, target string) error {
	_, err := c.run(ctx, "reset", "--hard", target)
	return err
}

// AbortMerge restores the pre-merge working tree.
func (c *Client) AbortMerge(ctx context.Context) error {
	_, err := c.run(ctx, "merge", "--abort")
	return err
}
