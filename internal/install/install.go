// Package install runs the project's dependency-install command.
package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultCommand is used when no install command is configured.
var DefaultCommand = []string{"pnpm", "install"}

// Runner executes the install command in the project root.
type Runner struct {
	dir     string
	command []string
}

// NewRunner creates a Runner. An empty command falls back to DefaultCommand.
func NewRunner(dir string, command []string) *Runner {
	if len(command) == 0 {
		command = DefaultCommand
	}
	return &Runner{dir: dir, command: command}
}

// Command returns the command line the runner executes.
func (r *Runner) Command() string {
	return strings.Join(r.command, " ")
}

// Install runs the command and returns its combined output on failure.
func (r *Runner) Install(ctx context.Context) error {
	if len(r.command) == 0 || r.command[0] == "" {
		return errors.New("no install command configured")
	}
	cmd := exec.CommandContext(ctx, r.command[0], r.command[1:]...)
	cmd.Dir = r.dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg == "" {
			return fmt.Errorf("%s: %w", r.Command(), err)
		}
		return fmt.Errorf("%s: %w: %s", r.Command(), err, msg)
	}
	return nil
}
