package install_test

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"koharu-go/internal/install"
)

func TestRunner_DefaultCommand(t *testing.T) {
	r := install.NewRunner(t.TempDir(), nil)
	if got := r.Command(); got != "pnpm install" {
		t.Errorf("Command() = %q, want %q", got, "pnpm install")
	}
}

func TestRunner_Install(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	tests := []struct {
		name    string
		command []string
		wantErr string
	}{
		{name: "success", command: []string{"sh", "-c", "exit 0"}},
		{name: "failure carries output", command: []string{"sh", "-c", "echo lockfile broken >&2; exit 3"}, wantErr: "lockfile broken"},
		{name: "missing binary", command: []string{"koharu-no-such-binary"}, wantErr: "koharu-no-such-binary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := install.NewRunner(t.TempDir(), tt.command)
			err := r.Install(context.Background())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Install() error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Install() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
