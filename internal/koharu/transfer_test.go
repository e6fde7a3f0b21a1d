package koharu_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"koharu-go/internal/koharu"
	"koharu-go/internal/testutil"
)

const archiveName = "backup-2024-01-15-10-30-00.tar.gz"

func writeArchive(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, archiveName)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestTransfer_EncryptedRoundTrip(t *testing.T) {
	ctx := context.Background()
	v := testutil.NewTestVault()
	enc := testutil.NewTestEncryptor()

	src := writeArchive(t, t.TempDir(), "gzip payload")
	push := koharu.NewTransfer(filepath.Dir(src), v, enc, koharu.NewNopLogger())
	if !push.Encrypted() {
		t.Error("Encrypted() = false with an encryptor")
	}

	stored, err := push.Push(ctx, src)
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}
	if stored != archiveName+koharu.EncryptedSuffix {
		t.Errorf("stored name = %q", stored)
	}

	var raw bytes.Buffer
	if err := v.GetArchive(ctx, stored, &raw); err != nil {
		t.Fatal(err)
	}
	if raw.String() == "gzip payload" {
		t.Error("vault holds plaintext")
	}

	names, err := push.Remote(ctx)
	if err != nil || len(names) != 1 || names[0] != stored {
		t.Errorf("Remote() = %v, %v", names, err)
	}

	dest := filepath.Join(t.TempDir(), "backups")
	pull := koharu.NewTransfer(dest, v, enc, koharu.NewNopLogger())
	session, err := enc.Unlock("")
	if err != nil {
		t.Fatal(err)
	}
	local, err := pull.Pull(ctx, stored, session)
	if err != nil {
		t.Fatalf("Pull() error = %v", err)
	}
	if local != filepath.Join(dest, archiveName) {
		t.Errorf("Pull() path = %q", local)
	}
	data, err := os.ReadFile(local)
	if err != nil || string(data) != "gzip payload" {
		t.Errorf("pulled content = %q, %v", data, err)
	}

	if _, err := pull.Pull(ctx, stored, session); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second Pull() error = %v, want already exists", err)
	}
}

func TestTransfer_Plain(t *testing.T) {
	ctx := context.Background()
	v := testutil.NewTestVault()
	src := writeArchive(t, t.TempDir(), "plain")

	tr := koharu.NewTransfer(t.TempDir(), v, nil, koharu.NewNopLogger())
	stored, err := tr.Push(ctx, src)
	if err != nil {
		t.Fatal(err)
	}
	if stored != archiveName {
		t.Errorf("stored name = %q", stored)
	}

	local, err := tr.Pull(ctx, stored, nil)
	if err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(local); string(data) != "plain" {
		t.Errorf("pulled content = %q", data)
	}
}

func TestTransfer_PullErrors(t *testing.T) {
	ctx := context.Background()
	v := testutil.NewTestVault()
	dir := t.TempDir()
	tr := koharu.NewTransfer(dir, v, nil, koharu.NewNopLogger())

	tests := []struct {
		desc string
		name string
	}{
		{desc: "traversal", name: "../" + archiveName},
		{desc: "not an archive", name: "notes.txt"},
		{desc: "missing", name: archiveName},
		{desc: "encrypted without session", name: archiveName + ".age"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if _, err := tr.Pull(ctx, tt.name, nil); err == nil {
				t.Errorf("Pull(%q) succeeded", tt.name)
			}
		})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("failed pulls left %d files behind", len(entries))
	}
}

func TestTransfer_PullReportsDecryptFailure(t *testing.T) {
	ctx := context.Background()
	v := testutil.NewTestVault()
	enc := testutil.NewTestEncryptor()

	// Large enough that the vault is still writing when decryption gives up.
	junk := bytes.Repeat([]byte("not sealed "), 100000)
	stored := archiveName + koharu.EncryptedSuffix
	if err := v.PutArchive(ctx, stored, bytes.NewReader(junk), int64(len(junk))); err != nil {
		t.Fatal(err)
	}

	tr := koharu.NewTransfer(t.TempDir(), v, enc, koharu.NewNopLogger())
	session, err := enc.Unlock("")
	if err != nil {
		t.Fatal(err)
	}
	_, err = tr.Pull(ctx, stored, session)
	if err == nil {
		t.Fatal("Pull() of unsealed data succeeded")
	}
	if !strings.Contains(err.Error(), "decrypting archive") {
		t.Errorf("Pull() error = %v, want a decrypting error", err)
	}
}

func TestTransfer_PushRejectsBadName(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "site.zip")
	if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	tr := koharu.NewTransfer(dir, testutil.NewTestVault(), nil, koharu.NewNopLogger())
	if _, err := tr.Push(context.Background(), p); err == nil {
		t.Error("Push() accepted a non-archive")
	}
}
