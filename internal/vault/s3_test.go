package vault

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewS3Vault_RequiresBucket(t *testing.T) {
	if _, err := NewS3Vault(context.Background(), "offsite", S3Options{Region: "us-east-1"}); err == nil {
		t.Error("NewS3Vault() expected error without bucket")
	}
}

func TestS3Vault_Keys(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{prefix: "", want: "archives/backup-x.tar.gz"},
		{prefix: "blog", want: "blog/archives/backup-x.tar.gz"},
		{prefix: "/sites/blog/", want: "sites/blog/archives/backup-x.tar.gz"},
	}
	for _, tt := range tests {
		v, err := NewS3Vault(context.Background(), "offsite", S3Options{
			Bucket: "b", Prefix: tt.prefix, Region: "us-east-1",
			AccessKeyID: "AKID", SecretAccessKey: "SECRET",
		})
		if err != nil {
			t.Fatalf("NewS3Vault() error = %v", err)
		}
		if got := v.key("backup-x.tar.gz"); got != tt.want {
			t.Errorf("key(prefix=%q) = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestS3Vault_ValidateSetupAgainstEndpoint(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method == http.MethodHead && r.URL.Path == "/site-backups" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	v, err := NewS3Vault(context.Background(), "offsite", S3Options{
		Bucket:          "site-backups",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "AKID",
		SecretAccessKey: "SECRET",
	})
	if err != nil {
		t.Fatalf("NewS3Vault() error = %v", err)
	}

	if err := v.ValidateSetup(context.Background()); err != nil {
		t.Fatalf("ValidateSetup() error = %v (path %q)", err, gotPath)
	}
}
