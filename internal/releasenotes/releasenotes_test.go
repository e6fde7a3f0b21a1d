package releasenotes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"koharu-go/internal/releasenotes"
)

const sampleBody = `## What's new

Some prose about the release.

- **Theme**: new dark palette
- Faster image pipeline
* ` + "`koharu update`" + ` shows release notes

### Fixes
- Fixed RSS dates
- Fixed broken links
- Fixed search on mobile
`

func TestSummary(t *testing.T) {
	got := releasenotes.Summary(sampleBody, 5)
	want := []string{
		"Theme: new dark palette",
		"Faster image pipeline",
		"koharu update shows release notes",
		"Fixed RSS dates",
		"Fixed broken links",
	}
	if len(got) != len(want) {
		t.Fatalf("Summary() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Summary()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := releasenotes.Summary("no bullets here", 5); len(got) != 0 {
		t.Errorf("Summary() of prose = %v, want empty", got)
	}
}

func TestBuildReleaseURL(t *testing.T) {
	for _, v := range []string{"2.1.0", "v2.1.0"} {
		got := releasenotes.BuildReleaseURL("cosZone/astro-koharu", v)
		if got != "https://github.com/cosZone/astro-koharu/releases/tag/v2.1.0" {
			t.Errorf("BuildReleaseURL(%q) = %q", v, got)
		}
	}
}

func TestClient_FetchNotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/site/releases/tags/v2.1.0" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tag_name":"v2.1.0","name":"Spring","body":"- one\n- two"}`))
	}))
	defer srv.Close()

	c := releasenotes.NewClient("owner/site", srv.URL, time.Second)
	notes, err := c.FetchNotes(context.Background(), "2.1.0")
	if err != nil {
		t.Fatalf("FetchNotes() error: %v", err)
	}
	if notes.Name != "Spring" || len(notes.Summary) != 2 {
		t.Errorf("notes = %+v", notes)
	}
	if !strings.HasSuffix(notes.URL, "/owner/site/releases/tag/v2.1.0") {
		t.Errorf("URL = %q", notes.URL)
	}
}

func TestClient_FetchNotesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer srv.Close()

	tests := []struct {
		name string
		repo string
	}{
		{name: "http error", repo: "owner/site"},
		{name: "no repository", repo: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := releasenotes.NewClient(tt.repo, srv.URL, time.Second)
			if _, err := c.FetchNotes(context.Background(), "1.0.0"); err == nil {
				t.Error("FetchNotes() should fail")
			}
		})
	}
}

func TestRender_KeepsText(t *testing.T) {
	out := releasenotes.Render("# Title\n\n- item", 60)
	if !strings.Contains(out, "Title") || !strings.Contains(out, "item") {
		t.Errorf("Render() lost content: %q", out)
	}
}
