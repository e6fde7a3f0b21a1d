package koharu_test

import (
	"testing"

	"koharu-go/internal/koharu"
)

func TestDefaultItemsAreValid(t *testing.T) {
	if err := koharu.ValidateItems(koharu.DefaultItems); err != nil {
		t.Fatalf("ValidateItems(DefaultItems) = %v", err)
	}
}

func TestSelectItems(t *testing.T) {
	basic := koharu.SelectItems(koharu.DefaultItems, false)
	full := koharu.SelectItems(koharu.DefaultItems, true)

	if len(full) != len(koharu.DefaultItems) {
		t.Errorf("full selection has %d items, want %d", len(full), len(koharu.DefaultItems))
	}
	for _, it := range basic {
		if !it.Required {
			t.Errorf("basic selection includes optional item %q", it.Label)
		}
	}
	if len(basic) != 5 {
		t.Errorf("basic selection has %d items, want 5", len(basic))
	}
}

func TestValidateItems(t *testing.T) {
	tests := []struct {
		name  string
		items []koharu.Item
	}{
		{name: "traversal source", items: []koharu.Item{{Label: "x", Source: "../x", Dest: "x"}}},
		{name: "absolute dest", items: []koharu.Item{{Label: "x", Source: "x", Dest: "/x"}}},
		{name: "manifest dest", items: []koharu.Item{{Label: "x", Source: "x", Dest: koharu.ManifestName}}},
		{name: "duplicate dest", items: []koharu.Item{
			{Label: "a", Source: "a", Dest: "same"},
			{Label: "b", Source: "b", Dest: "same"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := koharu.ValidateItems(tt.items); err == nil {
				t.Error("ValidateItems() = nil, want error")
			}
		})
	}
}

func TestMapMember(t *testing.T) {
	entries := koharu.RestoreEntries(koharu.DefaultItems)

	tests := []struct {
		member string
		want   string
		ok     bool
	}{
		{member: "./content/blog/", want: "src/content/blog", ok: true},
		{member: "./content/blog/2024/post.md", want: "src/content/blog/2024/post.md", ok: true},
		{member: "env", want: ".env", ok: true},
		{member: "./img/avatar.webp", want: "public/img/avatar.webp", ok: true},
		{member: "./img/posts/cover.png", want: "public/img/posts/cover.png", ok: true},
		{member: "./assets/lqips.json", want: "src/assets/lqips.json", ok: true},
		{member: "./manifest.json", ok: false},
		{member: "./", ok: false},
		{member: "./content", ok: false},
		{member: "./contentx/blog", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.member, func(t *testing.T) {
			got, ok := koharu.MapMember(entries, tt.member)
			if ok != tt.ok || got != tt.want {
				t.Errorf("MapMember(%q) = %q, %v; want %q, %v", tt.member, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRestoreEntriesDeduplicates(t *testing.T) {
	items := []koharu.Item{
		{Label: "first", Source: "a", Dest: "x"},
		{Label: "second", Source: "b", Dest: "x"},
		{Label: "third", Source: "c", Dest: "y"},
	}
	entries := koharu.RestoreEntries(items)
	if len(entries) != 2 {
		t.Fatalf("RestoreEntries() returned %d entries, want 2", len(entries))
	}
	if entries[0].Target != "a" {
		t.Errorf("first entry target = %q, want %q", entries[0].Target, "a")
	}
}
