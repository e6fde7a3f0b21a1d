package koharu

import (
	"fmt"
	"path"
	"strings"
)

// Item is one entry of the content table: a path in the project tree and the
// path it occupies inside a snapshot archive. Both the backup (Source -> Dest)
// and restore (Dest -> Source) directions are derived from the same table.
type Item struct {
	Label    string
	Source   string
	Dest     string
	Required bool
}

// DefaultItems is the content table compiled into the tool.
// Required items go into every snapshot; the rest only into full snapshots.
var DefaultItems = []Item{
	{Label: "Blog posts", Source: "src/content/blog", Dest: "content/blog", Required: true},
	{Label: "Site config", Source: "config/site.yaml", Dest: "config/site.yaml", Required: true},
	{Label: "About page", Source: "src/pages/about.md", Dest: "pages/about.md", Required: true},
	{Label: "Avatar", Source: "public/img/avatar.webp", Dest: "img/avatar.webp", Required: true},
	{Label: "Environment", Source: ".env", Dest: "env", Required: true},
	{Label: "All images", Source: "public/img", Dest: "img", Required: false},
	{Label: "Favicon", Source: "public/favicon.ico", Dest: "favicon.ico", Required: false},
	{Label: "LQIP data", Source: "src/assets/lqips.json", Dest: "assets/lqips.json", Required: false},
	{Label: "Similarity data", Source: "src/assets/similarities.json", Dest: "assets/similarities.json", Required: false},
	{Label: "AI summaries", Source: "src/assets/summaries.json", Dest: "assets/summaries.json", Required: false},
}

// SelectItems returns the items that belong in a basic or full snapshot, in table order.
func SelectItems(items []Item, full bool) []Item {
	var selected []Item
	for _, it := range items {
		if it.Required || full {
			selected = append(selected, it)
		}
	}
	return selected
}

// ValidateItems checks that every path in the table is a safe relative path and
// that no two items claim the same archive path.
func ValidateItems(items []Item) error {
	seen := make(map[string]string, len(items))
	for _, it := range items {
		if !IsSafe(it.Source, "") {
			return &ValidationError{Field: "item source", Value: it.Source, Reason: "unsafe path"}
		}
		if !IsSafe(it.Dest, "") {
			return &ValidationError{Field: "item destination", Value: it.Dest, Reason: "unsafe path"}
		}
		if it.Dest == ManifestName {
			return &ValidationError{Field: "item destination", Value: it.Dest, Reason: "reserved for the manifest"}
		}
		if prev, ok := seen[it.Dest]; ok {
			return &ValidationError{Field: "item destination", Value: it.Dest, Reason: fmt.Sprintf("also used by %q", prev)}
		}
		seen[it.Dest] = it.Label
	}
	return nil
}

// RestoreEntry maps an archive path back onto the project tree.
type RestoreEntry struct {
	ArchivePath string
	Target      string
}

// RestoreEntries derives the inverse view of the item table.
func RestoreEntries(items []Item) []RestoreEntry {
	entries := make([]RestoreEntry, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.Dest] {
			continue
		}
		seen[it.Dest] = true
		entries = append(entries, RestoreEntry{ArchivePath: it.Dest, Target: it.Source})
	}
	return entries
}

// NormalizeMember strips the "./" prefix and trailing slash tar puts on member names.
func NormalizeMember(member string) string {
	m := strings.TrimSpace(member)
	m = strings.TrimPrefix(m, "./")
	m = strings.TrimSuffix(m, "/")
	if m == "." {
		return ""
	}
	return m
}

// MapMember translates an archive member into its project-relative destination.
// The first entry whose archive path equals the member, or is a directory prefix
// of it, wins.
func MapMember(entries []RestoreEntry, member string) (string, bool) {
	m := NormalizeMember(member)
	if m == "" || m == ManifestName {
		return "", false
	}
	for _, e := range entries {
		if m == e.ArchivePath {
			return e.Target, true
		}
		if strings.HasPrefix(m, e.ArchivePath+"/") {
			return path.Join(e.Target, strings.TrimPrefix(m, e.ArchivePath+"/")), true
		}
	}
	return "", false
}
