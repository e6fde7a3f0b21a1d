package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

// Tree describes files by slash-separated relative path. A key ending in "/"
// creates an empty directory instead.
type Tree map[string]string

// WriteTree creates every file of tree under root.
func WriteTree(t *testing.T, root string, tree Tree) {
	t.Helper()
	for rel, content := range tree {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if rel[len(rel)-1] == '/' {
			if err := os.MkdirAll(p, 0755); err != nil {
				t.Fatalf("mkdir %s: %v", rel, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

// ReadTree returns every regular file under root keyed by slash-separated
// relative path. A missing root reads as an empty tree.
func ReadTree(t *testing.T, root string) Tree {
	t.Helper()
	tree := Tree{}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == root {
				return filepath.SkipDir
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("reading tree %s: %v", root, err)
	}
	return tree
}

// SiteTree is a project tree holding every item of koharu.DefaultItems.
func SiteTree() Tree {
	return Tree{
		"package.json":                 `{"name":"koharu","version":"2.3.0"}`,
		"src/content/blog/hello.md":    "# Hello\n",
		"src/content/blog/2024/new.md": "# New\n",
		"config/site.yaml":             "title: Koharu\n",
		"src/pages/about.md":           "About me\n",
		"public/img/avatar.webp":       "AVATAR",
		"public/img/posts/cover.png":   "PNG",
		".env":                         "SECRET=1\n",
		"public/favicon.ico":           "ICO",
		"src/assets/lqips.json":        "{}",
		"src/assets/similarities.json": "{}",
		"src/assets/summaries.json":    "{}",
	}
}
