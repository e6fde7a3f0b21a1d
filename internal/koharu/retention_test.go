package koharu_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"koharu-go/internal/koharu"
	"koharu-go/internal/testutil"
)

func seedArchives(t *testing.T, dir string, n int) []string {
	t.Helper()
	var names []string
	for i := 1; i <= n; i++ {
		name := fmt.Sprintf("backup-2024-01-%02d-00-00-00.tar.gz", i)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
		names = append(names, name)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names
}

func remaining(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names
}

func TestRetentionManager_Clean(t *testing.T) {
	tests := []struct {
		name        string
		archives    int
		keep        int
		wantDeleted int
	}{
		{name: "prunes oldest", archives: 5, keep: 2, wantDeleted: 3},
		{name: "keep equals count", archives: 3, keep: 3, wantDeleted: 0},
		{name: "keep exceeds count", archives: 2, keep: 10, wantDeleted: 0},
		{name: "keep one", archives: 4, keep: 1, wantDeleted: 3},
		{name: "empty directory", archives: 0, keep: 5, wantDeleted: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			all := seedArchives(t, dir, tt.archives)
			m := koharu.NewRetentionManager(dir, testutil.NewMemoryArchiver(), koharu.NewNopLogger())

			res, err := m.Clean(context.Background(), tt.keep)
			if err != nil {
				t.Fatalf("Clean() error = %v", err)
			}
			if len(res.Deleted) != tt.wantDeleted {
				t.Errorf("deleted %d, want %d", len(res.Deleted), tt.wantDeleted)
			}

			left := remaining(t, dir)
			wantLeft := len(all) - tt.wantDeleted
			if len(left) != wantLeft {
				t.Fatalf("%d archives remain, want %d", len(left), wantLeft)
			}
			for i := range left {
				if left[i] != all[i] {
					t.Errorf("remaining[%d] = %s, want %s (newest kept)", i, left[i], all[i])
				}
			}
		})
	}
}

func TestRetentionManager_InvalidKeep(t *testing.T) {
	for _, keep := range []int{0, -1} {
		t.Run(fmt.Sprint(keep), func(t *testing.T) {
			dir := t.TempDir()
			seedArchives(t, dir, 3)
			m := koharu.NewRetentionManager(dir, testutil.NewMemoryArchiver(), koharu.NewNopLogger())

			_, err := m.Clean(context.Background(), keep)
			var vErr *koharu.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Clean(%d) error = %v, want ValidationError", keep, err)
			}
			if n := len(remaining(t, dir)); n != 3 {
				t.Errorf("%d archives remain after rejected clean", n)
			}
		})
	}
}

func TestRetentionManager_PlanDoesNotDelete(t *testing.T) {
	dir := t.TempDir()
	all := seedArchives(t, dir, 4)
	m := koharu.NewRetentionManager(dir, testutil.NewMemoryArchiver(), koharu.NewNopLogger())

	plan, err := m.Plan(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Kept) != 1 || plan.Kept[0] != all[0] || len(plan.Deleted) != 3 {
		t.Errorf("Plan(1) = %+v", plan)
	}
	if n := len(remaining(t, dir)); n != 4 {
		t.Errorf("Plan() deleted files: %d remain", n)
	}
}

func TestRetentionManager_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	seedArchives(t, dir, 2)
	if err := os.WriteFile(filepath.Join(dir, "README"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	m := koharu.NewRetentionManager(dir, testutil.NewMemoryArchiver(), koharu.NewNopLogger())
	if _, err := m.Clean(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "README")); err != nil {
		t.Errorf("non-archive file removed: %v", err)
	}
}
