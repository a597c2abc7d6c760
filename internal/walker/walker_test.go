package walker

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/dirpost/internal/fsys"
	"github.com/danmuck/dirpost/internal/protocol"
)

func buildRoot(t *testing.T) *fsys.DirFS {
	t.Helper()
	dir := t.TempDir()
	mustMkdir(t, filepath.Join(dir, "a", "d"))
	mustMkdir(t, filepath.Join(dir, "c"))
	mustWrite(t, filepath.Join(dir, "b.txt"), "beta")
	mustWrite(t, filepath.Join(dir, "a", "z.txt"), "zed")
	mustWrite(t, filepath.Join(dir, "a", "d", "inner.txt"), "inner")

	root, err := fsys.NewDir(dir)
	if err != nil {
		t.Fatalf("bind root: %v", err)
	}
	return root
}

func collect(t *testing.T, w *Walker) []protocol.Entry {
	t.Helper()
	var got []protocol.Entry
	for w.Next() {
		got = append(got, w.Entry())
	}
	if err := w.Err(); err != nil {
		t.Fatalf("walk: %v", err)
	}
	return got
}

func TestWalkOrderDirectoriesBeforeContents(t *testing.T) {
	w, err := New(buildRoot(t))
	if err != nil {
		t.Fatalf("new walker: %v", err)
	}
	got := collect(t, w)
	want := []protocol.Entry{
		{Kind: protocol.KindDirectory, Path: "a"},
		{Kind: protocol.KindDirectory, Path: "a/d"},
		{Kind: protocol.KindFile, Path: "a/d/inner.txt", Size: 5},
		{Kind: protocol.KindFile, Path: "a/z.txt", Size: 3},
		{Kind: protocol.KindFile, Path: "b.txt", Size: 4},
		{Kind: protocol.KindDirectory, Path: "c"},
	}
	if len(got) != len(want) {
		t.Fatalf("entry count mismatch: got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d mismatch: got=%+v want=%+v", i, got[i], want[i])
		}
	}
}

func TestWalkEmptyRoot(t *testing.T) {
	root, err := fsys.NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("bind root: %v", err)
	}
	w, err := New(root)
	if err != nil {
		t.Fatalf("new walker: %v", err)
	}
	if got := collect(t, w); len(got) != 0 {
		t.Fatalf("expected no entries, got %v", got)
	}
}

func TestWalkSkipsSymlinks(t *testing.T) {
	root := buildRoot(t)
	if err := os.Symlink(filepath.Join(root.Root(), "b.txt"), filepath.Join(root.Root(), "link.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	w, err := New(root)
	if err != nil {
		t.Fatalf("new walker: %v", err)
	}
	for _, e := range collect(t, w) {
		if e.Path == "link.txt" {
			t.Fatalf("symlink was emitted: %+v", e)
		}
	}
}

func TestWalkUnreadableRoot(t *testing.T) {
	dir := t.TempDir()
	root, err := fsys.NewDir(dir)
	if err != nil {
		t.Fatalf("bind root: %v", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("remove root: %v", err)
	}
	if _, err := New(root); !errors.Is(err, ErrWalk) {
		t.Fatalf("expected ErrWalk, got %v", err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
