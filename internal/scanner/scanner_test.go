package scanner

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

var discard = slog.New(slog.DiscardHandler)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestIsFrontmatter(t *testing.T) {
	cases := map[string]bool{
		"00-intro.pdf":          true,
		"00_intro.pdf":          true,
		"Cover.PDF":             true,
		"Table-Of-Contents.txt": true,
		"my_frontmatter.epub":   true,
		"Copyright-2021.txt":    true,
		"preface.txt":           true,
		"chapter1.pdf":          false,
		"discover.pdf":          false,
		"prefaces.txt":          false,
	}
	for name, want := range cases {
		if got := IsFrontmatter(name); got != want {
			t.Errorf("IsFrontmatter(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"book.PDF":       "pdf",
		"dir/notes.txt":  "txt",
		"archive.tar.gz": "gz",
		".pdf":           "",
		"dir/.txt":       "",
		"..epub":         "epub",
		"README":         "",
		".hidden.txt":    "txt",
	}
	for path, want := range cases {
		if got := Extension(path); got != want {
			t.Errorf("Extension(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestScan_SkipsStemlessHiddenFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".pdf", "x")
	writeFile(t, root, "sub/.txt", "x")
	writeFile(t, root, "real.txt", "r")

	items := Scan(root, discard)
	if len(items) != 1 || items[0].Name != "real.txt" {
		t.Errorf("items = %+v", items)
	}
}

func TestScan_Ordering(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b/chapter2.pdf", "b")
	writeFile(t, root, "a/chapter1.pdf", "a")
	writeFile(t, root, "intro.txt", "i")

	items := Scan(root, discard)
	want := []struct{ parent, name string }{
		{"", "intro.txt"},
		{"a", "chapter1.pdf"},
		{"b", "chapter2.pdf"},
	}
	if len(items) != len(want) {
		t.Fatalf("len = %d, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i].ParentDir != w.parent || items[i].Name != w.name {
			t.Errorf("items[%d] = %s/%s, want %s/%s", i, items[i].ParentDir, items[i].Name, w.parent, w.name)
		}
	}
}

func TestScan_FiltersAndMetadata(t *testing.T) {
	root := t.TempDir()
	p := writeFile(t, root, "deep/nested/Book.EPUB", "12345")
	writeFile(t, root, "notes.md", "skip")
	writeFile(t, root, "noext", "skip")

	items := Scan(root, discard)
	if len(items) != 1 {
		t.Fatalf("len = %d, want 1: %+v", len(items), items)
	}
	it := items[0]
	if it.Type != "epub" {
		t.Errorf("type = %q", it.Type)
	}
	if it.Size != 5 {
		t.Errorf("size = %d", it.Size)
	}
	if it.ParentDir != "deep/nested" {
		t.Errorf("parentDir = %q", it.ParentDir)
	}
	if it.Path != p {
		t.Errorf("path = %q, want %q", it.Path, p)
	}
	if it.ModifiedAt <= 0 {
		t.Errorf("modifiedAt = %v", it.ModifiedAt)
	}
}

func TestScan_DoesNotFollowSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	target := writeFile(t, outside, "secret.txt", "x")
	if err := os.Symlink(target, filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "linkdir")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if items := Scan(root, discard); len(items) != 0 {
		t.Errorf("symlinked entries should be skipped, got %+v", items)
	}
}

func TestScan_MissingRoot(t *testing.T) {
	if items := Scan(filepath.Join(t.TempDir(), "nope"), discard); len(items) != 0 {
		t.Errorf("items = %+v", items)
	}
}
