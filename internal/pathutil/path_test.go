package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func mkdirAll(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	if err := os.MkdirAll(p, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", p, err)
	}
	return p
}

func TestResolveAbsolute(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "x")
	if got := ResolveAbsolute(abs); got != abs {
		t.Errorf("absolute input changed: %q", got)
	}
	cwd, _ := os.Getwd()
	got := ResolveAbsolute("rel")
	if filepath.Clean(got) != filepath.Join(cwd, "rel") {
		t.Errorf("relative = %q, want under %q", got, cwd)
	}
}

func TestCanonicalize_Missing(t *testing.T) {
	if _, ok := Canonicalize(filepath.Join(t.TempDir(), "nope")); ok {
		t.Error("missing path should not canonicalize")
	}
}

func TestCanonicalize_ResolvesSymlinkAndDotDot(t *testing.T) {
	root, _ := filepath.EvalSymlinks(t.TempDir())
	real := mkdirAll(t, root, "real", "inner")
	link := filepath.Join(root, "link")
	if err := os.Symlink(filepath.Join(root, "real"), link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, ok := Canonicalize(filepath.Join(link, "inner"))
	if !ok || got != real {
		t.Errorf("Canonicalize(link/inner) = %q, %v; want %q", got, ok, real)
	}

	got, ok = Canonicalize(filepath.Join(root, "real", "inner", ".."))
	if !ok || got != filepath.Join(root, "real") {
		t.Errorf("Canonicalize(..) = %q, %v", got, ok)
	}
}

func TestCanonicalizeForCompare_FallsBack(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone", ".", "dir")
	got := CanonicalizeForCompare(missing)
	if got != filepath.Clean(missing) {
		t.Errorf("fallback = %q, want %q", got, filepath.Clean(missing))
	}
}

func TestIsWithinRoot(t *testing.T) {
	cases := []struct {
		target, root string
		want         bool
	}{
		{"/lib/books", "/lib/books", true},
		{"/lib/books/a/b.pdf", "/lib/books", true},
		{"/lib/books2", "/lib/books", false},
		{"/lib/books2/x.txt", "/lib/books", false},
		{"/lib", "/lib/books", false},
		{"/anything", "/", true},
	}
	for _, c := range cases {
		if got := IsWithinRoot(c.target, c.root); got != c.want {
			t.Errorf("IsWithinRoot(%q, %q) = %v, want %v", c.target, c.root, got, c.want)
		}
	}
}

func TestRelativeSlash(t *testing.T) {
	root := filepath.Join("/", "lib")
	rel, ok := RelativeSlash(root, filepath.Join(root, "a", "b.pdf"))
	if !ok || rel != "a/b.pdf" {
		t.Errorf("rel = %q, %v", rel, ok)
	}
	if _, ok := RelativeSlash(root, filepath.Join("/", "other", "x")); ok {
		t.Error("path outside root should not be relative")
	}
	if rel, ok := RelativeSlash(root, root); !ok || rel != "" {
		t.Errorf("root itself = %q, %v", rel, ok)
	}
}

func TestRootName(t *testing.T) {
	if got := RootName(filepath.Join("/", "shared", "Physics Books")); got != "Physics Books" {
		t.Errorf("RootName = %q", got)
	}
	if got := RootName(string(filepath.Separator)); got != "library" {
		t.Errorf("RootName(/) = %q, want library", got)
	}
}

func TestSiblingWithExt(t *testing.T) {
	if got := SiblingWithExt("/a/book.v2.pdf", "txt"); got != "/a/book.v2.txt" {
		t.Errorf("got %q", got)
	}
}
