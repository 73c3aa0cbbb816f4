package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/lectern/internal/apperr"
)

func testLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := NewLoader(4)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	return l
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestOpenBook_Text(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "my-first_book.txt")
	write(t, p, "Once upon a time")

	got, err := testLoader(t).OpenBook(p)
	if err != nil {
		t.Fatalf("OpenBook: %v", err)
	}
	if got.Title != "my first book" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Content != "Once upon a time" {
		t.Errorf("content = %q", got.Content)
	}
	if got.SourcePath != p {
		t.Errorf("sourcePath = %q", got.SourcePath)
	}
	if !strings.HasPrefix(got.AssetBaseURL, "file://") || !strings.HasSuffix(got.AssetBaseURL, "/") {
		t.Errorf("assetBaseUrl = %q", got.AssetBaseURL)
	}
	if got.PageCount != nil || got.Chapters != nil {
		t.Error("pageCount and chapters should be unset")
	}
}

func TestOpenBook_PDFWithSnapshot(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "paper.pdf")
	write(t, pdf, "%PDF-1.7 binary")
	write(t, filepath.Join(dir, "paper.txt"), "normalized text")

	got, err := testLoader(t).OpenBook(pdf)
	if err != nil {
		t.Fatalf("OpenBook: %v", err)
	}
	if got.Content != "normalized text" {
		t.Errorf("content = %q", got.Content)
	}
	if got.SourcePath != pdf {
		t.Errorf("sourcePath = %q, want the requested pdf", got.SourcePath)
	}
}

func TestOpenBook_EPUBWithoutSnapshot(t *testing.T) {
	dir := t.TempDir()
	epub := filepath.Join(dir, "novel.epub")
	write(t, epub, "PK")
	_, err := testLoader(t).OpenBook(epub)
	if !errors.Is(err, apperr.ErrNoNormalizedSnapshot) {
		t.Errorf("err = %v", err)
	}
}

func TestOpenBook_Unsupported(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"notes.md", "README"} {
		p := filepath.Join(dir, name)
		write(t, p, "x")
		if _, err := testLoader(t).OpenBook(p); !errors.Is(err, apperr.ErrUnsupportedFileType) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestOpenBook_CacheSeesRewrites(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "draft.txt")
	write(t, p, "v1")
	l := testLoader(t)
	if _, err := l.OpenBook(p); err != nil {
		t.Fatal(err)
	}
	write(t, p, "version two")
	got, err := l.OpenBook(p)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != "version two" {
		t.Errorf("stale content %q", got.Content)
	}
}

func TestDirectoryURL_Escapes(t *testing.T) {
	got := DirectoryURL("/books/My Library")
	if got != "file:///books/My%20Library/" {
		t.Errorf("url = %q", got)
	}
}

func TestFormatTitle(t *testing.T) {
	cases := map[string]string{
		"/a/intro-to_go.pdf": "intro to go",
		"/a/.hidden":         ".hidden",
		"/a/plain.txt":       "plain",
	}
	for in, want := range cases {
		if got := FormatTitle(in); got != want {
			t.Errorf("FormatTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOpenBook_SymlinkedSnapshotOutsideDirRejected(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "secret.txt")
	write(t, outside, "outside the library")

	dir := t.TempDir()
	pdf := filepath.Join(dir, "book.pdf")
	write(t, pdf, "%PDF")
	if err := os.Symlink(outside, filepath.Join(dir, "book.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := testLoader(t).OpenBook(pdf)
	if !errors.Is(err, apperr.ErrPathOutsideLibrary) {
		t.Fatalf("err = %v, content = %+v", err, got)
	}
}

func TestOpenBook_SymlinkedSnapshotInsideDirAllowed(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "normalized.txt"), "inside")
	pdf := filepath.Join(dir, "book.pdf")
	write(t, pdf, "%PDF")
	if err := os.Symlink(filepath.Join(dir, "normalized.txt"), filepath.Join(dir, "book.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := testLoader(t).OpenBook(pdf)
	if err != nil {
		t.Fatalf("OpenBook: %v", err)
	}
	if got.Content != "inside" {
		t.Errorf("content = %q", got.Content)
	}
}
