// Package pathutil canonicalizes and compares filesystem paths.
//
// Identity comparisons (dedup, removal) use CanonicalizeForCompare, which
// tolerates paths that no longer exist. Containment checks use Canonicalize,
// which requires existence: a nonexistent path is never inside a root.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveAbsolute returns input unchanged when it is absolute, otherwise
// joined onto the working directory. The join is not cleaned so that ".."
// is resolved by the OS after symlinks, not lexically.
func ResolveAbsolute(input string) string {
	if filepath.IsAbs(input) {
		return input
	}
	cwd, err := os.Getwd()
	if err != nil {
		return input
	}
	if input == "" {
		return cwd
	}
	return cwd + string(os.PathSeparator) + input
}

// Canonicalize resolves input to an absolute path with every symlink and ".."
// resolved. It reports false when the path does not exist.
func Canonicalize(input string) (string, bool) {
	resolved, err := filepath.EvalSymlinks(ResolveAbsolute(input))
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", false
	}
	return abs, true
}

// CanonicalizeForCompare is Canonicalize with a fallback to the cleaned
// absolute form for paths that do not exist.
func CanonicalizeForCompare(input string) string {
	if canonical, ok := Canonicalize(input); ok {
		return canonical
	}
	return filepath.Clean(ResolveAbsolute(input))
}

// IsWithinRoot reports whether target equals root or is nested under it.
// Both arguments must already be canonical. The comparison is on whole
// segments, so "/lib/books2" is not within "/lib/books".
func IsWithinRoot(target, root string) bool {
	t := filepath.ToSlash(target)
	r := filepath.ToSlash(root)
	if t == r {
		return true
	}
	return strings.HasPrefix(t, strings.TrimSuffix(r, "/")+"/")
}

// IsDir reports whether path exists and is a directory, following symlinks.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsFile reports whether path exists and is a regular file, following symlinks.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// RelativeSlash returns path relative to root using forward slashes.
// It reports false when path is not under root.
func RelativeSlash(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return "", true
	}
	return filepath.ToSlash(rel), true
}

// RootName returns the last segment of a source directory, or "library"
// when the path has none (a filesystem root, for instance).
func RootName(sourcePath string) string {
	base := filepath.Base(filepath.Clean(ResolveAbsolute(sourcePath)))
	switch base {
	case "", ".", "..", string(filepath.Separator):
		return "library"
	}
	return base
}

// SiblingWithExt returns path with its extension replaced by ext (no dot).
func SiblingWithExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + ext
}
