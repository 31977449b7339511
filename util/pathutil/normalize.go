package pathutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

func caseInsensitiveFS() bool {
	return runtime.GOOS == "darwin" || runtime.GOOS == "windows"
}

// CanonicalPath returns the absolute, symlink-resolved path spelled with the
// case the filesystem uses. Transcript folders are named after this form, so
// a session started from /users/me/src must resolve to /Users/me/src.
// Components that cannot be read are kept as given.
func CanonicalPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		resolved = absPath
	}
	if !caseInsensitiveFS() || resolved == string(filepath.Separator) {
		return resolved, nil
	}

	result := string(filepath.Separator)
	for _, part := range strings.Split(resolved, string(filepath.Separator)) {
		if part == "" {
			continue
		}
		result = filepath.Join(result, matchCase(result, part))
	}
	return result, nil
}

func matchCase(dir, part string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return part
	}
	for _, entry := range entries {
		if strings.EqualFold(entry.Name(), part) {
			return entry.Name()
		}
	}
	return part
}

// SamePath reports whether two directories are the same location. Paths
// are compared cleaned, and case-insensitively where the filesystem is.
func SamePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	a, b = filepath.Clean(a), filepath.Clean(b)
	if caseInsensitiveFS() {
		return strings.EqualFold(a, b)
	}
	return a == b
}
