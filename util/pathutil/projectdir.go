package pathutil

import (
	"io/fs"
	"os"
	"path"
	"strings"
)

// maxDecodeWindow bounds how many tokens a single directory name may span
// when DecodeProjectDir looks for a collapsed separator.
const maxDecodeWindow = 8

// EncodeProjectDir maps an absolute directory to the name of its transcript
// folder. Every character outside [A-Za-z0-9-] becomes "-", so the mapping is
// lossy.
func EncodeProjectDir(dir string) string {
	var b strings.Builder
	b.Grow(len(dir))
	for _, r := range dir {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// DecodeProjectDir guesses the directory a transcript folder name was
// encoded from by walking the real filesystem from "/".
//
// The result is a heuristic. The encoding collapses "/" and other characters
// into "-", so several paths can share one encoded name; the walk prefers
// the shortest existing match at each step and falls back to literal
// segments, so it always returns a full path even when nothing exists.
func DecodeProjectDir(encoded string) string {
	return DecodeProjectDirFS(os.DirFS("/"), encoded)
}

// DecodeProjectDirFS is DecodeProjectDir over an arbitrary file system whose
// root stands for "/".
func DecodeProjectDirFS(fsys fs.FS, encoded string) string {
	tokens := strings.Split(strings.TrimPrefix(encoded, "-"), "-")
	current := "."

	for i := 0; i < len(tokens); {
		single := path.Join(current, tokens[i])
		if _, err := fs.Stat(fsys, single); err == nil {
			current = single
			i++
			continue
		}

		if n, match := matchJoined(fsys, current, tokens[i:]); n > 0 {
			current = path.Join(current, match)
			i += n
			continue
		}

		current = single
		i++
	}

	if current == "." {
		return "/"
	}
	return "/" + current
}

// matchJoined looks for a child of dir whose name equals 2..8 consecutive
// tokens once "-" and "_" are ignored. It returns the number of tokens
// consumed and the real child name.
func matchJoined(fsys fs.FS, dir string, tokens []string) (int, string) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return 0, ""
	}

	maxTry := len(tokens)
	if maxTry > maxDecodeWindow {
		maxTry = maxDecodeWindow
	}

	for n := 2; n <= maxTry; n++ {
		want := stripDelimiters(strings.Join(tokens[:n], "-"))
		for _, entry := range entries {
			if stripDelimiters(entry.Name()) == want {
				return n, entry.Name()
			}
		}
	}
	return 0, ""
}

func stripDelimiters(s string) string {
	return strings.NewReplacer("-", "", "_", "").Replace(s)
}
