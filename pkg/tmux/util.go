package tmux

import "strings"

const (
	// SessionPrefix marks sessions pilot owns.
	SessionPrefix = "claude-"
	// MirrorSuffix marks the secondary view of a session used by remote
	// clients. Mirrors are never listed on their own.
	MirrorSuffix = "-mobile"

	fieldDelimiter = "|||"
)

// Qualify returns the full tmux name for a short name.
func Qualify(short string) string {
	return SessionPrefix + short
}

// ShortName strips the session prefix.
func ShortName(full string) string {
	return strings.TrimPrefix(full, SessionPrefix)
}

// MirrorName returns the name of full's mirror session.
func MirrorName(full string) string {
	return full + MirrorSuffix
}

// IsSupervised reports whether name belongs to pilot and is not a mirror.
func IsSupervised(name string) bool {
	return strings.HasPrefix(name, SessionPrefix) && !strings.HasSuffix(name, MirrorSuffix)
}

// SanitizeForTmuxSession creates a valid tmux session name from a string.
// It lowercases, replaces anything outside [a-z0-9_-] with a hyphen and
// collapses hyphen runs. An empty result becomes "session".
func SanitizeForTmuxSession(title string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, title)

	sanitized = strings.ToLower(sanitized)

	for strings.Contains(sanitized, "--") {
		sanitized = strings.ReplaceAll(sanitized, "--", "-")
	}

	if sanitized == "" {
		sanitized = "session"
	}

	// Tmux session names should not be too long
	if len(sanitized) > 50 {
		sanitized = sanitized[:50]
	}

	return sanitized
}
