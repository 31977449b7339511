// Package sessions implements the session lifecycle: resolving names,
// creating, resuming, recreating and tearing down supervised sessions.
package sessions

import (
	"context"
	"strings"

	"github.com/grovetools/pilot/pkg/tmux"
)

// Lister is the read side of the multiplexer.
type Lister interface {
	ListSessions(ctx context.Context) []tmux.Session
	Exists(ctx context.Context, name string) bool
}

// Multiplexer is the tmux surface the lifecycle drives.
type Multiplexer interface {
	Lister
	Create(ctx context.Context, opts tmux.CreateOptions) (string, error)
	KillWithMirror(ctx context.Context, name string) error
	Rename(ctx context.Context, oldName, newName string) error
	SendKeys(ctx context.Context, name string, keys ...string) error
	Attach(ctx context.Context, name string) error
}

// ResolutionKind says how many live sessions a name matched.
type ResolutionKind int

const (
	ResolvedNone ResolutionKind = iota
	ResolvedOne
	ResolvedMany
)

// Resolution is the outcome of Resolve.
type Resolution struct {
	Kind ResolutionKind
	// Name is the full session name when Kind is ResolvedOne.
	Name string
	// Candidates are the short names that matched when Kind is ResolvedMany.
	Candidates []string
}

// Resolve maps user input to a live session. An exact short name wins;
// otherwise the input is matched as a substring of every live short name.
// Several matches are reported, never picked between.
func Resolve(ctx context.Context, mux Lister, name string) Resolution {
	full := tmux.Qualify(name)
	if mux.Exists(ctx, full) {
		return Resolution{Kind: ResolvedOne, Name: full}
	}

	var matches []tmux.Session
	for _, s := range mux.ListSessions(ctx) {
		if strings.Contains(s.ShortName, name) {
			matches = append(matches, s)
		}
	}

	switch len(matches) {
	case 0:
		return Resolution{Kind: ResolvedNone}
	case 1:
		return Resolution{Kind: ResolvedOne, Name: matches[0].Name}
	default:
		candidates := make([]string, len(matches))
		for i, m := range matches {
			candidates[i] = m.ShortName
		}
		return Resolution{Kind: ResolvedMany, Candidates: candidates}
	}
}
