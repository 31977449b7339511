package sessions

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/grovetools/pilot/pkg/tmux"
)

// AutoName derives a short session name from dir's base name and appends
// -2, -3, ... until no live session uses it.
func AutoName(ctx context.Context, mux Lister, dir string) string {
	base := tmux.SanitizeForTmuxSession(filepath.Base(dir))

	candidate := base
	for counter := 2; mux.Exists(ctx, tmux.Qualify(candidate)); counter++ {
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
	return candidate
}
