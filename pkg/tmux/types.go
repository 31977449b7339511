package tmux

import "time"

// Session is one supervised tmux session as reported by ListSessions.
type Session struct {
	Name            string    `json:"name"`
	ShortName       string    `json:"short_name"`
	Windows         int       `json:"windows"`
	Created         time.Time `json:"created"`
	Attached        bool      `json:"attached"`
	AttachedClients int       `json:"attached_clients"`
	RemoteClients   int       `json:"remote_clients"`
	Activity        time.Time `json:"activity"`
	PanePID         int       `json:"pane_pid"`
}

// Clients returns the number of clients across the session and its mirror.
func (s Session) Clients() int {
	return s.AttachedClients + s.RemoteClients
}

// CreateOptions describes a new detached session.
type CreateOptions struct {
	Name    string
	Dir     string
	Command string
	Style   StatusStyle
}

// StatusStyle holds status-bar options applied after a session is created.
// Empty fields are skipped.
type StatusStyle struct {
	Left        string
	Right       string
	LeftLength  string
	RightLength string
	Style       string
}

func (s StatusStyle) options() [][2]string {
	var opts [][2]string
	for _, o := range [][2]string{
		{"status-left", s.Left},
		{"status-right", s.Right},
		{"status-left-length", s.LeftLength},
		{"status-right-length", s.RightLength},
		{"status-style", s.Style},
	} {
		if o[1] != "" {
			opts = append(opts, o)
		}
	}
	return opts
}
