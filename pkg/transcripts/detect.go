package transcripts

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Detection schedule defaults.
const (
	DefaultInitialDelay = 3 * time.Second
	DefaultInterval     = 2 * time.Second
	DefaultAttempts     = 5
)

// DetectOptions configures StartDetection.
type DetectOptions struct {
	// Workdir is the session's working directory.
	Workdir string
	// Since excludes transcripts last modified at or before this time.
	Since time.Time
	// InitialDelay is waited before the first check.
	InitialDelay time.Duration
	// Interval separates scheduled checks.
	Interval time.Duration
	// Attempts is the number of scheduled checks.
	Attempts int
	Log      *logrus.Entry
}

func (o *DetectOptions) defaults() {
	if o.InitialDelay == 0 {
		o.InitialDelay = DefaultInitialDelay
	}
	if o.Interval == 0 {
		o.Interval = DefaultInterval
	}
	if o.Attempts == 0 {
		o.Attempts = DefaultAttempts
	}
	if o.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Log = logrus.NewEntry(l)
	}
}

// Budget is the longest a detection can run before giving up.
func (o DetectOptions) Budget() time.Duration {
	o.defaults()
	return o.InitialDelay + time.Duration(o.Attempts-1)*o.Interval
}

// Detection is a running background search for a freshly created
// conversation id.
type Detection struct {
	done   chan struct{}
	cancel context.CancelFunc

	mu sync.Mutex
	id string
}

// Done is closed when the detection has finished for any reason.
func (d *Detection) Done() <-chan struct{} {
	return d.done
}

// Cancel stops the detection. It does not wait for it to finish.
func (d *Detection) Cancel() {
	d.cancel()
}

// Wait blocks until the detection finishes or ctx ends, and returns the id
// found, if any.
func (d *Detection) Wait(ctx context.Context) (string, bool) {
	select {
	case <-d.done:
	case <-ctx.Done():
		return "", false
	}
	return d.Result()
}

// Result returns the id found so far.
func (d *Detection) Result() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.id, d.id != ""
}

// StartDetection looks for a transcript in opts.Workdir's folder that
// appears after opts.Since. After the initial delay it checks on a fixed
// schedule; file system events in the folder trigger extra checks in
// between. onFound is called at most once with the id. Errors are logged
// and never surface to the caller.
func (l *Locator) StartDetection(ctx context.Context, opts DetectOptions, onFound func(id string) error) *Detection {
	opts.defaults()
	ctx, cancel := context.WithCancel(ctx)
	d := &Detection{done: make(chan struct{}), cancel: cancel}

	go func() {
		defer close(d.done)
		defer cancel()

		id, ok := l.detect(ctx, opts)
		if !ok {
			opts.Log.WithField("workdir", opts.Workdir).Debug("No new conversation detected")
			return
		}

		d.mu.Lock()
		d.id = id
		d.mu.Unlock()

		opts.Log.WithField("conversation_id", id).Debug("Detected new conversation")
		if onFound != nil {
			if err := onFound(id); err != nil {
				opts.Log.WithError(err).Warn("Failed to record detected conversation")
			}
		}
	}()

	return d
}

func (l *Locator) detect(ctx context.Context, opts DetectOptions) (string, bool) {
	select {
	case <-time.After(opts.InitialDelay):
	case <-ctx.Done():
		return "", false
	}

	watcher := l.watch(opts)
	var events <-chan fsnotify.Event
	var errs <-chan error
	if watcher != nil {
		defer watcher.Close()
		events = watcher.Events
		errs = watcher.Errors
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	attempt := 1
	for {
		if id, ok := l.NewIDSince(opts.Workdir, opts.Since); ok {
			return id, true
		}
		if attempt >= opts.Attempts {
			return "", false
		}

	wait:
		for {
			select {
			case <-ctx.Done():
				return "", false
			case <-ticker.C:
				attempt++
				break wait
			case ev, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				if l.relevant(watcher, opts, ev) {
					break wait
				}
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				opts.Log.WithError(err).Debug("Transcript watcher error")
			}
		}
	}
}

// watch sets up a watcher on the project folder, or on the root when the
// folder does not exist yet. A nil watcher means polling only.
func (l *Locator) watch(opts DetectOptions) *fsnotify.Watcher {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		opts.Log.WithError(err).Debug("Transcript watcher unavailable, polling only")
		return nil
	}
	if err := watcher.Add(l.ProjectDir(opts.Workdir)); err == nil {
		return watcher
	}
	if err := watcher.Add(l.Root); err != nil {
		opts.Log.WithError(err).Debug("Transcript root not watchable, polling only")
		watcher.Close()
		return nil
	}
	return watcher
}

// relevant reports whether ev may have produced a new transcript. When the
// project folder itself appears under the root it is added to the watch.
func (l *Locator) relevant(watcher *fsnotify.Watcher, opts DetectOptions, ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}
	if strings.HasSuffix(ev.Name, transcriptExt) {
		return true
	}
	if filepath.Clean(ev.Name) == filepath.Clean(l.ProjectDir(opts.Workdir)) {
		_ = watcher.Add(ev.Name)
		return true
	}
	return false
}
