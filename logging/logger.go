package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/pilot/pkg/paths"
	"github.com/grovetools/pilot/pkg/store"
	"github.com/grovetools/pilot/util/pathutil"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
	verbose   bool

	// loadConfig reads the logging section of the metadata document.
	loadConfig = func() store.LoggingSettings {
		settings, err := store.Default(nil).Settings()
		if err != nil {
			return store.LoggingSettings{}
		}
		return settings.Logging
	}
)

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	stderrTTY := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	entry := build(component, loadConfig(), os.Getenv, os.Stderr, stderrTTY, time.Now())
	loggers[component] = entry
	return entry
}

// SetVerbose raises every logger, present and future, to debug level and
// routes them to stderr.
func SetVerbose(on bool) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	verbose = on
	if !on {
		return
	}
	for _, entry := range loggers {
		entry.Logger.SetLevel(logrus.DebugLevel)
		if entry.Logger.Out == io.Discard {
			entry.Logger.SetOutput(os.Stderr)
		}
	}
}

func build(component string, cfg store.LoggingSettings, getenv func(string) string, stderr io.Writer, stderrTTY bool, now time.Time) *logrus.Entry {
	logger := logrus.New()

	// Level: PILOT_LOG_LEVEL, then settings, then info.
	levelStr := "info"
	if env := getenv("PILOT_LOG_LEVEL"); env != "" {
		levelStr = env
	} else if cfg.Level != "" {
		levelStr = cfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	if getenv("PILOT_LOG_CALLER") == "true" || cfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	switch cfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: store.LogFormatSettings{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: cfg.Format})
	}

	var writers []io.Writer

	if cfg.File.Enabled {
		path := logFilePath(component, cfg.File.Path, now)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			fmt.Fprintf(stderr, "pilot: failed to create log directory: %v\n", err)
		} else if file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			fmt.Fprintf(stderr, "pilot: failed to open log file: %v\n", err)
		} else {
			writers = append(writers, file)
		}
	}

	// Structured logs reach stderr when debugging or when stderr is not a
	// terminal. Interactive use stays quiet.
	if logger.GetLevel() >= logrus.DebugLevel || !stderrTTY {
		writers = append(writers, stderr)
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	return logger.WithField("component", component)
}

// logFilePath is <dir>/<component>-<date>.log. An explicit path that names
// a .log file is used as is.
func logFilePath(component, configured string, now time.Time) string {
	name := fmt.Sprintf("%s-%s.log", component, now.Format("2006-01-02"))
	if configured == "" {
		return filepath.Join(paths.LogDir(), name)
	}
	expanded, err := pathutil.Expand(configured)
	if err != nil {
		expanded = configured
	}
	if filepath.Ext(expanded) == ".log" {
		return expanded
	}
	return filepath.Join(expanded, name)
}
