// Package logging provides pre-configured loggers for dwm components.
//
// Log output goes to a date-stamped file under <base>/logs. Structured logs
// are mirrored to stderr only when stderr is not an interactive terminal
// (piped output, CI); an interactive session stays quiet so the picker's
// alternate screen is never disturbed.
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
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

// Options configures logger construction.
type Options struct {
	// BaseDir is the dwm base directory; the file sink lives in BaseDir/logs.
	// Empty disables the file sink.
	BaseDir string
	// Level is a logrus level name. Empty or unparsable means info.
	Level string
}

// NewLogger creates and returns a pre-configured logger for a specific
// component. It uses a singleton pattern per component to avoid
// re-initializing.
func NewLogger(component string, opts Options) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()

	levelStr := opts.Level
	if env := os.Getenv("DWM_LOG_LEVEL"); env != "" {
		levelStr = env
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	var writers []io.Writer
	if opts.BaseDir != "" {
		if file := openLogFile(opts.BaseDir); file != nil {
			writers = append(writers, file)
		}
	}

	// Mirror to stderr when piped or in debug mode, never over a live TUI.
	isDebug := level >= logrus.DebugLevel
	isInteractive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	if isDebug || !isInteractive {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

func openLogFile(baseDir string) io.Writer {
	dir := filepath.Join(baseDir, "logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil
	}
	name := fmt.Sprintf("dwm-%s.log", time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil
	}
	return file
}
