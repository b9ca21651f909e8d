package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Logger is nil until one of the Init functions runs; the helpers below
// are no-ops before that.
var Logger *log.Logger

var prefixStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FFFFFF")).
	Background(lipgloss.Color("#7C3AED")).
	Bold(true).
	Padding(0, 1).
	MarginRight(1)

// InitLoggerTo installs a logger writing to w with true-color styling.
// Call SetDebugMode first: the level, caller and timestamp reporting all
// follow IsDebug.
//
// CLI commands log to stderr through InitLogger. The TUI must not write to
// the terminal it draws on, so it uses InitFileLogger instead.
func InitLoggerTo(w io.Writer) {
	install(w, termenv.TrueColor)
}

// InitFileLogger appends plain (uncolored) log lines to path, creating the
// parent directory if needed. The caller closes the returned file on exit.
func InitFileLogger(path string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	install(f, termenv.Ascii)
	return f, nil
}

// InitLogger is InitLoggerTo(os.Stderr).
func InitLogger() {
	InitLoggerTo(os.Stderr)
}

func install(w io.Writer, profile termenv.Profile) {
	prefix := "anipahe"
	if profile != termenv.Ascii {
		prefix = prefixStyle.Render(prefix)
	}
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    IsDebug,
		ReportTimestamp: IsDebug,
		TimeFormat:      "15:04:05",
		Prefix:          prefix,
		Level:           log.InfoLevel,
	})
	l.SetColorProfile(profile)
	if IsDebug {
		l.SetLevel(log.DebugLevel)
	}
	Logger = l
	Debug("debug logging enabled")
}

// Debug logs only in debug mode.
func Debug(msg interface{}, keyvals ...interface{}) {
	if IsDebug && Logger != nil {
		Logger.Debug(fmt.Sprintf("%v", msg), keyvals...)
	}
}

func Info(msg interface{}, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(fmt.Sprintf("%v", msg), keyvals...)
	}
}

func Warn(msg interface{}, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(fmt.Sprintf("%v", msg), keyvals...)
	}
}

func Debugf(format string, args ...interface{}) {
	Debug(fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...interface{}) {
	Warn(fmt.Sprintf(format, args...))
}
