package shared

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// SetupLogger configures a console logger on stderr
func SetupLogger(level log.Level) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}

// SetupFileLogger logs to a file, for commands that own the terminal. The
// returned closer closes the file.
func SetupFileLogger(path string, level log.Level) (*log.Logger, io.Closer, error) {
	if path == "" {
		return log.NewWithOptions(io.Discard, log.Options{Level: level}), io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Formatter:       log.LogfmtFormatter,
	})
	return logger, f, nil
}

// Level picks debug when requested, otherwise the configured level
func Level(debug bool, configured log.Level) log.Level {
	if debug {
		return log.DebugLevel
	}
	return configured
}
