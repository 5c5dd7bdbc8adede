package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/adrg/xdg"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/erraggy/refparser/internal/fileutil"
)

// LogFile is the log file location relative to the XDG state directory.
const LogFile = "refparser/refparser.log"

// levelFor maps the -v count to a zerolog level.
func levelFor(verbosity int) zerolog.Level {
	switch verbosity {
	case 0:
		return zerolog.WarnLevel
	case 1:
		return zerolog.InfoLevel
	case 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// setupLogger returns a logger writing to stderr and to the log file under
// the XDG state directory. The returned closer releases the log file. When
// the log file cannot be opened the logger writes to stderr only.
func setupLogger(verbosity int, stderr io.Writer) (zerolog.Logger, io.Closer) {
	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        stderr,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(stderr),
	}}

	path, fileErr := xdg.StateFile(LogFile)
	var file *os.File
	if fileErr == nil {
		file, fileErr = openLogFile(path)
	}
	var closer io.Closer = io.NopCloser(nil)
	if fileErr == nil {
		writers = append(writers, file)
		closer = file
	}

	logger := zerolog.New(io.MultiWriter(writers...)).
		Level(levelFor(verbosity)).
		With().Timestamp().Logger()
	if verbosity >= 2 {
		logger = logger.With().Caller().Logger()
	}
	if fileErr != nil {
		logger.Warn().Err(fileErr).Str("path", path).Msg("Failed to open log file, logging to console only")
	}
	logger.Debug().Int("verbosity", verbosity).Str("logFile", path).Msg("Logger initialized")
	return logger, closer
}

func openLogFile(path string) (*os.File, error) {
	//nolint:gosec // G304: path comes from the XDG state directory
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, fileutil.OwnerReadWrite)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// isTerminal reports whether w is a terminal, which gets colored output.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
