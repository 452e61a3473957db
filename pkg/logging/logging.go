// Package logging configures the zerolog logger shared by every blockreg
// component.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AppName names the state directory and log file.
const AppName = "blockreg"

// NoFile disables the log file when used as Options.File.
const NoFile = "-"

// Options configures the global logger.
type Options struct {
	// Verbosity is the -v count.
	Verbosity int
	// File receives a copy of every entry. Empty means LogFilePath.
	File string
	// JSON writes structured lines to stderr instead of console output.
	JSON bool
	// Output replaces stderr.
	Output io.Writer
}

// SetupLogger configures the global logger for a -v count with console
// output on stderr and the default log file.
func SetupLogger(verbosity int) {
	Setup(Options{Verbosity: verbosity})
}

// Setup configures the global logger. A log file that cannot be opened is
// reported and skipped.
func Setup(opts Options) {
	zerolog.SetGlobalLevel(LevelForVerbosity(opts.Verbosity))

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	writers := []io.Writer{out}

	path := opts.File
	if path == "" {
		path = LogFilePath()
	}
	var fileErr error
	if path != NoFile {
		var f *os.File
		if f, fileErr = openLogFile(path); fileErr == nil {
			writers = append(writers, f)
		}
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With().Timestamp()
	if opts.Verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", path).Msg("Failed to create log file, logging to console only")
	}
	log.Debug().Int("verbosity", opts.Verbosity).Str("logFile", path).Msg("Logger initialized")
}

// SetupWriter points the global logger at w without console formatting.
// Tests use it to capture structured output.
func SetupWriter(w io.Writer, level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// LevelForVerbosity maps a -v count to a zerolog level. Without -v only
// warnings and errors, which includes rejected block types, are shown.
func LevelForVerbosity(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	}
	return zerolog.TraceLevel
}

// GetLogger returns the global logger tagged with a component name.
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// LogFilePath is $BLOCKREG_LOG_FILE, or blockreg/blockreg.log under the XDG
// state home. XDG_STATE_HOME is read at call time.
func LogFilePath() string {
	if path := os.Getenv("BLOCKREG_LOG_FILE"); path != "" {
		return path
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = xdg.StateHome
	}
	if stateHome == "" {
		return AppName + ".log"
	}
	return filepath.Join(stateHome, AppName, AppName+".log")
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// LogOperationStart logs the start of an operation and returns a function
// that logs its completion with the elapsed time.
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
