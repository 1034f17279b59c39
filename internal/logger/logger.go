package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color" // Import the fatih/color package for colored console output
	"github.com/rs/zerolog"
)

// Colorized console printers for the different log levels.
// Each behaves like fmt.Printf with the text colored for the level.
var (
	infoPrinter  = color.New(color.FgGreen).PrintfFunc()
	warnPrinter  = color.New(color.FgHiMagenta).PrintfFunc()
	errorPrinter = color.New(color.FgRed).PrintfFunc()
	debugPrinter = color.New(color.FgCyan).PrintfFunc()
)

// runLog receives a structured copy of every console message.
// It discards everything until OpenRunLog is called.
var runLog = zerolog.Nop()

// Info logs informational messages in green color.
// Green is used for progress and success lines the user should notice.
var Info = func(format string, a ...any) {
	infoPrinter(format, a...)
	record(zerolog.InfoLevel, format, a...)
}

// Warn logs warning messages in bright magenta color.
// Used for skipped steps and non-fatal failures.
var Warn = func(format string, a ...any) {
	warnPrinter(format, a...)
	record(zerolog.WarnLevel, format, a...)
}

// Error logs error messages in red color.
var Error = func(format string, a ...any) {
	errorPrinter(format, a...)
	record(zerolog.ErrorLevel, format, a...)
}

// Debug logs debug messages in cyan color if enabled, otherwise is a no-op.
// It is reassigned by Init based on the debug flag.
var Debug = func(format string, a ...any) {}

// Init initializes the logger package, specifically enabling or disabling debug logging.
// When enabled, Debug prints cyan messages and records them in the run log.
// When disabled, Debug silently ignores its arguments.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = func(format string, a ...any) {
			debugPrinter(format, a...)
			record(zerolog.DebugLevel, format, a...)
		}
		return
	}
	Debug = func(format string, a ...any) {}
}

// OpenRunLog starts appending a JSON record of every message to path.
// The returned closer must be closed when the run is over; closing it
// detaches the file from the logger again.
func OpenRunLog(path string) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	runLog = zerolog.New(f).With().Timestamp().Logger()
	return closerFunc(func() error {
		runLog = zerolog.Nop()
		return f.Close()
	}), nil
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

// record writes the formatted message to the run log, without the
// "[LEVEL]" prefix and trailing newline used on the console.
func record(level zerolog.Level, format string, a ...any) {
	msg := strings.TrimSpace(fmt.Sprintf(format, a...))
	if strings.HasPrefix(msg, "[") {
		if i := strings.Index(msg, "] "); i > 0 {
			msg = msg[i+2:]
		}
	}
	runLog.WithLevel(level).Msg(msg)
}
