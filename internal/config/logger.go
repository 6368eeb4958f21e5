package config

import (
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

var Logger *log.Logger

func init() {
	Logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "debdesk",
	})

	Logger.SetLevel(log.InfoLevel)
}

// SlogLogger wraps the terminal logger for managers that take a *slog.Logger
// when no installation log is open
func SlogLogger() *slog.Logger {
	return slog.New(Logger)
}

// SetVerbose enables verbose logging
func SetVerbose(verbose bool) {
	if verbose {
		Logger.SetLevel(log.DebugLevel)
	} else {
		Logger.SetLevel(log.InfoLevel)
	}
}

// SetNoColor strips colour from the logger and every lipgloss style
func SetNoColor(noColor bool) {
	if !noColor {
		return
	}
	Logger.SetColorProfile(termenv.Ascii)
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Success logs a success message with checkmark
func Success(msg string, args ...interface{}) {
	Logger.Info("✓ "+msg, args...)
}

// Warning logs a warning message
func Warning(msg string, args ...interface{}) {
	Logger.Warn("⚠ "+msg, args...)
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	Logger.Error("✗ "+msg, args...)
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	Logger.Info(msg, args...)
}

// Debug logs a debug message (only shown in verbose mode)
func Debug(msg string, args ...interface{}) {
	Logger.Debug(msg, args...)
}
