// Package util provides the shared logger.
package util

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the global logger instance
var Logger = logrus.New()

var rawOutput bool

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// SetVerbosity maps the CLI verbosity level onto the logger:
// 0=none, 1=debug logs, 2=raw switch output, 3=debug+raw output
func SetVerbosity(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("verbosity must be 0, 1, 2, or 3, got %d", level)
	}
	if level == 1 || level == 3 {
		Logger.SetLevel(logrus.DebugLevel)
	} else {
		Logger.SetLevel(logrus.InfoLevel)
	}
	rawOutput = level == 2 || level == 3
	return nil
}

// RawOutputEnabled returns true if raw switch output should be logged
func RawOutputEnabled() bool {
	return rawOutput
}

// SetLogLevel sets the logging level
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Logger.SetLevel(lvl)
	return nil
}

// SetLogOutput sets the log output destination
func SetLogOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// SetJSONFormat enables JSON log format
func SetJSONFormat() {
	Logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})
}

// WithDevice returns a logger with device context
func WithDevice(device string) *logrus.Entry {
	return Logger.WithField("device", device)
}

// WithOperation returns a logger with operation context
func WithOperation(operation string) *logrus.Entry {
	return Logger.WithField("operation", operation)
}

// LogRawOutput dumps what the switch returned for cmd when raw output is enabled
func LogRawOutput(device, cmd, output string) {
	if !rawOutput {
		return
	}
	Logger.WithFields(logrus.Fields{
		"device":  device,
		"command": cmd,
	}).Infof("switch output:\n%s", output)
}
