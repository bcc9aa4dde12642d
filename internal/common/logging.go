package common

import (
	"bytes"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

type LogFormat int

const (
	LogFormatText LogFormat = iota
	LogFormatJSON
	LogFormatLogfmt
)

func ParseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	case "logfmt":
		return LogFormatLogfmt
	default:
		return LogFormatText
	}
}

func (f LogFormat) formatter() log.Formatter {
	switch f {
	case LogFormatJSON:
		return log.JSONFormatter
	case LogFormatLogfmt:
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// ParseLogLevel falls back to info for anything it does not recognise.
func ParseLogLevel(s string) log.Level {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Logger is a structured logger tagged with the component that owns it.
type Logger struct {
	base *log.Logger
}

func NewLogger(level log.Level, format LogFormat, output io.Writer, serverID string) *Logger {
	if output == nil {
		output = os.Stderr
	}
	base := log.NewWithOptions(output, log.Options{
		Level:           level,
		Formatter:       format.formatter(),
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		CallerOffset:    1,
	})
	return &Logger{base: base.With("server", serverID)}
}

// NewTestLogger returns a debug-level logger writing to a buffer, without
// timestamps so output can be matched.
func NewTestLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	base := log.NewWithOptions(&buf, log.Options{
		Level:     log.DebugLevel,
		Formatter: log.LogfmtFormatter,
	})
	return &Logger{base: base.With("server", "test")}, &buf
}

func (l *Logger) SetReportCaller(report bool) {
	l.base.SetReportCaller(report)
}

// StandardLog adapts the logger for libraries that take a *log.Logger.
func (l *Logger) StandardLog() *stdlog.Logger {
	return l.base.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})
}

func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{base: l.base.With(key, value)}
}

func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	keyvals := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		keyvals = append(keyvals, k, fields[k])
	}
	return &Logger{base: l.base.With(keyvals...)}
}

func (l *Logger) Debug(msg string, keyvals ...interface{}) {
	l.base.Debug(msg, keyvals...)
}

func (l *Logger) Info(msg string, keyvals ...interface{}) {
	l.base.Info(msg, keyvals...)
}

func (l *Logger) Warn(msg string, keyvals ...interface{}) {
	l.base.Warn(msg, keyvals...)
}

func (l *Logger) Error(msg string, keyvals ...interface{}) {
	l.base.Error(msg, keyvals...)
}

// OpenLogOutput returns the process log sink: stderr, plus the file at path
// when path is non-empty. stdout is never used since it may carry the
// protocol stream.
func OpenLogOutput(path string) (io.Writer, io.Closer, error) {
	if path == "" {
		return os.Stderr, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &fanoutWriter{console: os.Stderr, file: f}, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fanoutWriter never reports an error: a broken sink must not fail the
// operation being logged.
type fanoutWriter struct {
	console io.Writer
	file    io.Writer
}

func (w *fanoutWriter) Write(p []byte) (int, error) {
	_, _ = w.console.Write(p)
	if w.file != nil {
		_, _ = w.file.Write(p)
	}
	return len(p), nil
}
