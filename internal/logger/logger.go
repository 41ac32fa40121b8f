// Package logger provides leveled logging to the console and, optionally,
// to per-level files in a log directory.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// Logger writes leveled log entries. Info and Debug go to stdout, Warning
// to stdout, and Error to stderr. With a log directory configured, entries
// are additionally appended to info.log, warning.log, and error.log.
//
// The underlying log.Logger instances serialize writes, so a Logger is safe
// for concurrent use.
type Logger struct {
	debugLog *log.Logger
	infoLog  *log.Logger
	warnLog  *log.Logger
	errorLog *log.Logger

	debug bool
	files []*os.File
}

const flags = log.Ldate | log.Ltime

// New creates a Logger. With a non-empty logDir the directory is created if
// needed and per-level files are opened inside it; with an empty logDir the
// logger is console-only. Debug entries are emitted only when debug is true.
func New(logDir string, debug bool) (*Logger, error) {
	l := &Logger{debug: debug}

	infoWriter := io.Writer(os.Stdout)
	warnWriter := io.Writer(os.Stdout)
	errorWriter := io.Writer(os.Stderr)

	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		infoFile, err := l.openLogFile(filepath.Join(logDir, "info.log"))
		if err != nil {
			return nil, err
		}
		warnFile, err := l.openLogFile(filepath.Join(logDir, "warning.log"))
		if err != nil {
			return nil, err
		}
		errorFile, err := l.openLogFile(filepath.Join(logDir, "error.log"))
		if err != nil {
			return nil, err
		}

		infoWriter = io.MultiWriter(os.Stdout, infoFile)
		warnWriter = io.MultiWriter(os.Stdout, warnFile)
		errorWriter = io.MultiWriter(os.Stderr, errorFile)
	}

	l.debugLog = log.New(infoWriter, "DEBUG ", flags)
	l.infoLog = log.New(infoWriter, "INFO  ", flags)
	l.warnLog = log.New(warnWriter, "WARN  ", flags)
	l.errorLog = log.New(errorWriter, "ERROR ", flags)
	return l, nil
}

// Nop returns a logger that discards everything. Useful as a default for
// optional dependencies and in tests.
func Nop() *Logger {
	nop := log.New(io.Discard, "", 0)
	return &Logger{debugLog: nop, infoLog: nop, warnLog: nop, errorLog: nop}
}

// openLogFile opens or creates a log file for appending and tracks it for
// Close.
func (l *Logger) openLogFile(filename string) (*os.File, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filename, err)
	}
	l.files = append(l.files, file)
	return file, nil
}

// Debug writes a formatted debug-level entry. Suppressed unless the logger
// was created with debug enabled.
func (l *Logger) Debug(format string, v ...interface{}) {
	if !l.debug {
		return
	}
	l.debugLog.Printf(format, v...)
}

// Info writes a formatted info-level entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.infoLog.Printf(format, v...)
}

// Warning writes a formatted warning-level entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.warnLog.Printf(format, v...)
}

// Error writes a formatted error-level entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.errorLog.Printf(format, v...)
}

// Close closes any log files the logger opened.
func (l *Logger) Close() error {
	var firstErr error
	for _, f := range l.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.files = nil
	return firstErr
}
