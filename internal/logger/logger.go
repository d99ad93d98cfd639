package logger

import (
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"codeberg.org/mutker/zensensors/internal/errors"
	"github.com/rs/zerolog"
)

var log = zerolog.Nop()

type LogLevel int8

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

type LogEvent struct {
	*zerolog.Event
}

func (e *LogEvent) Msg(msg string) {
	e.Event.Msg(msg)
}

func (e *LogEvent) Send() {
	e.Event.Send()
}

// ParseLevel maps a configured level name onto a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(name) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warning", "warn":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, errors.New().WithData(errors.ErrInvalidLogLevel, name)
	}
}

// Init initializes the package logger. A nil out writes to stdout.
func Init(level LogLevel, out io.Writer, isService bool) {
	if out == nil {
		out = os.Stdout
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}

	if isService {
		output.TimeFormat = ""
		output.FormatTimestamp = func(_ interface{}) string {
			return ""
		}
	}

	log = zerolog.New(output).With().Timestamp().Logger()

	SetLogLevel(level)
}

// Disable discards everything logged through the package logger.
func Disable() {
	log = zerolog.Nop()
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	zerolog.SetGlobalLevel(zerolog.Level(level))
}

// IsService checks if the application is running as a service
func IsService() bool {
	if _, err := os.Stdin.Stat(); err != nil {
		return true
	}
	if os.Getenv("SERVICE_NAME") != "" || os.Getenv("INVOCATION_ID") != "" {
		return true
	}
	if os.Getppid() == 1 {
		return true
	}

	return syscall.Getpgrp() == syscall.Getpid()
}

// Debug logs a debug message
func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

// Info logs an info message
func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

// Warn logs a warning message
func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

// Error logs an error message
func Error() *LogEvent {
	return &LogEvent{log.Error()}
}

// ErrorWithCode logs an error message with a specific error code
func ErrorWithCode(err errors.Error) *LogEvent {
	return withCode(log.Error(), err)
}

// Fatal logs a fatal message and exits the program
func Fatal() *LogEvent {
	return &LogEvent{log.Fatal()}
}

// FatalWithCode logs a fatal message with a specific error code and exits the program
func FatalWithCode(err errors.Error) *LogEvent {
	return withCode(log.Fatal(), err)
}

func withCode(e *zerolog.Event, err errors.Error) *LogEvent {
	return &LogEvent{e.
		Str("error_code", string(err.Code())).
		Str("error_message", err.Error()).
		AnErr("error", err.Unwrap())}
}

// Log is a Logger bound to its own zerolog instance.
type Log struct {
	zl zerolog.Logger
}

// New returns a Logger writing JSON lines to w.
func New(w io.Writer) *Log {
	return &Log{zl: zerolog.New(w).With().Timestamp().Logger()}
}

// Default returns a Logger backed by the package logger as configured by Init.
func Default() Logger {
	return defaultLog{}
}

func (l *Log) Debug() *LogEvent { return &LogEvent{l.zl.Debug()} }
func (l *Log) Info() *LogEvent  { return &LogEvent{l.zl.Info()} }
func (l *Log) Warn() *LogEvent  { return &LogEvent{l.zl.Warn()} }
func (l *Log) Error() *LogEvent { return &LogEvent{l.zl.Error()} }

func (l *Log) ErrorWithCode(err errors.Error) *LogEvent {
	return withCode(l.zl.Error(), err)
}

func (l *Log) ErrorWithContext(err errors.Error, component, operation string) *LogEvent {
	e := withCode(l.zl.Error(), err)
	e.Str("component", component).Str("operation", operation)

	return e
}

type defaultLog struct{}

func (defaultLog) Debug() *LogEvent { return Debug() }
func (defaultLog) Info() *LogEvent  { return Info() }
func (defaultLog) Warn() *LogEvent  { return Warn() }
func (defaultLog) Error() *LogEvent { return Error() }

func (defaultLog) ErrorWithCode(err errors.Error) *LogEvent {
	return ErrorWithCode(err)
}

func (defaultLog) ErrorWithContext(err errors.Error, component, operation string) *LogEvent {
	e := ErrorWithCode(err)
	e.Str("component", component).Str("operation", operation)

	return e
}
