// Package log wraps a package-level logrus.Logger, generalised from the
// teacher's BBW-dashboard-specific helpers into the worker's own
// structured record shape: {timestamp, level, fingerprint?, stage, message}
// (spec.md §6).
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

var logger *logrus.Logger

// Fields is a shorthand for structured log fields.
type Fields map[string]interface{}

// Config holds logging configuration.
type Config struct {
	Level      string
	LogDir     string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// DefaultConfig returns default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		LogDir:     "logs",
		MaxSize:    100,
		MaxBackups: 30,
		MaxAge:     30,
		Compress:   true,
	}
}

// Init initializes the logger with default configuration.
func Init() {
	InitWithConfig(DefaultConfig())
}

// InitWithConfig initializes the logger: JSON-formatted, append-only to a
// daily local log file plus stdout when foregrounded (spec.md §6 log sink).
func InitWithConfig(cfg *Config) {
	logger = logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		fmt.Printf("failed to create log directory: %v\n", err)
		logger.SetOutput(os.Stdout)
	} else {
		logFile := dailyLogFile(cfg.LogDir)
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fmt.Printf("failed to open log file: %v\n", err)
			logger.SetOutput(os.Stdout)
		} else {
			logger.SetOutput(io.MultiWriter(file, os.Stdout))
		}
	}

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	logger.WithFields(logrus.Fields{"stage": "init", "log_dir": cfg.LogDir, "level": cfg.Level}).
		Info("logger initialized")
}

func dailyLogFile(logDir string) string {
	today := time.Now().Format("2006-01-02")
	return filepath.Join(logDir, fmt.Sprintf("indicator_worker_%s.log", today))
}

// Info logs a message with printf-style args, no structured fields.
func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Infof(msg, args...)
	}
}

// Error logs a message with printf-style args, no structured fields.
func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Errorf(msg, args...)
	}
}

// Fatal logs a message and exits. Reserved for InitFatal errors (spec.md §7).
func Fatal(msg string, args ...interface{}) {
	if logger != nil {
		logger.Fatalf(msg, args...)
	}
}

// Warn logs a message with printf-style args, no structured fields.
func Warn(msg string, args ...interface{}) {
	if logger != nil {
		logger.Warnf(msg, args...)
	}
}

// Debug logs a message with printf-style args, no structured fields.
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debugf(msg, args...)
	}
}

// Stage logs a structured record tagged with the worker stage it came
// from ("producer", "consumer", "gateway", "lease", "completeness", ...),
// matching spec.md §6's log record shape.
func Stage(stage, message string, fields Fields) {
	log(logrus.InfoLevel, stage, "", message, fields)
}

// StageError is Stage at error level, with err attached.
func StageError(stage, message string, err error, fields Fields) {
	log(logrus.ErrorLevel, stage, "", message, withErr(fields, err))
}

// StageWarn is Stage at warn level.
func StageWarn(stage, message string, fields Fields) {
	log(logrus.WarnLevel, stage, "", message, fields)
}

// WithFingerprint logs a structured record correlated to a job fingerprint.
func WithFingerprint(stage, fingerprint, message string, fields Fields) {
	log(logrus.InfoLevel, stage, fingerprint, message, fields)
}

// WithFingerprintError is WithFingerprint at error level, with err attached.
func WithFingerprintError(stage, fingerprint, message string, err error, fields Fields) {
	log(logrus.ErrorLevel, stage, fingerprint, message, withErr(fields, err))
}

// WithFingerprintWarn is WithFingerprint at warn level.
func WithFingerprintWarn(stage, fingerprint, message string, fields Fields) {
	log(logrus.WarnLevel, stage, fingerprint, message, fields)
}

func withErr(fields Fields, err error) Fields {
	out := Fields{}
	for k, v := range fields {
		out[k] = v
	}
	if err != nil {
		out["error"] = err.Error()
	}
	return out
}

func log(level logrus.Level, stage, fingerprint, message string, fields Fields) {
	if logger == nil {
		return
	}
	lf := logrus.Fields{"stage": stage}
	if fingerprint != "" {
		lf["fingerprint"] = fingerprint
	}
	for k, v := range fields {
		lf[k] = v
	}
	entry := logger.WithFields(lf)
	switch level {
	case logrus.ErrorLevel:
		entry.Error(message)
	case logrus.WarnLevel:
		entry.Warn(message)
	case logrus.DebugLevel:
		entry.Debug(message)
	default:
		entry.Info(message)
	}
}
