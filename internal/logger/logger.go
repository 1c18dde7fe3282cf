package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the logging level
type Level int

const (
	// DEBUG level for detailed debugging information
	DEBUG Level = iota
	// INFO level for informational messages
	INFO
	// WARN level for warning messages
	WARN
	// ERROR level for error messages
	ERROR
)

// String returns the string representation of the level
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

const filePrefix = "stealthrecorder-"

// Logger writes leveled messages to a daily-rotated log file.
type Logger struct {
	mu            sync.RWMutex
	level         Level
	file          *os.File
	outputs       map[Level]*log.Logger
	logDir        string
	currentDay    string
	retentionDays int
}

// Config holds logger configuration
type Config struct {
	LogDir        string
	Level         Level
	RetentionDays int
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	logDir := filepath.Join(homeDir, "Library", "Application Support", "StealthRecorder", "logs")

	return Config{
		LogDir:        logDir,
		Level:         INFO,
		RetentionDays: 7,
	}
}

// New creates a new logger
func New(config Config) (*Logger, error) {
	l := &Logger{
		level:         config.Level,
		logDir:        config.LogDir,
		retentionDays: config.RetentionDays,
	}

	if err := l.rotateLog(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return l, nil
}

// rotateLog opens the log file for the current day, replacing the previous one.
func (l *Logger) rotateLog() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := time.Now().Format("20060102")

	// Nothing to do until the day changes
	if l.currentDay == today && l.file != nil {
		return nil
	}

	if l.file != nil {
		l.file.Close()
	}

	if err := os.MkdirAll(l.logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := fmt.Sprintf("%s%s.log", filePrefix, today)
	filePath := filepath.Join(l.logDir, filename)

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.file = file
	l.currentDay = today
	l.outputs = map[Level]*log.Logger{
		DEBUG: log.New(file, "[DEBUG] ", log.LstdFlags),
		INFO:  log.New(file, "[INFO] ", log.LstdFlags),
		WARN:  log.New(file, "[WARN] ", log.LstdFlags),
		ERROR: log.New(file, "[ERROR] ", log.LstdFlags),
	}

	if err := l.cleanOldLogs(); err != nil {
		// Retention failures must not break logging itself
		fmt.Fprintf(os.Stderr, "failed to clean old logs: %v\n", err)
	}

	return nil
}

// cleanOldLogs deletes this app's log files older than retentionDays.
func (l *Logger) cleanOldLogs() error {
	cutoffDate := time.Now().AddDate(0, 0, -l.retentionDays)

	entries, err := os.ReadDir(l.logDir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		// Only touch files this logger created
		if !strings.HasPrefix(entry.Name(), filePrefix) || filepath.Ext(entry.Name()) != ".log" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoffDate) {
			filePath := filepath.Join(l.logDir, entry.Name())
			if err := os.Remove(filePath); err != nil {
				continue
			}
		}
	}

	return nil
}

// checkRotation rotates the log file when the day has changed.
func (l *Logger) checkRotation() {
	l.mu.RLock()
	currentDay := l.currentDay
	l.mu.RUnlock()

	today := time.Now().Format("20060102")
	if currentDay != today {
		if err := l.rotateLog(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to rotate log: %v\n", err)
		}
	}
}

// emit writes a single line if the message level passes the threshold.
func (l *Logger) emit(level Level, format string, v ...interface{}) {
	l.mu.RLock()
	enabled := level >= l.level
	l.mu.RUnlock()

	if !enabled {
		return
	}

	l.checkRotation()

	l.mu.RLock()
	out := l.outputs[level]
	l.mu.RUnlock()

	if out != nil {
		out.Printf(format, v...)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.emit(DEBUG, format, v...)
}

// Info logs an informational message
func (l *Logger) Info(format string, v ...interface{}) {
	l.emit(INFO, format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.emit(WARN, format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.emit(ERROR, format, v...)
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.level = level
}

// GetLevel returns the current logging level
func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.level
}
