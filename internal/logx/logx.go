// Package logx is a small leveled wrapper around the standard log
// package. The corpus has no structured-logging dependency to reach for
// (the teacher uses "log" exclusively throughout), so this stays on the
// standard library and adds only the level gate that settings.py's
// LOG_LEVEL and run.py's console handler provide in the source.
package logx

import (
	"log"
	"os"
	"strings"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a LOG_LEVEL string onto a Level, defaulting to Info for
// anything unrecognized.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	mu     sync.Mutex
	level  = LevelInfo
	logger = log.New(os.Stderr, "", log.LstdFlags)
)

// SetLevel sets the process-wide minimum level that gets logged.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

func Debugf(format string, args ...any) { logAt(LevelDebug, "DEBUG", format, args...) }
func Infof(format string, args ...any)  { logAt(LevelInfo, "INFO", format, args...) }
func Warnf(format string, args ...any)  { logAt(LevelWarn, "WARN", format, args...) }
func Errorf(format string, args ...any) { logAt(LevelError, "ERROR", format, args...) }

func logAt(l Level, tag, format string, args ...any) {
	mu.Lock()
	cur := level
	mu.Unlock()
	if l < cur {
		return
	}
	logger.Printf(tag+": "+format, args...)
}
