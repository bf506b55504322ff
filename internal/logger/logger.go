// Package logger is a thin component-tagged wrapper around zerolog.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(zerolog.InfoLevel).With().Timestamp().Logger()
)

// Init replaces the process logger. An unknown level falls back to info.
func Init(level string, w io.Writer) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	mu.Lock()
	base = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	mu.Unlock()
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func DebugCF(component, msg string, fields map[string]any) {
	emit(zerolog.DebugLevel, component, msg, fields)
}

func InfoCF(component, msg string, fields map[string]any) {
	emit(zerolog.InfoLevel, component, msg, fields)
}

func WarnCF(component, msg string, fields map[string]any) {
	emit(zerolog.WarnLevel, component, msg, fields)
}

func ErrorCF(component, msg string, fields map[string]any) {
	emit(zerolog.ErrorLevel, component, msg, fields)
}

func emit(level zerolog.Level, component, msg string, fields map[string]any) {
	l := current()
	ev := l.WithLevel(level)
	if ev == nil {
		return
	}
	ev.Str("component", component).Fields(fields).Msg(msg)
}
