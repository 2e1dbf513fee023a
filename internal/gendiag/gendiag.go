// Package gendiag is the generator's diagnostic log (spec §6 ambient
// stack): every pipeline stage reports what it is doing and what it found
// through a Logger, in the same level-prefixed stdlib log.Printf idiom the
// teacher's server package uses for HTTP access logging.
//
// Unlike server/response.go's one-shot access line, a generator run is a
// pipeline of named stages, so Logger also keeps a ring of recent Events
// for internal/debugsrv's /trace endpoint to replay without re-running
// anything.
package gendiag

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"
)

// Level is the severity of a single diagnostic Event.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Event is one recorded diagnostic line: a stage name (e.g. "convert",
// "lrgen", "glr"), a level, and a message.
type Event struct {
	Stage   string
	Level   Level
	Message string
	When    time.Time
}

func (e Event) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", e.When.Format(time.RFC3339), e.Level, e.Stage, e.Message)
}

// Logger writes leveled diagnostic lines to an underlying *log.Logger and
// keeps the last Capacity Events in memory for replay by internal/debugsrv.
// The zero value is not usable; construct one with
// New.
type Logger struct {
	std      *log.Logger
	capacity int

	mu     sync.Mutex
	events []Event
}

// New creates a Logger writing to w (conventionally os.Stderr, as
// cmd/syngen/main.go does) and retaining up to capacity Events for replay.
// A non-positive capacity disables retention entirely: Events always
// returns nil but lines are still written to w.
func New(w io.Writer, capacity int) *Logger {
	return &Logger{
		std:      log.New(w, "", 0),
		capacity: capacity,
	}
}

// Now lets tests substitute a fixed clock; production callers never need
// to set it.
var Now = time.Now

func (l *Logger) record(stage string, lvl Level, msg string) {
	ev := Event{Stage: stage, Level: lvl, Message: msg, When: Now()}
	l.std.Print(ev.String())

	if l.capacity <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	if len(l.events) > l.capacity {
		l.events = l.events[len(l.events)-l.capacity:]
	}
}

// Debugf records a LevelDebug Event for the given pipeline stage.
func (l *Logger) Debugf(stage, format string, args ...interface{}) {
	l.record(stage, LevelDebug, fmt.Sprintf(format, args...))
}

// Infof records a LevelInfo Event for the given pipeline stage.
func (l *Logger) Infof(stage, format string, args ...interface{}) {
	l.record(stage, LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf records a LevelWarn Event for the given pipeline stage.
func (l *Logger) Warnf(stage, format string, args ...interface{}) {
	l.record(stage, LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf records a LevelError Event for the given pipeline stage.
func (l *Logger) Errorf(stage, format string, args ...interface{}) {
	l.record(stage, LevelError, fmt.Sprintf(format, args...))
}

// Events returns a copy of the retained Event ring, oldest first.
func (l *Logger) Events() []Event {
	if l.capacity <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}
