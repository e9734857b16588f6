// Package logging provides structured JSON logging for pkgforge components.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Event represents a structured log event
type Event struct {
	Timestamp string                 `json:"ts"`
	Level     Level                  `json:"level"`
	Component string                 `json:"component"`
	Event     string                 `json:"event"`
	Worker    string                 `json:"worker,omitempty"`
	Package   string                 `json:"package,omitempty"`
	Duration  int64                  `json:"duration_ms,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

var (
	outMu sync.Mutex
	out   io.Writer = os.Stderr
)

// SetOutput redirects log events (for testing).
func SetOutput(w io.Writer) {
	outMu.Lock()
	out = w
	outMu.Unlock()
}

// Logger provides structured logging
type Logger struct {
	component string
	worker    string
	pkg       string
}

// New creates a new logger for a component
func New(component string) *Logger {
	return &Logger{component: component}
}

// WithWorker sets the worker context
func (l *Logger) WithWorker(worker string) *Logger {
	return &Logger{component: l.component, worker: worker, pkg: l.pkg}
}

// WithPackage sets the package context
func (l *Logger) WithPackage(pkg string) *Logger {
	return &Logger{component: l.component, worker: l.worker, pkg: pkg}
}

// log emits a structured log event
func (l *Logger) log(level Level, event string, extra map[string]interface{}, err error) {
	e := Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Component: l.component,
		Event:     event,
		Worker:    l.worker,
		Package:   l.pkg,
		Extra:     extra,
	}

	if err != nil {
		e.Error = err.Error()
	}

	emit(e)
}

func emit(e Event) {
	data, _ := json.Marshal(e)
	outMu.Lock()
	fmt.Fprintln(out, string(data))
	outMu.Unlock()
}

// Debug logs a debug event
func (l *Logger) Debug(event string, extra map[string]interface{}) {
	l.log(LevelDebug, event, extra, nil)
}

// Info logs an info event
func (l *Logger) Info(event string, extra map[string]interface{}) {
	l.log(LevelInfo, event, extra, nil)
}

// Warn logs a warning event
func (l *Logger) Warn(event string, extra map[string]interface{}, err error) {
	l.log(LevelWarn, event, extra, err)
}

// Error logs an error event
func (l *Logger) Error(event string, extra map[string]interface{}, err error) {
	l.log(LevelError, event, extra, err)
}

// TimedEvent logs an event with duration
func (l *Logger) TimedEvent(event string, start time.Time, extra map[string]interface{}) {
	e := Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     LevelInfo,
		Component: l.component,
		Event:     event,
		Worker:    l.worker,
		Package:   l.pkg,
		Duration:  time.Since(start).Milliseconds(),
		Extra:     extra,
	}

	emit(e)
}

// SpawnEvent logs a worker spawn
func SpawnEvent(workerID, pkg, phase string) {
	emit(Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     LevelInfo,
		Component: "scheduler",
		Event:     "spawn",
		Worker:    workerID,
		Package:   pkg,
		Extra:     map[string]interface{}{"phase": phase},
	})
}

// PhaseEvent logs a build or install completion
func PhaseEvent(workerID, pkg, phase string, ok bool, elapsed time.Duration) {
	level := LevelInfo
	if !ok {
		level = LevelError
	}

	emit(Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level,
		Component: "scheduler",
		Event:     phase,
		Worker:    workerID,
		Package:   pkg,
		Duration:  elapsed.Milliseconds(),
		Extra:     map[string]interface{}{"success": ok},
	})
}
