// Package alerts delivers user-facing notices during plan execution.
package alerts

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Level represents alert severity
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelDanger  Level = "danger"
)

// Sink receives templated alert messages.
type Sink interface {
	Alert(level Level, format string, args ...interface{})
}

// ConsoleSink writes alerts to a terminal with severity coloring.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleSink creates a console sink. A nil writer defaults to stdout.
func NewConsoleSink(out io.Writer) *ConsoleSink {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleSink{out: out}
}

func (s *ConsoleSink) Alert(level Level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	var icon string
	switch level {
	case LevelSuccess:
		icon = color.GreenString("✓")
	case LevelDanger:
		icon = color.RedString("✗")
	default:
		icon = color.CyanString("ℹ")
	}

	s.mu.Lock()
	fmt.Fprintf(s.out, "%s %s\n", icon, msg)
	s.mu.Unlock()
}

// Record is one captured alert.
type Record struct {
	Level   Level
	Message string
}

// MemorySink records alerts for inspection in tests.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Alert(level Level, format string, args ...interface{}) {
	s.mu.Lock()
	s.records = append(s.records, Record{Level: level, Message: fmt.Sprintf(format, args...)})
	s.mu.Unlock()
}

// Records returns a copy of captured alerts.
func (s *MemorySink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Discard drops all alerts.
type Discard struct{}

func (Discard) Alert(Level, string, ...interface{}) {}
