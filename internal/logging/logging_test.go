package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, fn func()) []Event {
	t.Helper()

	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	fn()

	var events []Event
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var e Event
		require.NoError(t, dec.Decode(&e))
		events = append(events, e)
	}
	return events
}

func TestLoggerContext(t *testing.T) {
	events := capture(t, func() {
		log := New("scheduler").WithWorker("worker-2").WithPackage("dplyr")
		log.Info("build_started", map[string]interface{}{"tries": 1})
	})

	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, "scheduler", e.Component)
	assert.Equal(t, "worker-2", e.Worker)
	assert.Equal(t, "dplyr", e.Package)
	assert.Equal(t, LevelInfo, e.Level)
	assert.Equal(t, "build_started", e.Event)
}

func TestLoggerError(t *testing.T) {
	events := capture(t, func() {
		New("proc").Error("spawn", nil, os.ErrPermission)
	})

	require.Len(t, events, 1)
	assert.Equal(t, LevelError, events[0].Level)
	assert.Equal(t, os.ErrPermission.Error(), events[0].Error)
}

func TestPhaseEvent(t *testing.T) {
	events := capture(t, func() {
		PhaseEvent("worker-1", "jsonlite", "install", false, 1500*time.Millisecond)
	})

	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, LevelError, e.Level)
	assert.Equal(t, "install", e.Event)
	assert.Equal(t, int64(1500), e.Duration)
	assert.Equal(t, false, e.Extra["success"])
}
