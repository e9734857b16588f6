package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBarSilentWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	b := NewBar(&buf)

	b.Start(4)
	b.Tick(1)
	b.Tick(0)
	b.Close()

	assert.Empty(t, buf.String(), "non-TTY writers must stay clean")
}

func TestBarClampsOverflow(t *testing.T) {
	b := NewBar(&bytes.Buffer{})
	b.Start(2)
	b.Tick(5)
	assert.Equal(t, 2, b.done)
}

func TestNopReporter(t *testing.T) {
	var r Reporter = Nop{}
	r.Start(10)
	r.Tick(1)
	r.Close()
}
