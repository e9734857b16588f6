// Package progress renders a single-line execution progress bar.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Reporter receives progress updates from the scheduler. Tick(0) is a
// refresh with no advance.
type Reporter interface {
	Start(total int)
	Tick(delta int)
	Close()
}

// Nop discards all progress updates.
type Nop struct{}

func (Nop) Start(int) {}
func (Nop) Tick(int)  {}
func (Nop) Close()    {}

// Bar is a plain ANSI terminal bar: [#####-----] 3/8
type Bar struct {
	out   io.Writer
	total int
	done  int
	live  bool
}

// NewBar creates a bar writing to out (stdout if nil). The bar stays
// silent when the writer is not a terminal.
func NewBar(out io.Writer) *Bar {
	if out == nil {
		out = os.Stdout
	}
	live := false
	if f, ok := out.(*os.File); ok {
		live = term.IsTerminal(int(f.Fd()))
	}
	return &Bar{out: out, live: live}
}

func (b *Bar) Start(total int) {
	b.total = total
	b.done = 0
	b.render()
}

func (b *Bar) Tick(delta int) {
	b.done += delta
	if b.done > b.total {
		b.done = b.total
	}
	b.render()
}

func (b *Bar) Close() {
	if !b.live {
		return
	}
	fmt.Fprint(b.out, "\r\033[K")
}

func (b *Bar) render() {
	if !b.live || b.total == 0 {
		return
	}
	const width = 30
	filled := width * b.done / b.total
	fmt.Fprintf(b.out, "\r[%s%s] %d/%d",
		strings.Repeat("#", filled),
		strings.Repeat("-", width-filled),
		b.done, b.total)
}
