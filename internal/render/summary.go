// Package render provides output formatting for terminal consumption.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/joss/pkgforge/internal/plan"
)

// Renderer handles output formatting.
type Renderer struct {
	pretty bool
}

// New creates a new renderer.
func New(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1)

// Summary formats the end-of-run report: status counts plus cumulative
// build and install times.
func (r *Renderer) Summary(res *plan.Result) string {
	var sb strings.Builder

	writeCount := func(label string, n int) {
		fmt.Fprintf(&sb, "%-13s %d\n", label, n)
	}

	writeCount("Installed:", res.Installed)
	writeCount("Updated:", res.Updated)
	writeCount("Not updated:", res.NotUpdated)
	writeCount("Current:", res.Current)
	fmt.Fprintf(&sb, "%-13s %s\n", "Build time:", FormatDuration(res.BuildTime))
	fmt.Fprintf(&sb, "%-13s %s", "Install time:", FormatDuration(res.InstallTime))

	if !r.pretty {
		return sb.String() + "\n"
	}

	title := color.CyanString("Install summary")
	return boxStyle.Render(title+"\n\n"+sb.String()) + "\n"
}

// Failure formats a fatal execution error with the offending row's
// captured output for post-mortem.
func (r *Renderer) Failure(res *plan.Result, err error) string {
	var sb strings.Builder

	if r.pretty {
		sb.WriteString(color.RedString("✗ %v\n", err))
	} else {
		fmt.Fprintf(&sb, "error: %v\n", err)
	}

	for i := range res.Rows {
		row := &res.Rows[i]
		if row.BuildError {
			r.writeStream(&sb, row.Package, "build", row.BuildStdout, row.BuildStderr)
		}
		if row.InstallError {
			r.writeStream(&sb, row.Package, "install", row.InstallStdout, row.InstallStderr)
		}
	}
	return sb.String()
}

func (r *Renderer) writeStream(sb *strings.Builder, pkg, phase string, stdout, stderr []string) {
	fmt.Fprintf(sb, "\n--- %s %s output ---\n", pkg, phase)
	for _, line := range stdout {
		fmt.Fprintln(sb, line)
	}
	for _, line := range stderr {
		if r.pretty {
			fmt.Fprintln(sb, color.HiBlackString(line))
		} else {
			fmt.Fprintln(sb, line)
		}
	}
}

// FormatDuration renders a duration the way humans read one: 850ms,
// 12.3s, 2m 4.1s, 1h 12m.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		m := d / time.Minute
		s := d - m*time.Minute
		return fmt.Sprintf("%dm %.1fs", m, s.Seconds())
	default:
		h := d / time.Hour
		m := (d - h*time.Hour) / time.Minute
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
