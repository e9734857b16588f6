package scheduler

import "strings"

// SplitLines splits a captured byte stream into lines. CRLF and bare CR
// terminators are normalized to LF first; a trailing partial line is
// retained as the final element.
func SplitLines(b []byte) []string {
	if len(b) == 0 {
		return nil
	}

	s := string(b)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
