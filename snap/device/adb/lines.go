package adb

import "strings"

// lineBuffer splits a byte stream into lines, keeping the unfinished tail
// until the next chunk arrives.
type lineBuffer struct {
	unfinished string
}

func (b *lineBuffer) Feed(chunk []byte) []string {
	lines := strings.Split(b.unfinished+string(chunk), "\n")
	b.unfinished = lines[len(lines)-1]
	lines = lines[:len(lines)-1]
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Flush returns whatever is left without a trailing newline.
func (b *lineBuffer) Flush() string {
	tail := strings.TrimSuffix(b.unfinished, "\r")
	b.unfinished = ""
	return tail
}
