package editor

import (
	"strings"
	"unicode/utf8"
)

// Position is a 1-based cursor location; Column counts runes, not bytes.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Insert puts text into buffer at pos and returns the new buffer together
// with the cursor position right after the inserted text.
// A position outside the buffer is clamped to the nearest valid one.
func Insert(buffer string, pos Position, text string) (string, Position) {
	lines := strings.Split(buffer, "\n")

	line := min(max(pos.Line, 1), len(lines))
	current := lines[line-1]
	column := min(max(pos.Column, 1), utf8.RuneCountInString(current)+1)

	offset := 0
	for _, l := range lines[:line-1] {
		offset += len(l) + 1
	}
	offset += byteOffset(current, column-1)

	out := buffer[:offset] + text + buffer[offset:]

	breaks := strings.Count(text, "\n")
	if breaks == 0 {
		return out, Position{Line: line, Column: column + utf8.RuneCountInString(text)}
	}
	last := text[strings.LastIndex(text, "\n")+1:]
	return out, Position{Line: line + breaks, Column: utf8.RuneCountInString(last) + 1}
}

// EndOf is the position just after the last character of buffer
func EndOf(buffer string) Position {
	lines := strings.Split(buffer, "\n")
	last := lines[len(lines)-1]
	return Position{Line: len(lines), Column: utf8.RuneCountInString(last) + 1}
}

func byteOffset(s string, runes int) int {
	for i := range s {
		if runes == 0 {
			return i
		}
		runes--
	}
	return len(s)
}
