package strutil

import (
	"github.com/mattn/go-runewidth"
)

// RuneColumns is the number of terminal columns r occupies: 2 for wide
// characters, 0 for zero-width ones and 1 otherwise.
func RuneColumns(r rune) int {
	return runewidth.RuneWidth(r)
}

// Columns returns the number of terminal columns needed to display s.
func Columns(s string) int {
	w := 0
	for _, r := range s {
		w += RuneColumns(r)
	}
	return w
}

// OffsetFromColumns returns the byte offset in s just past the characters
// that fill col columns. A wide character that straddles col is included.
func OffsetFromColumns(s string, col int) int {
	w := 0
	for i, r := range s {
		if w >= col {
			return i
		}
		w += RuneColumns(r)
	}
	return len(s)
}
