package ui

import "golang.org/x/term"

// DefaultWidth is assumed when the output is not a terminal.
const DefaultWidth = 80

// TerminalWidth returns the column count of the terminal behind fd.
func TerminalWidth(fd uintptr) int {
	if w, _, err := term.GetSize(int(fd)); err == nil && w > 0 {
		return w
	}
	return DefaultWidth
}
