//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

// EnableColorOutput checks if colorized output is possible and was not
// disabled with NO_COLOR.
func EnableColorOutput(stream *os.File) bool {
	if noColor() {
		return false
	}
	return term.IsTerminal(int(stream.Fd()))
}
