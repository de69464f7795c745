// Package ansi provides ANSI escape code constants and helpers for terminal output.
// Colored terminal output in this module uses these constants.
package ansi

import "regexp"

// ANSI SGR (Select Graphic Rendition) codes.
const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Yellow  = "\033[33m"
	Green   = "\033[32m"
	Red     = "\033[31m"
	Cyan    = "\033[36m"
	Magenta = "\033[35m"
)

var escape = regexp.MustCompile("\033\\[[0-9;]*[A-Za-z]")

// Strip removes every ANSI escape sequence from s.
func Strip(s string) string {
	return escape.ReplaceAllString(s, "")
}
