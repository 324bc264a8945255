package output

import (
	"os"

	"golang.org/x/term"
)

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // Auto-detect based on TTY
	ColorAlways                  // Always use colors
	ColorNever                   // Never use colors
)

// ShouldColorize determines if output should be colorized based on mode and
// TTY detection for the given writer.
func ShouldColorize(mode ColorMode, w interface{}) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	case ColorAuto:
		if f, ok := w.(*os.File); ok {
			return term.IsTerminal(int(f.Fd()))
		}
	}
	return false
}

// Gray dims text, used for timestamps in the query-log view.
func Gray(text string, enable bool) string {
	if !enable {
		return text
	}
	return colorGray + text + colorReset
}

// Bold emphasizes text, used for queries in the query-log view.
func Bold(text string, enable bool) string {
	if !enable {
		return text
	}
	return colorBold + text + colorReset
}
