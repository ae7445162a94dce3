// Package display renders terminal output for jadwal-shalat: ANSI styling,
// aligned tables and human-friendly region names.
//
// Styling honours NO_COLOR (https://no-color.org/) and is switched off when
// stdout is not a terminal. FORCE_COLOR turns it back on.
package display

import (
	"os"
)

// ANSI escape codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	fgGray = "\033[90m"
)

// enabled is decided once at startup and may be overridden by SetEnabled.
var enabled = shouldEnable()

func shouldEnable() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	return isTerminal(os.Stdout)
}

// isTerminal reports whether f is a character device.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// SetEnabled overrides the detected color state. Structured output
// (--json, --yaml) turns it off.
func SetEnabled(b bool) {
	enabled = b
}

// Enabled reports whether styling is active.
func Enabled() bool {
	return enabled
}

func wrap(code, text string) string {
	if !enabled {
		return text
	}
	return code + text + reset
}

// Bold renders text in bold.
func Bold(text string) string { return wrap(bold, text) }

// Dim renders text faint. Used for events that have passed.
func Dim(text string) string { return wrap(dim, text) }

// Green renders text in green.
func Green(text string) string { return wrap(green, text) }

// Gray renders text in bright black.
func Gray(text string) string { return wrap(fgGray, text) }

// Accent highlights the upcoming event (bold cyan).
func Accent(text string) string { return wrap(bold+cyan, text) }
